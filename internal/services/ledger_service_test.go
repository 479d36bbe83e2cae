package services

import (
	"strings"
	"testing"

	"subtracker/internal/ledger"
	"subtracker/internal/models"
	"subtracker/internal/testutil"
)

// line numbers:            1, 5, 9, 13, 17, 20
const importJournal = `2024/03/01 Salary March
    Assets:Banking:Main        ₹50,000.00
    Income:Salary

2024/03/05 Swiggy order
    Expenses:Food        ₹450.75
    Assets:Banking:Main

2024/03/05 Swiggy order
    Expenses:Food        ₹450.75
    Assets:Banking:Main

2024/03/06 Rounding error
    Expenses:Food        ₹12.345
    Assets:Banking:Main

2024/03/07 Broken
    Expenses:Food        ₹10.00

2024/03/08 Pharmacy
    Expenses:Health        ₹99.00
    Assets:Banking:Main
`

func setupLedgerFixture(t *testing.T) (*transactionFixture, LedgerServicer, func()) {
	t.Helper()
	f, done := setupTransactionFixture(t)
	health := testutil.CategoryByName(t, f.db, "Health")
	testutil.CreateTestTransaction(t, f.db, f.user.ID, f.account.ID, health, "-99.00", day(2024, 3, 8))
	return f, NewLedgerService(f.db), done
}

func rowLines(rows []LedgerRow) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Line)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVerifyLedger(t *testing.T) {
	f, svc, done := setupLedgerFixture(t)
	defer done()

	result, err := svc.VerifyLedger(f.user.ID, strings.NewReader(importJournal))
	testutil.AssertNoError(t, err)

	want := LedgerVerificationSummary{TotalEntries: 6, Repeated: 1, ExistingInDB: 1, Processable: 2, Invalid: 2}
	if result.Summary != want {
		t.Errorf("expected summary %+v, got %+v", want, result.Summary)
	}

	buckets := []struct {
		name  string
		rows  []LedgerRow
		lines []int
	}{
		{"repeated", result.Repeated, []int{9}},
		{"existing", result.Existing, []int{20}},
		{"processable", result.Processable, []int{1, 5}},
		{"invalid", result.Invalid, []int{17, 13}},
	}
	for _, b := range buckets {
		t.Run(b.name, func(t *testing.T) {
			if got := rowLines(b.rows); !equalInts(got, b.lines) {
				t.Errorf("expected lines %v, got %v", b.lines, got)
			}
		})
	}

	t.Run("categories_and_signs", func(t *testing.T) {
		salary, swiggy := result.Processable[0], result.Processable[1]
		if salary.CategoryName != "Salary" || salary.Amount.String() != "50000.00" || salary.Type != models.TransactionTypeIncome {
			t.Errorf("unexpected salary row %+v", salary)
		}
		if swiggy.CategoryName != "Food & Dining" || swiggy.Amount.String() != "-450.75" || swiggy.Date != "2024-03-05" {
			t.Errorf("unexpected swiggy row %+v", swiggy)
		}
	})

	t.Run("writes_nothing", func(t *testing.T) {
		var count int64
		f.db.Model(&models.Transaction{}).Where("user_id = ?", f.user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected only the fixture transaction, got %d", count)
		}
	})
}

func TestImportLedger(t *testing.T) {
	t.Run("imports_processable_entries", func(t *testing.T) {
		f, svc, done := setupLedgerFixture(t)
		defer done()

		result, err := svc.ImportLedger(f.user.ID, strings.NewReader(importJournal))
		testutil.AssertNoError(t, err)

		want := LedgerImportStatistics{Total: 6, Successful: 2, Failed: 2, Skipped: 2}
		if result.Statistics != want {
			t.Errorf("expected %+v, got %+v", want, result.Statistics)
		}
		if !strings.HasPrefix(result.Message, "Partially successful") {
			t.Errorf("unexpected message %q", result.Message)
		}

		var imported []models.Transaction
		f.db.Preload("Category").Where("user_id = ? AND source = ?", f.user.ID, models.TransactionSourceImport).
			Order("date ASC").Find(&imported)
		if len(imported) != 2 {
			t.Fatalf("expected 2 imported transactions, got %d", len(imported))
		}
		if imported[0].Amount.String() != "50000.00" || imported[0].Category.Name != "Salary" {
			t.Errorf("unexpected income %+v", imported[0])
		}
		food := imported[1]
		if food.Amount.String() != "-450.75" || food.Category.Name != "Food & Dining" || food.BankAccountID != f.account.ID {
			t.Errorf("unexpected expense %+v", food)
		}
		if food.DebitAccount == nil || *food.DebitAccount != "Expenses:Food" {
			t.Errorf("expected debit account to be kept, got %v", food.DebitAccount)
		}
		if result.Successful[1].TransactionID != food.ID {
			t.Errorf("expected row to carry transaction id %d, got %d", food.ID, result.Successful[1].TransactionID)
		}

		var account models.BankAccount
		f.db.First(&account, f.account.ID)
		if !account.CurrentBalance.IsZero() {
			t.Errorf("expected balance untouched, got %s", account.CurrentBalance)
		}
	})

	t.Run("second_import_skips_everything", func(t *testing.T) {
		f, svc, done := setupLedgerFixture(t)
		defer done()

		_, err := svc.ImportLedger(f.user.ID, strings.NewReader(importJournal))
		testutil.AssertNoError(t, err)

		result, err := svc.ImportLedger(f.user.ID, strings.NewReader(importJournal))
		testutil.AssertNoError(t, err)
		if result.Statistics.Successful != 0 || result.Statistics.Skipped != 4 {
			t.Errorf("expected nothing new and 4 skipped, got %+v", result.Statistics)
		}
	})

	t.Run("rejected_row_does_not_abort_import", func(t *testing.T) {
		f, svc, done := setupLedgerFixture(t)
		defer done()

		journal := "2024/04/01 " + strings.Repeat("x", 300) + "\n" +
			"    Expenses:Food  ₹10.00\n    Assets:Banking:Main\n\n" +
			"2024/04/02 Zomato dinner\n    Expenses:Food  ₹20.00\n    Assets:Banking:Main\n"

		result, err := svc.ImportLedger(f.user.ID, strings.NewReader(journal))
		testutil.AssertNoError(t, err)
		if result.Statistics.Successful != 1 || result.Statistics.Failed != 1 {
			t.Fatalf("expected 1 imported and 1 failed, got %+v", result.Statistics)
		}
		if result.Failed[0].Line != 1 || result.Failed[0].Message == "" {
			t.Errorf("unexpected failed row %+v", result.Failed[0])
		}
	})

	t.Run("without_account", func(t *testing.T) {
		f, svc, done := setupLedgerFixture(t)
		defer done()

		other := testutil.CreateTestUser(t, f.db)
		_, err := svc.ImportLedger(other.ID, strings.NewReader(importJournal))
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("empty_file", func(t *testing.T) {
		f, svc, done := setupLedgerFixture(t)
		defer done()

		_, err := svc.ImportLedger(f.user.ID, strings.NewReader("; just a comment\n"))
		testutil.AssertAppError(t, err, "EMPTY_LEDGER")
	})

	t.Run("not_utf8", func(t *testing.T) {
		f, svc, done := setupLedgerFixture(t)
		defer done()

		_, err := svc.VerifyLedger(f.user.ID, strings.NewReader("2024/03/01 \xff\xfe\n"))
		testutil.AssertAppError(t, err, "INVALID_LEDGER_FILE")
	})
}

func TestExportLedger(t *testing.T) {
	f, done := setupTransactionFixture(t)
	defer done()
	svc := NewLedgerService(f.db)

	food := testutil.CategoryByName(t, f.db, "Food & Dining")
	deposit := testutil.CategoryByName(t, f.db, "Deposit")
	salary := testutil.CategoryByName(t, f.db, "Salary")

	testutil.CreateTestTransaction(t, f.db, f.user.ID, f.account.ID, food, "-1234.50", day(2024, 3, 5))
	cash := testutil.CreateTestTransaction(t, f.db, f.user.ID, f.account.ID, deposit, "500.00", day(2024, 3, 6))
	f.db.Model(cash).Update("description", "Cash deposit at branch")
	named := testutil.CreateTestTransaction(t, f.db, f.user.ID, f.account.ID, salary, "50000.00", day(2024, 3, 1))
	f.db.Model(named).Updates(map[string]interface{}{"debit_account": "Assets:Banking:HDFC", "credit_account": "Income:Salary"})
	testutil.CreateTestTransaction(t, f.db, f.user.ID, f.account.ID, food, "-10.00", day(2024, 4, 1))

	out, err := svc.ExportLedger(f.user.ID, day(2024, 3, 1), day(2024, 3, 31))
	testutil.AssertNoError(t, err)

	entries, bad, err := ledger.Parse(strings.NewReader(string(out)))
	if err != nil || len(bad) != 0 {
		t.Fatalf("export does not read back: %v %v\n%s", err, bad, out)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d:\n%s", len(entries), out)
	}

	bank := "Assets:Banking:" + f.account.AccountName
	tests := []struct {
		name   string
		entry  ledger.Entry
		debit  string
		credit string
		amount string
	}{
		{"stored_names", entries[0], "Assets:Banking:HDFC", "Income:Salary", "50000.00"},
		{"derived_names", entries[1], "Expenses:Food & Dining", bank, "1234.50"},
		{"cash_deposit", entries[2], bank, "Income:Deposit", "500.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.entry.DebitAccount != tt.debit || tt.entry.CreditAccount != tt.credit {
				t.Errorf("expected %s / %s, got %s / %s", tt.debit, tt.credit, tt.entry.DebitAccount, tt.entry.CreditAccount)
			}
			if tt.entry.Amount.String() != tt.amount {
				t.Errorf("expected amount %s, got %s", tt.amount, tt.entry.Amount)
			}
		})
	}
	if !strings.Contains(string(out), "₹1,234.50") {
		t.Errorf("expected grouped rupee amount in:\n%s", out)
	}

	t.Run("empty_range", func(t *testing.T) {
		_, err := svc.ExportLedger(f.user.ID, day(2023, 1, 1), day(2023, 1, 31))
		testutil.AssertAppError(t, err, "NO_TRANSACTIONS")
	})

	t.Run("other_user", func(t *testing.T) {
		_, err := svc.ExportLedger(f.user.ID+1000, day(2024, 3, 1), day(2024, 3, 31))
		testutil.AssertAppError(t, err, "NO_TRANSACTIONS")
	})

	t.Run("inverted_range", func(t *testing.T) {
		_, err := svc.ExportLedger(f.user.ID, day(2024, 3, 31), day(2024, 3, 1))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}
