package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "subtracker/internal/errors"
	"subtracker/internal/ledger"
	"subtracker/internal/logger"
	"subtracker/internal/models"
)

// maxLedgerSize bounds an uploaded journal.
const maxLedgerSize = 5 << 20

// ledgerService imports and exports plain-text journals. Imports land on the
// user's primary account with source "import"; balances are not touched.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// ledgerPlan is a journal sorted into what import would do with each entry.
type ledgerPlan struct {
	repeated    []LedgerRow
	existing    []LedgerRow
	processable []LedgerRow
	invalid     []LedgerRow
}

// VerifyLedger reports which entries of a journal are repeated, already
// recorded, invalid or ready to import.
func (s *ledgerService) VerifyLedger(userID uint, r io.Reader) (*LedgerVerification, error) {
	entries, bad, err := readLedger(r)
	if err != nil {
		return nil, err
	}
	plan, err := planLedger(s.db, userID, entries, bad)
	if err != nil {
		return nil, err
	}

	return &LedgerVerification{
		Summary: LedgerVerificationSummary{
			TotalEntries: len(entries) + len(bad),
			Repeated:     len(plan.repeated),
			ExistingInDB: len(plan.existing),
			Processable:  len(plan.processable),
			Invalid:      len(plan.invalid),
		},
		Repeated:    nonNil(plan.repeated),
		Existing:    nonNil(plan.existing),
		Processable: nonNil(plan.processable),
		Invalid:     nonNil(plan.invalid),
	}, nil
}

// ImportLedger records every processable entry in one database transaction.
// Entries rejected by validation are reported as failed and skipped; any other
// error rolls the whole import back.
func (s *ledgerService) ImportLedger(userID uint, r io.Reader) (*LedgerImportResult, error) {
	entries, bad, err := readLedger(r)
	if err != nil {
		return nil, err
	}
	account, err := NewBankAccountService(s.db).GetPrimaryAccount(userID)
	if err != nil {
		return nil, err
	}

	result := &LedgerImportResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		plan, err := planLedger(tx, userID, entries, bad)
		if err != nil {
			return err
		}
		result.Skipped = append(plan.repeated, plan.existing...)
		result.Failed = plan.invalid

		for _, row := range plan.processable {
			created, err := importRow(tx, userID, account.ID, row)
			if err != nil {
				if !isClientError(err) {
					return err
				}
				row.Message = err.Error()
				result.Failed = append(result.Failed, row)
				continue
			}
			row.TransactionID = created.ID
			result.Successful = append(result.Successful, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Successful = nonNil(result.Successful)
	result.Failed = nonNil(result.Failed)
	result.Skipped = nonNil(result.Skipped)
	result.Statistics = LedgerImportStatistics{
		Total:      len(entries) + len(bad),
		Successful: len(result.Successful),
		Failed:     len(result.Failed),
		Skipped:    len(result.Skipped),
	}
	result.Message = importMessage(result.Statistics)

	logger.Get().Infow("ledger imported",
		"user_id", userID,
		"bank_account_id", account.ID,
		"successful", result.Statistics.Successful,
		"failed", result.Statistics.Failed,
		"skipped", result.Statistics.Skipped,
	)
	return result, nil
}

// importRow inserts one entry under a savepoint so a rejected row leaves the
// surrounding transaction usable.
func importRow(tx *gorm.DB, userID, accountID uint, row LedgerRow) (*models.Transaction, error) {
	date, err := time.Parse(dateKeyLayout, row.Date)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date")
	}
	debit, credit := row.DebitAccount, row.CreditAccount

	var created *models.Transaction
	err = tx.Transaction(func(sp *gorm.DB) error {
		var err error
		created, err = NewTransactionService(sp).CreateTransaction(userID, TransactionInput{
			BankAccountID: accountID,
			CategoryID:    row.CategoryID,
			Date:          date,
			Description:   row.Description,
			Amount:        row.Amount,
			Type:          row.Type,
			DebitAccount:  &debit,
			CreditAccount: &credit,
			Source:        models.TransactionSourceImport,
		})
		return err
	})
	return created, err
}

// ExportLedger renders the user's transactions dated within [from, to] as a
// journal, oldest first.
func (s *ledgerService) ExportLedger(userID uint, from, to time.Time) ([]byte, error) {
	from, to = calendarDay(from), calendarDay(to)
	if from.After(to) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must not be after to_date")
	}

	var transactions []models.Transaction
	err := s.db.Preload("BankAccount").Preload("Category").
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to.AddDate(0, 0, 1)).
		Order("date ASC, id ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(transactions) == 0 {
		return nil, apperrors.ErrNoTransactions
	}

	entries := make([]ledger.Entry, 0, len(transactions))
	for _, t := range transactions {
		entries = append(entries, exportEntry(t))
	}

	var buf bytes.Buffer
	if err := ledger.Write(&buf, entries); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}

const dateKeyLayout = "2006-01-02"

func readLedger(r io.Reader) ([]ledger.Entry, []ledger.RowError, error) {
	content, err := io.ReadAll(io.LimitReader(r, maxLedgerSize+1))
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(content) > maxLedgerSize {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidLedgerFile, "ledger file must be at most 5 MiB")
	}
	if !utf8.Valid(content) {
		return nil, nil, apperrors.ErrInvalidLedgerFile
	}

	entries, bad, err := ledger.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInvalidLedgerFile, err)
	}
	if len(entries) == 0 && len(bad) == 0 {
		return nil, nil, apperrors.ErrEmptyLedger
	}
	return entries, bad, nil
}

// planLedger sorts entries in file order. An entry repeating an earlier one
// (same day, amount and description) is repeated; one whose day and absolute
// amount already exist for the user is existing.
func planLedger(db *gorm.DB, userID uint, entries []ledger.Entry, bad []ledger.RowError) (*ledgerPlan, error) {
	var categories []models.Category
	if err := db.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	matcher := ledger.NewMatcher(categories)
	transactions := NewTransactionService(db)

	plan := &ledgerPlan{}
	for _, b := range bad {
		plan.invalid = append(plan.invalid, LedgerRow{Line: b.Line, Message: b.Reason})
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		row := ledgerRow(e)

		key := row.Date + "|" + e.Amount.Decimal.String() + "|" + e.Description
		if seen[key] {
			row.Message = "repeated earlier in the file"
			plan.repeated = append(plan.repeated, row)
			continue
		}
		seen[key] = true

		exists, err := transactions.HasMatchingTransaction(userID, e.Date, e.Amount)
		if err != nil {
			if !isClientError(err) {
				return nil, err
			}
			row.Message = err.Error()
			plan.invalid = append(plan.invalid, row)
			continue
		}
		if exists {
			row.Message = "a transaction with this date and amount already exists"
			plan.existing = append(plan.existing, row)
			continue
		}

		account := e.DebitAccount
		if e.Type == models.TransactionTypeIncome {
			account = e.CreditAccount
		}
		category, _, ok := matcher.Match(e.Description, account, e.Type)
		if !ok {
			row.Message = fmt.Sprintf("no %s category to file this under", e.Type)
			plan.invalid = append(plan.invalid, row)
			continue
		}
		row.CategoryID = category.ID
		row.CategoryName = category.Name
		plan.processable = append(plan.processable, row)
	}
	return plan, nil
}

func ledgerRow(e ledger.Entry) LedgerRow {
	amount := e.Amount
	if e.Type == models.TransactionTypeExpense {
		amount = amount.Neg()
	}
	return LedgerRow{
		Line:          e.Line,
		Date:          e.Date.Format(dateKeyLayout),
		Description:   e.Description,
		Type:          e.Type,
		Amount:        amount,
		DebitAccount:  e.DebitAccount,
		CreditAccount: e.CreditAccount,
	}
}

// exportEntry maps a stored transaction onto journal postings. Cash deposits
// always post to Income:Deposit; rows without ledger names get names derived
// from the account and category.
func exportEntry(t models.Transaction) ledger.Entry {
	bank := "Assets:Banking:" + t.BankAccount.AccountName
	category := ""
	if t.Category != nil {
		category = t.Category.Name
	}

	var debit, credit string
	if t.DebitAccount != nil {
		debit = *t.DebitAccount
	}
	if t.CreditAccount != nil {
		credit = *t.CreditAccount
	}

	switch {
	case strings.HasPrefix(strings.ToLower(t.Description), "cash deposit"):
		debit, credit = bank, "Income:Deposit"
	case debit == "" || credit == "":
		switch {
		case t.Type == models.TransactionTypeIncome:
			debit, credit = bank, "Income:"+category
		case t.Type == models.TransactionTypeExpense:
			debit, credit = "Expenses:"+category, bank
		case t.Amount.IsNegative():
			debit, credit = "Transfers:"+category, bank
		default:
			debit, credit = bank, "Transfers:"+category
		}
	}

	return ledger.Entry{
		Date:          calendarDay(t.Date),
		Description:   t.Description,
		Type:          t.Type,
		Amount:        t.Amount.Abs(),
		DebitAccount:  debit,
		CreditAccount: credit,
	}
}

func importMessage(stats LedgerImportStatistics) string {
	switch {
	case stats.Successful > 0 && stats.Failed > 0:
		return fmt.Sprintf("Partially successful. %d transactions processed, %d failed.", stats.Successful, stats.Failed)
	case stats.Successful > 0:
		return fmt.Sprintf("All %d new transactions processed successfully.", stats.Successful)
	case stats.Failed > 0:
		return fmt.Sprintf("Processing failed. All %d new transactions failed.", stats.Failed)
	default:
		return "No new transactions to import."
	}
}

// isClientError reports whether err is an AppError the caller can fix.
func isClientError(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.StatusCode < 500
}

func nonNil(rows []LedgerRow) []LedgerRow {
	if rows == nil {
		return []LedgerRow{}
	}
	return rows
}
