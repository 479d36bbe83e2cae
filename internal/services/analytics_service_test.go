package services

import (
	"testing"
	"time"

	"subtracker/internal/testutil"
)

func setupAnalyticsFixture(t *testing.T) (*transactionFixture, AnalyticsServicer, func()) {
	t.Helper()
	f, done := setupTransactionFixture(t)

	food := testutil.CategoryByName(t, f.db, "Food & Dining")
	transport := testutil.CategoryByName(t, f.db, "Transportation")
	salary := testutil.CategoryByName(t, f.db, "Salary")

	testutil.CreateTestTransaction(t, f.db, f.user.ID, f.account.ID, salary, "1000.00", day(2024, 3, 1))
	testutil.CreateTestTransaction(t, f.db, f.user.ID, f.account.ID, food, "-100.00", day(2024, 3, 2))
	testutil.CreateTestTransaction(t, f.db, f.user.ID, f.account.ID, food, "-50.50", day(2024, 3, 2))
	testutil.CreateTestTransaction(t, f.db, f.user.ID, f.account.ID, transport, "-200.00", day(2024, 3, 10))
	testutil.CreateTestTransaction(t, f.db, f.user.ID, f.account.ID, food, "-30.00", day(2024, 2, 15))

	other := testutil.CreateTestUser(t, f.db)
	otherAccount := testutil.CreateTestBankAccount(t, f.db, other.ID)
	testutil.CreateTestTransaction(t, f.db, other.ID, otherAccount.ID, food, "-999.00", day(2024, 3, 2))

	return f, NewAnalyticsService(f.db), done
}

func TestGetTopSpending(t *testing.T) {
	f, svc, done := setupAnalyticsFixture(t)
	defer done()

	t.Run("march", func(t *testing.T) {
		report, err := svc.GetTopSpending(f.user.ID, day(2024, 3, 1), day(2024, 3, 31))
		testutil.AssertNoError(t, err)

		if report.TotalSpending.String() != "350.50" || report.CategoryCount != 2 {
			t.Fatalf("unexpected totals %+v", report)
		}
		first, second := report.Categories[0], report.Categories[1]
		if first.Category != "Transportation" || first.Amount.String() != "200.00" || first.TransactionCount != 1 {
			t.Errorf("unexpected first category %+v", first)
		}
		if second.Category != "Food & Dining" || second.Amount.String() != "150.50" || second.TransactionCount != 2 {
			t.Errorf("unexpected second category %+v", second)
		}
		if second.FirstTransaction != "2024-03-02" || second.LastTransaction != "2024-03-02" {
			t.Errorf("unexpected date range %s..%s", second.FirstTransaction, second.LastTransaction)
		}
	})

	t.Run("empty_range", func(t *testing.T) {
		report, err := svc.GetTopSpending(f.user.ID, day(2023, 1, 1), day(2023, 1, 31))
		testutil.AssertNoError(t, err)
		if report.TotalSpending.String() != "0.00" || len(report.Categories) != 0 {
			t.Errorf("expected an empty report, got %+v", report)
		}
	})

	t.Run("inverted_range", func(t *testing.T) {
		_, err := svc.GetTopSpending(f.user.ID, day(2024, 3, 31), day(2024, 3, 1))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetMonthlyTrend(t *testing.T) {
	f, svc, done := setupAnalyticsFixture(t)
	defer done()

	trend, err := svc.GetMonthlyTrend(f.user.ID, day(2024, 3, 15))
	testutil.AssertNoError(t, err)

	cur, prev := trend.CurrentMonth, trend.PreviousMonth
	if cur.Month != "March 2024" || cur.StartDate != "2024-03-01" || cur.EndDate != "2024-03-31" || len(cur.DailyData) != 31 {
		t.Fatalf("unexpected current month %s %s..%s with %d days", cur.Month, cur.StartDate, cur.EndDate, len(cur.DailyData))
	}
	if prev.Month != "February 2024" || len(prev.DailyData) != 29 {
		t.Fatalf("unexpected previous month %s with %d days", prev.Month, len(prev.DailyData))
	}

	tests := []struct {
		name    string
		summary SpendingSummary
		total   string
		average string
		count   int
		with    int
		without int
	}{
		{"current", cur.Summary, "350.50", "11.31", 3, 2, 29},
		{"previous", prev.Summary, "30.00", "1.03", 1, 1, 28},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.summary
			if s.TotalSpending.String() != tt.total || s.AverageDailySpending.String() != tt.average {
				t.Errorf("expected %s avg %s, got %s avg %s", tt.total, tt.average, s.TotalSpending, s.AverageDailySpending)
			}
			if s.TotalTransactions != tt.count || s.DaysWithSpending != tt.with || s.DaysWithoutSpending != tt.without {
				t.Errorf("unexpected counts %+v", s)
			}
		})
	}

	if d := cur.DailyData[1]; d.Date != "2024-03-02" || d.TotalSpending.String() != "150.50" || d.TransactionCount != 2 {
		t.Errorf("unexpected day %+v", d)
	}
	if d := cur.DailyData[2]; d.TotalSpending.String() != "0.00" || d.TransactionCount != 0 {
		t.Errorf("expected a zero day, got %+v", d)
	}
}

func TestGetWeeklySpending(t *testing.T) {
	f, svc, done := setupAnalyticsFixture(t)
	defer done()

	t.Run("two_weeks", func(t *testing.T) {
		report, err := svc.GetWeeklySpending(f.user.ID, 2, day(2024, 3, 10))
		testutil.AssertNoError(t, err)

		if report.StartDate != "2024-02-26" || report.EndDate != "2024-03-10" || len(report.Weeks) != 2 {
			t.Fatalf("unexpected range %s..%s with %d weeks", report.StartDate, report.EndDate, len(report.Weeks))
		}
		if report.TotalSpending.String() != "350.50" || report.WeeklyAverage.String() != "175.25" || report.TotalTransactions != 3 {
			t.Errorf("unexpected totals %+v", report)
		}

		w1, w2 := report.Weeks[0], report.Weeks[1]
		if w1.WeekLabel != "Week 1" || w1.WeekStart != "2024-02-26" || w1.WeekEnd != "2024-03-03" {
			t.Errorf("unexpected first week %+v", w1)
		}
		if w1.TotalSpending.String() != "150.50" || w1.DailyAverage.String() != "21.50" || w1.DaysWithSpending != 1 || w1.DaysWithoutSpending != 6 {
			t.Errorf("unexpected first week totals %+v", w1)
		}
		if len(w1.Categories) != 1 || w1.Categories[0] != "Food & Dining" {
			t.Errorf("unexpected first week categories %v", w1.Categories)
		}
		if w2.TotalSpending.String() != "200.00" || w2.DailyAverage.String() != "28.57" || w2.Categories[0] != "Transportation" {
			t.Errorf("unexpected second week %+v", w2)
		}
	})

	for _, weeks := range []int{0, MaxReportWeeks + 1} {
		_, err := svc.GetWeeklySpending(f.user.ID, weeks, day(2024, 3, 10))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	}
}

func TestGetIncomeExpense(t *testing.T) {
	f, svc, done := setupAnalyticsFixture(t)
	defer done()

	tests := []struct {
		name    string
		month   time.Month
		label   string
		income  string
		expense string
		net     string
		rate    float64
	}{
		{"march", time.March, "March 2024", "1000.00", "350.50", "649.50", 64.95},
		{"february_without_income", time.February, "February 2024", "0.00", "30.00", "-30.00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := svc.GetIncomeExpense(f.user.ID, day(2024, tt.month, 20))
			testutil.AssertNoError(t, err)
			if r.Month != tt.label || r.TotalIncome.String() != tt.income || r.TotalExpense.String() != tt.expense || r.NetAmount.String() != tt.net {
				t.Errorf("unexpected report %+v", r)
			}
			if r.SavingsRate != tt.rate {
				t.Errorf("expected savings rate %v, got %v", tt.rate, r.SavingsRate)
			}
		})
	}
}
