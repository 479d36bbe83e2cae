package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "subtracker/internal/errors"
	"subtracker/internal/models"
)

const (
	// MaxReportWeeks bounds GetWeeklySpending.
	MaxReportWeeks = 12
	daysPerWeek    = 7
)

// analyticsService builds spending reports. Rows are loaded per date range and
// aggregated in memory so both database engines give identical results.
type analyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB) AnalyticsServicer {
	return &analyticsService{db: db}
}

// GetTopSpending totals expenses per category between from and to inclusive.
func (s *analyticsService) GetTopSpending(userID uint, from, to time.Time) (*TopSpending, error) {
	from, to = calendarDay(from), calendarDay(to)
	if from.After(to) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must not be after to_date")
	}

	expenses, err := s.expensesBetween(userID, from, to)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*CategorySpending)
	total := models.ZeroMoney()
	for _, t := range expenses {
		name := categoryName(t)
		day := calendarDay(t.Date).Format(dateKeyLayout)
		c, ok := byCategory[name]
		if !ok {
			c = &CategorySpending{Category: name, Amount: models.ZeroMoney(), FirstTransaction: day}
			byCategory[name] = c
		}
		c.Amount = addMoney(c.Amount, t.Amount.Abs())
		c.TransactionCount++
		c.LastTransaction = day
		total = addMoney(total, t.Amount.Abs())
	}

	categories := make([]CategorySpending, 0, len(byCategory))
	for _, c := range byCategory {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if cmp := categories[i].Amount.Cmp(categories[j].Amount.Decimal); cmp != 0 {
			return cmp > 0
		}
		return categories[i].Category < categories[j].Category
	})

	return &TopSpending{
		From:          from.Format(dateKeyLayout),
		To:            to.Format(dateKeyLayout),
		TotalSpending: total,
		CategoryCount: len(categories),
		Categories:    categories,
	}, nil
}

// GetMonthlyTrend returns day-by-day expenses for the month containing month
// and for the month before, with every day present.
func (s *analyticsService) GetMonthlyTrend(userID uint, month time.Time) (*MonthlyTrend, error) {
	start := monthStart(month)
	prevStart := start.AddDate(0, -1, 0)

	current, err := s.monthSpending(userID, start)
	if err != nil {
		return nil, err
	}
	previous, err := s.monthSpending(userID, prevStart)
	if err != nil {
		return nil, err
	}
	return &MonthlyTrend{CurrentMonth: *current, PreviousMonth: *previous}, nil
}

func (s *analyticsService) monthSpending(userID uint, start time.Time) (*MonthSpending, error) {
	end := start.AddDate(0, 1, -1)
	expenses, err := s.expensesBetween(userID, start, end)
	if err != nil {
		return nil, err
	}

	days := dailySeries(start, end, expenses)
	return &MonthSpending{
		Month:     start.Format("January 2006"),
		StartDate: start.Format(dateKeyLayout),
		EndDate:   end.Format(dateKeyLayout),
		Summary:   summarize(days),
		DailyData: days,
	}, nil
}

// GetWeeklySpending splits the weeks*7 days ending on through into
// consecutive weeks.
func (s *analyticsService) GetWeeklySpending(userID uint, weeks int, through time.Time) (*WeeklySpending, error) {
	if weeks < 1 || weeks > MaxReportWeeks {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("weeks must be between 1 and %d", MaxReportWeeks))
	}
	end := calendarDay(through)
	start := end.AddDate(0, 0, 1-daysPerWeek*weeks)

	expenses, err := s.expensesBetween(userID, start, end)
	if err != nil {
		return nil, err
	}

	report := &WeeklySpending{
		StartDate:     start.Format(dateKeyLayout),
		EndDate:       end.Format(dateKeyLayout),
		TotalWeeks:    weeks,
		TotalSpending: models.ZeroMoney(),
		Weeks:         make([]WeeklyBucket, 0, weeks),
	}
	for i := 0; i < weeks; i++ {
		weekStart := start.AddDate(0, 0, daysPerWeek*i)
		weekEnd := weekStart.AddDate(0, 0, daysPerWeek-1)

		var inWeek []models.Transaction
		categories := make(map[string]bool)
		for _, t := range expenses {
			d := calendarDay(t.Date)
			if d.Before(weekStart) || d.After(weekEnd) {
				continue
			}
			inWeek = append(inWeek, t)
			categories[categoryName(t)] = true
		}

		summary := summarize(dailySeries(weekStart, weekEnd, inWeek))
		names := make([]string, 0, len(categories))
		for name := range categories {
			names = append(names, name)
		}
		sort.Strings(names)

		report.Weeks = append(report.Weeks, WeeklyBucket{
			WeekStart:           weekStart.Format(dateKeyLayout),
			WeekEnd:             weekEnd.Format(dateKeyLayout),
			WeekLabel:           fmt.Sprintf("Week %d", i+1),
			TotalSpending:       summary.TotalSpending,
			DailyAverage:        summary.AverageDailySpending,
			TotalTransactions:   summary.TotalTransactions,
			DaysWithSpending:    summary.DaysWithSpending,
			DaysWithoutSpending: summary.DaysWithoutSpending,
			Categories:          names,
		})
		report.TotalSpending = addMoney(report.TotalSpending, summary.TotalSpending)
		report.TotalTransactions += summary.TotalTransactions
	}
	report.WeeklyAverage = divMoney(report.TotalSpending, weeks)
	return report, nil
}

// GetIncomeExpense totals the income and expenses of the month containing
// month. The savings rate is net over income, in percent.
func (s *analyticsService) GetIncomeExpense(userID uint, month time.Time) (*IncomeExpense, error) {
	start := monthStart(month)
	end := start.AddDate(0, 1, -1)

	var transactions []models.Transaction
	err := s.db.Where("user_id = ? AND date >= ? AND date < ? AND type IN ?", userID, start, end.AddDate(0, 0, 1),
		[]models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense}).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	income, expense := models.ZeroMoney(), models.ZeroMoney()
	for _, t := range transactions {
		if t.Type == models.TransactionTypeIncome {
			income = addMoney(income, t.Amount.Abs())
		} else {
			expense = addMoney(expense, t.Amount.Abs())
		}
	}
	net := models.NewMoney(income.Sub(expense.Decimal))

	rate := 0.0
	if income.IsPositive() {
		rate = net.Div(income.Decimal).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	return &IncomeExpense{
		Month:        start.Format("January 2006"),
		TotalIncome:  income,
		TotalExpense: expense,
		NetAmount:    net,
		SavingsRate:  rate,
	}, nil
}

func (s *analyticsService) expensesBetween(userID uint, from, to time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.db.Preload("Category").
		Where("user_id = ? AND type = ? AND date >= ? AND date < ?", userID, models.TransactionTypeExpense, from, to.AddDate(0, 0, 1)).
		Order("date ASC, id ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// dailySeries returns one entry per day from start to end, zero when the day
// has no expenses.
func dailySeries(start, end time.Time, expenses []models.Transaction) []DailySpending {
	index := make(map[string]int)
	var days []DailySpending
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateKeyLayout)
		index[key] = len(days)
		days = append(days, DailySpending{Date: key, TotalSpending: models.ZeroMoney()})
	}
	for _, t := range expenses {
		i, ok := index[calendarDay(t.Date).Format(dateKeyLayout)]
		if !ok {
			continue
		}
		days[i].TotalSpending = addMoney(days[i].TotalSpending, t.Amount.Abs())
		days[i].TransactionCount++
	}
	return days
}

func summarize(days []DailySpending) SpendingSummary {
	summary := SpendingSummary{TotalSpending: models.ZeroMoney()}
	for _, d := range days {
		summary.TotalSpending = addMoney(summary.TotalSpending, d.TotalSpending)
		summary.TotalTransactions += d.TransactionCount
		if d.TotalSpending.IsPositive() {
			summary.DaysWithSpending++
		}
	}
	summary.DaysWithoutSpending = len(days) - summary.DaysWithSpending
	summary.AverageDailySpending = divMoney(summary.TotalSpending, len(days))
	return summary
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func categoryName(t models.Transaction) string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

func addMoney(a, b models.Money) models.Money {
	return models.NewMoney(a.Add(b.Decimal))
}

func divMoney(m models.Money, n int) models.Money {
	if n == 0 {
		return models.ZeroMoney()
	}
	return models.NewMoney(m.Div(decimal.NewFromInt(int64(n))))
}
