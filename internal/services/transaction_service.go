package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "subtracker/internal/errors"
	"subtracker/internal/models"
	"subtracker/internal/pagination"
)

const (
	maxDescriptionLength = 255
	maxLedgerNameLength  = 255
)

// transactionService handles transaction persistence. Balances are not
// recalculated when transactions change.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction records a transaction on one of the user's accounts.
func (s *transactionService) CreateTransaction(userID uint, input TransactionInput) (*models.Transaction, error) {
	if !input.Type.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.Source == "" {
		input.Source = models.TransactionSourceManual
	}
	if !input.Source.Valid() {
		return nil, apperrors.ErrInvalidTransactionSource
	}

	description := strings.TrimSpace(input.Description)
	if description == "" || len(description) > maxDescriptionLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be between 1 and 255 characters")
	}
	debit, err := optionalLedgerName(input.DebitAccount, "debit account")
	if err != nil {
		return nil, err
	}
	credit, err := optionalLedgerName(input.CreditAccount, "credit account")
	if err != nil {
		return nil, err
	}

	if !input.Amount.Fits() {
		return nil, apperrors.ErrInvalidAmount
	}
	if !signMatches(input.Type, input.Amount) {
		return nil, apperrors.ErrAmountSignMismatch
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}
	date = calendarDay(date)

	var account models.BankAccount
	if err := s.db.Where("id = ? AND user_id = ?", input.BankAccountID, userID).First(&account).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrAccountNotFound)
	}

	var category models.Category
	if err := s.db.First(&category, input.CategoryID).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrCategoryNotFound)
	}
	if string(category.Type) != string(input.Type) {
		return nil, apperrors.ErrCategoryTypeMismatch
	}

	transaction := &models.Transaction{
		UserID:        userID,
		BankAccountID: account.ID,
		CategoryID:    category.ID,
		Date:          date,
		Description:   description,
		Amount:        input.Amount,
		Type:          input.Type,
		DebitAccount:  debit,
		CreditAccount: credit,
		Source:        input.Source,
		Notes:         input.Notes,
	}
	if err := s.db.Omit("User", "BankAccount", "Category").Create(transaction).Error; err != nil {
		return nil, writeError(err)
	}

	transaction.BankAccount = &account
	transaction.Category = &category
	return transaction, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrTransactionNotFound)
	}
	return &transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of a user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("transactions.user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").
		Order("transactions.date DESC, transactions.id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// HasMatchingTransaction reports whether the user already has a transaction on
// the same day for the same absolute amount. Statement imports use it to skip
// rows that were entered before.
func (s *transactionService) HasMatchingTransaction(userID uint, date time.Time, amount models.Money) (bool, error) {
	if !amount.Fits() {
		return false, apperrors.ErrInvalidAmount
	}
	day := calendarDay(date)
	abs := amount.Abs()

	var count int64
	err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, day, day.AddDate(0, 0, 1)).
		Where("(amount = ? OR amount = ?)", abs, abs.Neg()).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// GetCategorySummary totals the user's transactions per category.
func (s *transactionService) GetCategorySummary(userID uint, filter TransactionFilter) ([]CategorySummary, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	q := s.db.Table("transactions").
		Select("transactions.category_id AS category_id, categories.name AS category_name, " +
			"categories.type AS category_type, SUM(transactions.amount) AS total, COUNT(*) AS count").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ?", userID)
	q = applyTransactionFilters(q, filter)

	summaries := []CategorySummary{}
	if err := q.Group("transactions.category_id, categories.name, categories.type").
		Order("categories.type ASC, categories.name ASC").
		Scan(&summaries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return summaries, nil
}

// DeleteTransaction removes a transaction. The account balance is left as is.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&models.Transaction{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("transactions.date >= ?", calendarDay(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("transactions.date < ?", calendarDay(*f.ToDate).AddDate(0, 0, 1))
	}
	if f.Type != nil {
		q = q.Where("transactions.type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("transactions.category_id = ?", *f.CategoryID)
	}
	if f.BankAccountID != nil {
		q = q.Where("transactions.bank_account_id = ?", *f.BankAccountID)
	}
	if f.Source != nil {
		q = q.Where("transactions.source = ?", *f.Source)
	}
	return q
}

func validateFilter(f TransactionFilter) error {
	if f.Type != nil && !f.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}
	if f.Source != nil && !f.Source.Valid() {
		return apperrors.ErrInvalidTransactionSource
	}
	if f.FromDate != nil && f.ToDate != nil && calendarDay(*f.FromDate).After(calendarDay(*f.ToDate)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must not be after to_date")
	}
	return nil
}

// signMatches enforces income > 0, expense < 0 and transfer != 0.
func signMatches(t models.TransactionType, amount models.Money) bool {
	switch t {
	case models.TransactionTypeIncome:
		return amount.IsPositive()
	case models.TransactionTypeExpense:
		return amount.IsNegative()
	default:
		return !amount.IsZero()
	}
}

// calendarDay drops the clock part of t. The date column stores days, and
// both engines compare them as UTC midnight.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func optionalLedgerName(value *string, field string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxLedgerNameLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, field+" must be at most 255 characters")
	}
	return &trimmed, nil
}
