package services

import (
	"strings"

	"gorm.io/gorm"

	"subtracker/internal/database"
	apperrors "subtracker/internal/errors"
	"subtracker/internal/models"
	"subtracker/internal/pagination"
)

const maxAccountNameLength = 255

// bankAccountService handles bank account persistence.
type bankAccountService struct {
	db *gorm.DB
}

// NewBankAccountService creates a new BankAccountServicer.
func NewBankAccountService(db *gorm.DB) BankAccountServicer {
	return &bankAccountService{db: db}
}

// CreateBankAccount creates the user's account. A user holds at most one
// account; the table does not enforce this so it is checked here.
func (s *bankAccountService) CreateBankAccount(
	userID uint,
	name string,
	accountType models.AccountType,
	currency string,
	openingBalance models.Money,
) (*models.BankAccount, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxAccountNameLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name must be between 1 and 255 characters")
	}
	if accountType == "" {
		accountType = models.AccountTypeSavings
	}
	if !accountType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account type must be savings or current")
	}
	currency, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	if !openingBalance.Fits() {
		return nil, apperrors.ErrInvalidAmount
	}

	var count int64
	if err := s.db.Model(&models.BankAccount{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrAccountExists
	}

	account := &models.BankAccount{
		UserID:         userID,
		AccountName:    name,
		AccountType:    accountType,
		Currency:       currency,
		CurrentBalance: openingBalance,
	}
	if err := s.db.Create(account).Error; err != nil {
		if database.IsViolation(err, database.ViolationForeignKey) {
			return nil, apperrors.Wrap(apperrors.ErrUserNotFound, err)
		}
		return nil, writeError(err)
	}

	return account, nil
}

// GetPrimaryAccount returns the user's oldest account.
func (s *bankAccountService) GetPrimaryAccount(userID uint) (*models.BankAccount, error) {
	var account models.BankAccount
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").First(&account).Error
	if err != nil {
		return nil, lookupError(err, apperrors.ErrAccountNotFound)
	}
	return &account, nil
}

// GetUserAccounts retrieves a paginated list of accounts for a user.
func (s *bankAccountService) GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.BankAccount], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.BankAccount{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.BankAccount
	if err := base.Order("id ASC").Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *bankAccountService) GetAccountByID(userID, accountID uint) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrAccountNotFound)
	}
	return &account, nil
}

// UpdateAccount changes the descriptive fields of an account. Empty values are
// left unchanged. The balance is never touched here.
func (s *bankAccountService) UpdateAccount(
	userID, accountID uint,
	name string,
	accountType models.AccountType,
	currency string,
) (*models.BankAccount, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name = strings.TrimSpace(name); name != "" {
		if len(name) > maxAccountNameLength {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name must be between 1 and 255 characters")
		}
		updates["account_name"] = name
	}
	if accountType != "" {
		if !accountType.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account type must be savings or current")
		}
		updates["account_type"] = accountType
	}
	if currency != "" {
		normalized, err := normalizeCurrency(currency)
		if err != nil {
			return nil, err
		}
		updates["currency"] = normalized
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, writeError(err)
		}
	}

	return account, nil
}

// DeleteAccount removes an account that no transaction references.
func (s *bankAccountService) DeleteAccount(userID, accountID uint) error {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(account).Error; err != nil {
		return deleteError(err, apperrors.ErrAccountInUse)
	}
	return nil
}

// normalizeCurrency upper-cases a three-letter code, defaulting to INR.
func normalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return models.DefaultCurrency, nil
	}
	if validate.Var(currency, "iso4217") != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be an ISO 4217 code")
	}
	return currency, nil
}
