package services

import (
	"io"
	"time"

	"subtracker/internal/models"
	"subtracker/internal/pagination"
)

// UserServicer defines the contract for user persistence.
type UserServicer interface {
	CreateUser(email, phone, password, fullName string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	IsEmailTaken(email string) (bool, error)
	IsPhoneTaken(phone string) (bool, error)
	VerifyPassword(user *models.User, password string) bool
	UpdateProfile(userID uint, fullName, phone string) (*models.User, error)
	RecordLogin(userID uint, at time.Time) error
	DeleteUser(userID uint) error
}

// AuthTokenServicer defines the contract for stored token pairs.
type AuthTokenServicer interface {
	StoreTokens(userID uint, accessToken, refreshToken string, expiresAt time.Time) (*models.AuthToken, error)
	IsRefreshTokenValid(refreshToken string, now time.Time) (bool, error)
	ValidateTokenUser(token string, userID uint, now time.Time) (bool, error)
	RevokeUserTokens(userID uint) (int64, error)
	PruneExpired(now time.Time) (int64, error)
}

// BankAccountServicer defines the contract for bank account persistence.
type BankAccountServicer interface {
	CreateBankAccount(userID uint, name string, accountType models.AccountType, currency string, openingBalance models.Money) (*models.BankAccount, error)
	GetPrimaryAccount(userID uint) (*models.BankAccount, error)
	GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.BankAccount], error)
	GetAccountByID(userID, accountID uint) (*models.BankAccount, error)
	UpdateAccount(userID, accountID uint, name string, accountType models.AccountType, currency string) (*models.BankAccount, error)
	DeleteAccount(userID, accountID uint) error
}

// CategoryServicer defines the contract for the global category taxonomy.
type CategoryServicer interface {
	SetupDefaultCategories() ([]models.Category, error)
	CreateCategory(name string, categoryType models.CategoryType, description string) (*models.Category, error)
	GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoriesByType(categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(categoryID uint) (*models.Category, error)
	GetCategoryByName(name string) (*models.Category, error)
	CountByType() (map[models.CategoryType]int64, error)
}

// TransactionInput carries the writable columns of a transaction.
type TransactionInput struct {
	BankAccountID uint
	CategoryID    uint
	Date          time.Time
	Description   string
	Amount        models.Money
	Type          models.TransactionType
	DebitAccount  *string
	CreditAccount *string
	Source        models.TransactionSource
	Notes         *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate      *time.Time
	ToDate        *time.Time
	Type          *models.TransactionType
	CategoryID    *uint
	BankAccountID *uint
	Source        *models.TransactionSource
}

// CategorySummary aggregates a user's transactions for one category.
type CategorySummary struct {
	CategoryID   uint                `json:"category_id"`
	CategoryName string              `json:"category_name"`
	CategoryType models.CategoryType `json:"category_type"`
	Total        models.Money        `json:"total"`
	Count        int64               `json:"count"`
}

// TransactionServicer defines the contract for transaction persistence.
type TransactionServicer interface {
	CreateTransaction(userID uint, input TransactionInput) (*models.Transaction, error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	HasMatchingTransaction(userID uint, date time.Time, amount models.Money) (bool, error)
	GetCategorySummary(userID uint, filter TransactionFilter) ([]CategorySummary, error)
	DeleteTransaction(userID, transactionID uint) error
}

// LedgerRow is one journal entry as seen by verification and import. Amount
// carries the stored sign: income positive, expense negative.
type LedgerRow struct {
	Line          int                    `json:"line"`
	Date          string                 `json:"date,omitempty"`
	Description   string                 `json:"description,omitempty"`
	Type          models.TransactionType `json:"type,omitempty"`
	Amount        models.Money           `json:"amount"`
	DebitAccount  string                 `json:"debit_account,omitempty"`
	CreditAccount string                 `json:"credit_account,omitempty"`
	CategoryID    uint                   `json:"category_id,omitempty"`
	CategoryName  string                 `json:"category_name,omitempty"`
	TransactionID uint                   `json:"transaction_id,omitempty"`
	Message       string                 `json:"message,omitempty"`
}

// LedgerVerificationSummary counts the entries in each verification bucket.
type LedgerVerificationSummary struct {
	TotalEntries int `json:"total_entries"`
	Repeated     int `json:"repeated_entries"`
	ExistingInDB int `json:"existing_in_db"`
	Processable  int `json:"processable"`
	Invalid      int `json:"invalid"`
}

// LedgerVerification sorts a journal's entries without writing anything.
type LedgerVerification struct {
	Summary     LedgerVerificationSummary `json:"validation_summary"`
	Repeated    []LedgerRow               `json:"repeated_transactions"`
	Existing    []LedgerRow               `json:"existing_in_db"`
	Processable []LedgerRow               `json:"processable_transactions"`
	Invalid     []LedgerRow               `json:"invalid_transactions"`
}

// LedgerImportStatistics counts the outcome of an import.
type LedgerImportStatistics struct {
	Total      int `json:"total_transactions"`
	Successful int `json:"successful_transactions"`
	Failed     int `json:"failed_transactions"`
	Skipped    int `json:"skipped_transactions"`
}

// LedgerImportResult reports every entry of an imported journal.
type LedgerImportResult struct {
	Message    string                 `json:"message"`
	Statistics LedgerImportStatistics `json:"statistics"`
	Successful []LedgerRow            `json:"successful"`
	Failed     []LedgerRow            `json:"failed"`
	Skipped    []LedgerRow            `json:"skipped"`
}

// LedgerServicer defines the contract for journal import and export.
type LedgerServicer interface {
	VerifyLedger(userID uint, r io.Reader) (*LedgerVerification, error)
	ImportLedger(userID uint, r io.Reader) (*LedgerImportResult, error)
	ExportLedger(userID uint, from, to time.Time) ([]byte, error)
}

// CategorySpending is the expense total of one category.
type CategorySpending struct {
	Category         string       `json:"category"`
	Amount           models.Money `json:"amount"`
	TransactionCount int          `json:"transaction_count"`
	FirstTransaction string       `json:"first_transaction"`
	LastTransaction  string       `json:"last_transaction"`
}

// TopSpending ranks categories by expense total, largest first.
type TopSpending struct {
	From          string             `json:"from"`
	To            string             `json:"to"`
	TotalSpending models.Money       `json:"total_spending"`
	CategoryCount int                `json:"category_count"`
	Categories    []CategorySpending `json:"categories"`
}

// DailySpending is the expense total of one day.
type DailySpending struct {
	Date             string       `json:"date"`
	TotalSpending    models.Money `json:"total_spending"`
	TransactionCount int          `json:"transaction_count"`
}

// SpendingSummary aggregates a series of days.
type SpendingSummary struct {
	TotalSpending        models.Money `json:"total_spending"`
	AverageDailySpending models.Money `json:"average_daily_spending"`
	TotalTransactions    int          `json:"total_transactions"`
	DaysWithSpending     int          `json:"days_with_spending"`
	DaysWithoutSpending  int          `json:"days_without_spending"`
}

// MonthSpending is one calendar month of daily expense totals.
type MonthSpending struct {
	Month     string          `json:"month"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Summary   SpendingSummary `json:"summary"`
	DailyData []DailySpending `json:"daily_data"`
}

// MonthlyTrend compares a month with the one before it.
type MonthlyTrend struct {
	CurrentMonth  MonthSpending `json:"current_month"`
	PreviousMonth MonthSpending `json:"previous_month"`
}

// WeeklyBucket is seven consecutive days of expenses.
type WeeklyBucket struct {
	WeekStart           string       `json:"week_start"`
	WeekEnd             string       `json:"week_end"`
	WeekLabel           string       `json:"week_label"`
	TotalSpending       models.Money `json:"total_spending"`
	DailyAverage        models.Money `json:"daily_average"`
	TotalTransactions   int          `json:"total_transactions"`
	DaysWithSpending    int          `json:"days_with_spending"`
	DaysWithoutSpending int          `json:"days_without_spending"`
	Categories          []string     `json:"categories"`
}

// WeeklySpending covers the most recent weeks, oldest first.
type WeeklySpending struct {
	StartDate         string         `json:"start_date"`
	EndDate           string         `json:"end_date"`
	TotalWeeks        int            `json:"total_weeks"`
	TotalSpending     models.Money   `json:"total_spending"`
	TotalTransactions int            `json:"total_transactions"`
	WeeklyAverage     models.Money   `json:"weekly_average"`
	Weeks             []WeeklyBucket `json:"weekly_data"`
}

// IncomeExpense balances a month's income against its expenses.
type IncomeExpense struct {
	Month        string       `json:"month"`
	TotalIncome  models.Money `json:"total_income"`
	TotalExpense models.Money `json:"total_expense"`
	NetAmount    models.Money `json:"net_amount"`
	SavingsRate  float64      `json:"savings_rate"`
}

// AnalyticsServicer defines the contract for spending reports.
type AnalyticsServicer interface {
	GetTopSpending(userID uint, from, to time.Time) (*TopSpending, error)
	GetMonthlyTrend(userID uint, month time.Time) (*MonthlyTrend, error)
	GetWeeklySpending(userID uint, weeks int, through time.Time) (*WeeklySpending, error)
	GetIncomeExpense(userID uint, month time.Time) (*IncomeExpense, error)
}
