package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome   CategoryType = "income"
	CategoryTypeExpense  CategoryType = "expense"
	CategoryTypeTransfer CategoryType = "transfer"
)

// CategoryTypes lists every category type in display order.
var CategoryTypes = []CategoryType{CategoryTypeIncome, CategoryTypeExpense, CategoryTypeTransfer}

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense, CategoryTypeTransfer:
		return true
	}
	return false
}

// Category is a global (not user-scoped) transaction classification.
type Category struct {
	Base
	Name        string       `gorm:"size:100;not null" json:"name"`
	Type        CategoryType `gorm:"size:10;not null;index:idx_categories_type;check:chk_categories_type,type IN ('income','expense','transfer')" json:"type"`
	Description string       `gorm:"size:255" json:"description"`
}

// DefaultCategories returns the reference categories every installation starts with.
// Other code looks categories up by these names, so they must not change.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Salary", Type: CategoryTypeIncome, Description: "Regular employment income"},
		{Name: "Investment Returns", Type: CategoryTypeIncome, Description: "Returns from mutual funds and investments"},
		{Name: "Freelance", Type: CategoryTypeIncome, Description: "Freelance and project-based income"},
		{Name: "Other Income", Type: CategoryTypeIncome, Description: "Miscellaneous income"},
		{Name: "Deposit", Type: CategoryTypeIncome, Description: "Cash deposit to self account"},
		{Name: "Food & Dining", Type: CategoryTypeExpense, Description: "Groceries and restaurants"},
		{Name: "Utilities", Type: CategoryTypeExpense, Description: "Electricity, internet, and bills"},
		{Name: "Transportation", Type: CategoryTypeExpense, Description: "Fuel and travel expenses"},
		{Name: "Health", Type: CategoryTypeExpense, Description: "Medical and pharmacy expenses"},
		{Name: "Shopping", Type: CategoryTypeExpense, Description: "Online and offline shopping"},
		{Name: "EMI & Payments", Type: CategoryTypeExpense, Description: "Loan EMIs and credit card payments"},
		{Name: "Investment", Type: CategoryTypeExpense, Description: "Mutual funds and investments"},
		{Name: "Entertainment", Type: CategoryTypeExpense, Description: "Leisure and recreational expenses"},
		{Name: "Other Expense", Type: CategoryTypeExpense, Description: "Miscellaneous expense"},
		{Name: "Internal Transfer", Type: CategoryTypeTransfer, Description: "Account transfers"},
		{Name: "Cash Withdrawal", Type: CategoryTypeTransfer, Description: "ATM and cash withdrawals"},
		{Name: "Wallet Top-up", Type: CategoryTypeTransfer, Description: "Transfers to digital wallets"},
	}
}
