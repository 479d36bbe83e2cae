package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// TransactionSource records how a transaction entered the system
type TransactionSource string

const (
	TransactionSourceManual TransactionSource = "manual"
	TransactionSourceImport TransactionSource = "import"
)

// Valid reports whether s is a known source.
func (s TransactionSource) Valid() bool {
	switch s {
	case TransactionSourceManual, TransactionSourceImport:
		return true
	}
	return false
}

// Transaction is a single movement of money on a bank account.
// By convention income is positive and expense negative.
type Transaction struct {
	Base
	UserID        uint              `gorm:"not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	BankAccountID uint              `gorm:"not null;index:idx_transactions_bank_account_id" json:"bank_account_id"`
	CategoryID    uint              `gorm:"not null;index:idx_transactions_category_id" json:"category_id"`
	Date          time.Time         `gorm:"type:date;not null;index:idx_transactions_user_date,priority:2" json:"date"`
	Description   string            `gorm:"size:255;not null" json:"description"`
	Amount        Money             `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type          TransactionType   `gorm:"size:10;not null;index:idx_transactions_type;check:chk_transactions_type,type IN ('income','expense','transfer')" json:"type"`
	DebitAccount  *string           `gorm:"size:255" json:"debit_account,omitempty"`
	CreditAccount *string           `gorm:"size:255" json:"credit_account,omitempty"`
	Source        TransactionSource `gorm:"size:10;not null;default:'manual';check:chk_transactions_source,source IN ('manual','import')" json:"source"`
	Notes         *string           `gorm:"type:text" json:"notes,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`

	User        *User        `gorm:"foreignKey:UserID" json:"-"`
	BankAccount *BankAccount `gorm:"foreignKey:BankAccountID" json:"bank_account,omitempty"`
	Category    *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
