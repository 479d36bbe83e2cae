package models

import "time"

// AccountType represents the kind of bank account
type AccountType string

const (
	AccountTypeSavings AccountType = "savings"
	AccountTypeCurrent AccountType = "current"
)

// DefaultCurrency is applied to accounts created without an explicit currency.
const DefaultCurrency = "INR"

// Valid reports whether t is one of the stored account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeCurrent:
		return true
	}
	return false
}

// BankAccount holds a user's balance. The application keeps one account per
// user; the table itself does not enforce it.
type BankAccount struct {
	Base
	UserID         uint        `gorm:"not null;index:idx_bank_accounts_user_id" json:"user_id"`
	AccountName    string      `gorm:"size:255;not null" json:"account_name"`
	AccountType    AccountType `gorm:"size:10;not null;default:'savings';check:chk_bank_accounts_account_type,account_type IN ('savings','current')" json:"account_type"`
	Currency       string      `gorm:"size:3;not null;default:'INR'" json:"currency"`
	CurrentBalance Money       `gorm:"type:decimal(15,2);not null;default:0.00" json:"current_balance"`
	UpdatedAt      time.Time   `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
