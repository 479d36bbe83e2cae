package testutil

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"subtracker/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// TestJWTSecret signs fixture tokens.
const TestJWTSecret = "test-secret"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password, unique email and phone.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email and a unique phone.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		Phone:        fmt.Sprintf("+91%010d", 9000000000+nextID()),
		PasswordHash: string(hash),
		FullName:     "Test User",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBankAccount creates a savings account with zero balance.
func CreateTestBankAccount(t *testing.T, db *gorm.DB, userID uint) *models.BankAccount {
	t.Helper()
	return CreateTestBankAccountWithBalance(t, db, userID, models.ZeroMoney())
}

// CreateTestBankAccountWithBalance creates a savings account holding balance.
func CreateTestBankAccountWithBalance(t *testing.T, db *gorm.DB, userID uint, balance models.Money) *models.BankAccount {
	t.Helper()

	account := &models.BankAccount{
		UserID:         userID,
		AccountName:    fmt.Sprintf("Test Account %d", nextID()),
		AccountType:    models.AccountTypeSavings,
		Currency:       models.DefaultCurrency,
		CurrentBalance: balance,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test bank account: %v", err)
	}
	return account
}

// CategoryByName returns a seeded category.
func CategoryByName(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	var category models.Category
	if err := db.Where("name = ?", name).First(&category).Error; err != nil {
		t.Fatalf("category %q not found: %v", name, err)
	}
	return &category
}

// CreateTestTransaction creates a transaction whose type follows the category.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID uint, category *models.Category, amount string, date time.Time) *models.Transaction {
	t.Helper()

	y, m, d := date.Date()
	tx := &models.Transaction{
		UserID:        userID,
		BankAccountID: accountID,
		CategoryID:    category.ID,
		Date:          time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Description:   fmt.Sprintf("Test transaction %d", nextID()),
		Amount:        models.MustMoney(amount),
		Type:          models.TransactionType(category.Type),
		Source:        models.TransactionSourceManual,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// SignTestToken returns an HS256 access token for userID signed with TestJWTSecret.
func SignTestToken(t *testing.T, userID uint, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id":    userID,
		"token_type": "access",
		"sub":        strconv.FormatUint(uint64(userID), 10),
		"jti":        uuid.NewString(),
		"iat":        time.Now().Unix(),
		"exp":        expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

// CreateTestAuthToken stores a signed access token and an opaque refresh token
// for userID expiring at expiresAt.
func CreateTestAuthToken(t *testing.T, db *gorm.DB, userID uint, expiresAt time.Time) *models.AuthToken {
	t.Helper()

	token := &models.AuthToken{
		UserID:       userID,
		AccessToken:  SignTestToken(t, userID, expiresAt),
		RefreshToken: uuid.NewString(),
		ExpiresAt:    expiresAt.UTC(),
	}
	if err := db.Create(token).Error; err != nil {
		t.Fatalf("failed to create test auth token: %v", err)
	}
	return token
}
