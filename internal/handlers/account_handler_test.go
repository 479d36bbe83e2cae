package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "subtracker/internal/errors"
	"subtracker/internal/middleware"
	"subtracker/internal/models"
	"subtracker/internal/pagination"
	"subtracker/internal/services"
)

// --- mock account service ---

type mockAccountService struct {
	createBankAccountFn func(userID uint, name string, accountType models.AccountType, currency string, opening models.Money) (*models.BankAccount, error)
	getPrimaryAccountFn func(userID uint) (*models.BankAccount, error)
	getUserAccountsFn   func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.BankAccount], error)
	getAccountByIDFn    func(userID, accountID uint) (*models.BankAccount, error)
	updateAccountFn     func(userID, accountID uint, name string, accountType models.AccountType, currency string) (*models.BankAccount, error)
	deleteAccountFn     func(userID, accountID uint) error
}

func (m *mockAccountService) CreateBankAccount(userID uint, name string, accountType models.AccountType, currency string, opening models.Money) (*models.BankAccount, error) {
	if m.createBankAccountFn != nil {
		return m.createBankAccountFn(userID, name, accountType, currency, opening)
	}
	return &models.BankAccount{}, nil
}

func (m *mockAccountService) GetPrimaryAccount(userID uint) (*models.BankAccount, error) {
	if m.getPrimaryAccountFn != nil {
		return m.getPrimaryAccountFn(userID)
	}
	return &models.BankAccount{UserID: userID}, nil
}

func (m *mockAccountService) GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.BankAccount], error) {
	if m.getUserAccountsFn != nil {
		return m.getUserAccountsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.BankAccount{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAccountService) GetAccountByID(userID, accountID uint) (*models.BankAccount, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(userID, accountID)
	}
	return &models.BankAccount{Base: models.Base{ID: accountID}, UserID: userID}, nil
}

func (m *mockAccountService) UpdateAccount(userID, accountID uint, name string, accountType models.AccountType, currency string) (*models.BankAccount, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(userID, accountID, name, accountType, currency)
	}
	return &models.BankAccount{}, nil
}

func (m *mockAccountService) DeleteAccount(userID, accountID uint) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(userID, accountID)
	}
	return nil
}

var _ services.BankAccountServicer = (*mockAccountService)(nil)

func setupAccountRouter(handler *AccountHandler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	auth := r.Group("", injectUserID(1))
	auth.POST("/accounts", handler.CreateAccount)
	auth.GET("/accounts", handler.GetAccounts)
	auth.GET("/accounts/primary", handler.GetPrimaryAccount)
	auth.GET("/accounts/:id", handler.GetAccount)
	auth.PUT("/accounts/:id", handler.UpdateAccount)
	auth.DELETE("/accounts/:id", handler.DeleteAccount)
	auth.GET("/accounts/:id/transactions", handler.GetAccountTransactions)
	return r
}

func TestAccountHandler_CreateAccount(t *testing.T) {
	t.Run("returns 201 and passes the opening balance", func(t *testing.T) {
		var gotOpening models.Money
		accSvc := &mockAccountService{
			createBankAccountFn: func(userID uint, name string, accountType models.AccountType, currency string, opening models.Money) (*models.BankAccount, error) {
				gotOpening = opening
				return &models.BankAccount{
					Base:           models.Base{ID: 3},
					UserID:         userID,
					AccountName:    name,
					AccountType:    accountType,
					Currency:       currency,
					CurrentBalance: opening,
				}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(accSvc, &mockTransactionService{}))

		rec := doRequest(r, "POST", "/accounts",
			`{"account_name":"Salary","account_type":"current","currency":"INR","opening_balance":"1234.50"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotOpening.String() != "1234.50" {
			t.Errorf("expected opening balance 1234.50, got %s", gotOpening)
		}
		account := parseJSON(t, rec)["account"].(map[string]interface{})
		if account["current_balance"] != "1234.50" {
			t.Errorf("expected \"1234.50\", got %v", account["current_balance"])
		}
	})

	t.Run("defaults opening balance to zero", func(t *testing.T) {
		var gotOpening models.Money
		accSvc := &mockAccountService{
			createBankAccountFn: func(_ uint, _ string, _ models.AccountType, _ string, opening models.Money) (*models.BankAccount, error) {
				gotOpening = opening
				return &models.BankAccount{}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(accSvc, &mockTransactionService{}))

		rec := doRequest(r, "POST", "/accounts", `{"account_name":"Salary"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !gotOpening.IsZero() {
			t.Errorf("expected zero opening balance, got %s", gotOpening)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"account_type":"savings"}`},
		{"invalid type", `{"account_name":"Salary","account_type":"fixed"}`},
		{"invalid currency", `{"account_name":"Salary","currency":"XYZ"}`},
		{"malformed balance", `{"account_name":"Salary","opening_balance":"abc"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockTransactionService{}))

			rec := doRequest(r, "POST", "/accounts", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 409 when account exists", func(t *testing.T) {
		accSvc := &mockAccountService{
			createBankAccountFn: func(uint, string, models.AccountType, string, models.Money) (*models.BankAccount, error) {
				return nil, apperrors.ErrAccountExists
			},
		}
		r := setupAccountRouter(NewAccountHandler(accSvc, &mockTransactionService{}))

		rec := doRequest(r, "POST", "/accounts", `{"account_name":"Salary"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_EXISTS")
	})
}

func TestAccountHandler_GetAccounts(t *testing.T) {
	t.Run("returns paginated accounts", func(t *testing.T) {
		accSvc := &mockAccountService{
			getUserAccountsFn: func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.BankAccount], error) {
				resp := pagination.NewPageResponse([]models.BankAccount{{UserID: userID, AccountName: "Main"}}, 1, 20, 1)
				return &resp, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(accSvc, &mockTransactionService{}))

		rec := doRequest(r, "GET", "/accounts", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total_items"] != float64(1) {
			t.Errorf("expected 1 item, got %v", result["total_items"])
		}
	})

	t.Run("returns 400 on oversized page", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockTransactionService{}))

		rec := doRequest(r, "GET", "/accounts?page_size=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAccountHandler_GetPrimaryAccount(t *testing.T) {
	t.Run("returns 404 when user has no account", func(t *testing.T) {
		accSvc := &mockAccountService{
			getPrimaryAccountFn: func(uint) (*models.BankAccount, error) {
				return nil, apperrors.ErrAccountNotFound
			},
		}
		r := setupAccountRouter(NewAccountHandler(accSvc, &mockTransactionService{}))

		rec := doRequest(r, "GET", "/accounts/primary", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_NOT_FOUND")
	})
}

func TestAccountHandler_GetAccount(t *testing.T) {
	t.Run("returns the account", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockTransactionService{}))

		rec := doRequest(r, "GET", "/accounts/5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		account := parseJSON(t, rec)["account"].(map[string]interface{})
		if account["id"] != float64(5) {
			t.Errorf("expected id 5, got %v", account["id"])
		}
	})

	t.Run("returns 400 on invalid ID", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockTransactionService{}))

		rec := doRequest(r, "GET", "/accounts/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on zero ID", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockTransactionService{}))

		rec := doRequest(r, "GET", "/accounts/0", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAccountHandler_UpdateAccount(t *testing.T) {
	t.Run("passes changes to the service", func(t *testing.T) {
		var gotType models.AccountType
		accSvc := &mockAccountService{
			updateAccountFn: func(_, accountID uint, name string, accountType models.AccountType, currency string) (*models.BankAccount, error) {
				gotType = accountType
				return &models.BankAccount{Base: models.Base{ID: accountID}, AccountName: name, AccountType: accountType, Currency: currency}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(accSvc, &mockTransactionService{}))

		rec := doRequest(r, "PUT", "/accounts/2", `{"account_type":"current"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotType != models.AccountTypeCurrent {
			t.Errorf("expected current, got %q", gotType)
		}
	})

	t.Run("returns 400 on invalid currency", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockTransactionService{}))

		rec := doRequest(r, "PUT", "/accounts/2", `{"currency":"RUPEES"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockTransactionService{}))

		rec := doRequest(r, "DELETE", "/accounts/2", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 409 when transactions reference the account", func(t *testing.T) {
		accSvc := &mockAccountService{
			deleteAccountFn: func(uint, uint) error {
				return apperrors.ErrAccountInUse
			},
		}
		r := setupAccountRouter(NewAccountHandler(accSvc, &mockTransactionService{}))

		rec := doRequest(r, "DELETE", "/accounts/2", "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_IN_USE")
	})
}

func TestAccountHandler_GetAccountTransactions(t *testing.T) {
	t.Run("scopes the listing to the account", func(t *testing.T) {
		var gotFilter services.TransactionFilter
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(_ uint, _ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, txSvc))

		rec := doRequest(r, "GET", "/accounts/4/transactions?type=expense", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.BankAccountID == nil || *gotFilter.BankAccountID != 4 {
			t.Errorf("expected bank account 4, got %v", gotFilter.BankAccountID)
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.TransactionTypeExpense {
			t.Errorf("expected expense filter, got %v", gotFilter.Type)
		}
	})

	t.Run("returns 404 for another user's account", func(t *testing.T) {
		called := false
		accSvc := &mockAccountService{
			getAccountByIDFn: func(uint, uint) (*models.BankAccount, error) {
				return nil, apperrors.ErrAccountNotFound
			},
		}
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(uint, pagination.PageRequest, services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				called = true
				return nil, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(accSvc, txSvc))

		rec := doRequest(r, "GET", "/accounts/9/transactions", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if called {
			t.Error("transactions must not be listed for a foreign account")
		}
	})
}
