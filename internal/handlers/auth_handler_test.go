package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "subtracker/internal/errors"
	"subtracker/internal/middleware"
	"subtracker/internal/models"
	"subtracker/internal/services"
	"subtracker/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	getUserByIDFn   func(id uint) (*models.User, error)
	updateProfileFn func(userID uint, fullName, phone string) (*models.User, error)
}

func (m *mockUserService) CreateUser(email, phone, _, fullName string) (*models.User, error) {
	return &models.User{Email: email, Phone: phone, FullName: fullName}, nil
}

func (m *mockUserService) GetUserByID(id uint) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	return &models.User{Email: email}, nil
}

func (m *mockUserService) GetUserByPhone(phone string) (*models.User, error) {
	return &models.User{Phone: phone}, nil
}

func (m *mockUserService) IsEmailTaken(string) (bool, error) { return false, nil }

func (m *mockUserService) IsPhoneTaken(string) (bool, error) { return false, nil }

func (m *mockUserService) VerifyPassword(*models.User, string) bool { return true }

func (m *mockUserService) UpdateProfile(userID uint, fullName, phone string) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(userID, fullName, phone)
	}
	return &models.User{Base: models.Base{ID: userID}, FullName: fullName, Phone: phone}, nil
}

func (m *mockUserService) RecordLogin(uint, time.Time) error { return nil }

func (m *mockUserService) DeleteUser(uint) error { return nil }

var _ services.UserServicer = (*mockUserService)(nil)

type mockTokenService struct {
	revokeFn func(userID uint) (int64, error)
}

func (m *mockTokenService) StoreTokens(userID uint, access, refresh string, expiresAt time.Time) (*models.AuthToken, error) {
	return &models.AuthToken{UserID: userID, AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

func (m *mockTokenService) IsRefreshTokenValid(string, time.Time) (bool, error) { return true, nil }

func (m *mockTokenService) ValidateTokenUser(string, uint, time.Time) (bool, error) {
	return true, nil
}

func (m *mockTokenService) RevokeUserTokens(userID uint) (int64, error) {
	if m.revokeFn != nil {
		return m.revokeFn(userID)
	}
	return 0, nil
}

func (m *mockTokenService) PruneExpired(time.Time) (int64, error) { return 0, nil }

var _ services.AuthTokenServicer = (*mockTokenService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	auth := r.Group("", injectUserID(1))
	auth.GET("/profile", handler.GetProfile)
	auth.PUT("/profile", handler.UpdateProfile)
	auth.POST("/auth/logout", handler.Logout)
	r.GET("/anonymous/profile", handler.GetProfile)
	return r
}

// --- tests ---

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns user and primary account", func(t *testing.T) {
		accSvc := &mockAccountService{
			getPrimaryAccountFn: func(userID uint) (*models.BankAccount, error) {
				return &models.BankAccount{Base: models.Base{ID: 7}, UserID: userID, AccountName: "Main"}, nil
			},
		}
		handler := NewAuthHandler(&mockUserService{}, accSvc, &mockTokenService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		account, ok := result["account"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected account object, got %v", result["account"])
		}
		if account["account_name"] != "Main" {
			t.Errorf("expected Main, got %v", account["account_name"])
		}
		if _, ok := result["user"].(map[string]interface{}); !ok {
			t.Errorf("expected user object, got %v", result["user"])
		}
	})

	t.Run("returns null account when the user has none", func(t *testing.T) {
		accSvc := &mockAccountService{
			getPrimaryAccountFn: func(uint) (*models.BankAccount, error) {
				return nil, apperrors.ErrAccountNotFound
			},
		}
		handler := NewAuthHandler(&mockUserService{}, accSvc, &mockTokenService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["account"] != nil {
			t.Errorf("expected null account, got %v", result["account"])
		}
	})

	t.Run("returns 404 when user is missing", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(uint) (*models.User, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		handler := NewAuthHandler(userSvc, &mockAccountService{}, &mockTokenService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
	})

	t.Run("returns 401 without a user in context", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{}, &mockAccountService{}, &mockTokenService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "GET", "/anonymous/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})

	t.Run("returns 500 on unexpected account error", func(t *testing.T) {
		accSvc := &mockAccountService{
			getPrimaryAccountFn: func(uint) (*models.BankAccount, error) {
				return nil, errors.New("db down")
			},
		}
		handler := NewAuthHandler(&mockUserService{}, accSvc, &mockTokenService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	t.Run("passes changes to the service", func(t *testing.T) {
		var gotName, gotPhone string
		userSvc := &mockUserService{
			updateProfileFn: func(userID uint, fullName, phone string) (*models.User, error) {
				gotName, gotPhone = fullName, phone
				return &models.User{Base: models.Base{ID: userID}, FullName: fullName, Phone: phone}, nil
			},
		}
		handler := NewAuthHandler(userSvc, &mockAccountService{}, &mockTokenService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "PUT", "/profile", `{"full_name":"Asha Rao","phone":"+919876543210"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotName != "Asha Rao" || gotPhone != "+919876543210" {
			t.Errorf("unexpected service args: %q %q", gotName, gotPhone)
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["full_name"] != "Asha Rao" {
			t.Errorf("expected Asha Rao, got %v", user["full_name"])
		}
	})

	t.Run("returns 400 on overlong phone", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{}, &mockAccountService{}, &mockTokenService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "PUT", "/profile", `{"phone":"+91987654321098765432"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 409 when phone is taken", func(t *testing.T) {
		userSvc := &mockUserService{
			updateProfileFn: func(uint, string, string) (*models.User, error) {
				return nil, apperrors.ErrDuplicatePhone
			},
		}
		handler := NewAuthHandler(userSvc, &mockAccountService{}, &mockTokenService{})
		r := setupAuthRouter(handler)

		rec := doRequest(r, "PUT", "/profile", `{"phone":"+919876543210"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_PHONE")
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes the caller's tokens", func(t *testing.T) {
		var revoked uint
		tokSvc := &mockTokenService{
			revokeFn: func(userID uint) (int64, error) {
				revoked = userID
				return 2, nil
			},
		}
		handler := NewAuthHandler(&mockUserService{}, &mockAccountService{}, tokSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/logout", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if revoked != 1 {
			t.Errorf("expected tokens of user 1 revoked, got %d", revoked)
		}
	})

	t.Run("returns 500 when revocation fails", func(t *testing.T) {
		tokSvc := &mockTokenService{
			revokeFn: func(uint) (int64, error) {
				return 0, apperrors.Wrap(apperrors.ErrInternalServer, errors.New("locked"))
			},
		}
		handler := NewAuthHandler(&mockUserService{}, &mockAccountService{}, tokSvc)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/logout", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
