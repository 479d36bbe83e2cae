package middleware

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "subtracker/internal/errors"
)

func TestErrorHandler(t *testing.T) {
	setup := func(err error) *gin.Engine {
		r := gin.New()
		r.Use(ErrorHandler())
		r.GET("/fail", func(c *gin.Context) {
			_ = c.Error(err)
		})
		return r
	}

	t.Run("app error", func(t *testing.T) {
		rec := doRequest(setup(apperrors.ErrAccountNotFound), http.MethodGet, "/fail", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "ACCOUNT_NOT_FOUND" {
			t.Errorf("expected ACCOUNT_NOT_FOUND, got %s", code)
		}
	})

	t.Run("wrapped internal error", func(t *testing.T) {
		err := apperrors.Wrap(apperrors.ErrInternalServer, errors.New("connection reset"))
		rec := doRequest(setup(err), http.MethodGet, "/fail", nil)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if body := rec.Body.String(); strings.Contains(body, "connection reset") {
			t.Errorf("internal details leaked: %s", body)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		rec := doRequest(setup(errors.New("boom")), http.MethodGet, "/fail", nil)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "INTERNAL_ERROR" {
			t.Errorf("expected INTERNAL_ERROR, got %s", code)
		}
	})
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	t.Run("generates id", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/ping", nil)
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected a request id header")
		}
	})

	t.Run("keeps valid incoming id", func(t *testing.T) {
		id := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
		rec := doRequest(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: id})
		if got := rec.Header().Get(RequestIDHeader); got != id {
			t.Errorf("expected %s, got %s", id, got)
		}
	})

	t.Run("replaces malformed id", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: "not-a-uuid"})
		if got := rec.Header().Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
			t.Errorf("expected a generated id, got %q", got)
		}
	})
}
