package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "subtracker/internal/errors"
	"subtracker/internal/services"
)

// LedgerHandler handles journal import and export requests
type LedgerHandler struct {
	ledgerService services.LedgerServicer
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService services.LedgerServicer) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// VerifyLedger reports what an import of the uploaded journal would do
// @Summary     Verify a ledger file
// @Tags        ledger
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "Journal with a .ledger extension"
// @Success     200 {object} services.LedgerVerification "Verification report"
// @Failure     400 {object} ErrorResponse "Invalid or empty file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger/verify [post]
func (h *LedgerHandler) VerifyLedger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	file, err := openLedgerUpload(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer file.Close()

	report, err := h.ledgerService.VerifyLedger(userID, file)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// UploadLedger imports the uploaded journal into the primary bank account
// @Summary     Import a ledger file
// @Tags        ledger
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "Journal with a .ledger extension"
// @Success     200 {object} services.LedgerImportResult "Import result"
// @Failure     400 {object} ErrorResponse "Invalid or empty file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No bank account"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger/upload [post]
func (h *LedgerHandler) UploadLedger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	file, err := openLedgerUpload(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer file.Close()

	result, err := h.ledgerService.ImportLedger(userID, file)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportLedger downloads transactions as a journal
// @Summary     Export transactions as a ledger file
// @Tags        ledger
// @Produce     octet-stream
// @Security    BearerAuth
// @Param       from_date query string true "Start date (YYYY-MM-DD)"
// @Param       to_date   query string true "End date (YYYY-MM-DD)"
// @Success     200 {file} file "Journal"
// @Failure     400 {object} ErrorResponse "Invalid date range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No transactions in range"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger/export [get]
func (h *LedgerHandler) ExportLedger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := requiredDateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	content, err := h.ledgerService.ExportLedger(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions_%s.ledger", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Access-Control-Expose-Headers", "Content-Disposition")
	c.Data(http.StatusOK, "application/octet-stream", content)
}

// openLedgerUpload opens the multipart "file" field. Only .ledger files are
// accepted.
func openLedgerUpload(c *gin.Context) (multipart.File, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidLedgerFile, "file is required")
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".ledger") {
		return nil, apperrors.ErrInvalidLedgerFile
	}
	file, err := header.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return file, nil
}

// requiredDateRange reads the from_date and to_date query parameters.
func requiredDateRange(c *gin.Context) (time.Time, time.Time, error) {
	fromValue, toValue := c.Query("from_date"), c.Query("to_date")
	if fromValue == "" || toValue == "" {
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date and to_date are required")
	}
	from, err := time.Parse(dateLayout, fromValue)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must be YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, toValue)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must be YYYY-MM-DD")
	}
	return from, to, nil
}
