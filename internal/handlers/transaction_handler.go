package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "subtracker/internal/errors"
	"subtracker/internal/models"
	"subtracker/internal/pagination"
	"subtracker/internal/services"
)

// TransactionHandler handles transaction requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Income amounts are positive and expenses negative.
type CreateTransactionRequest struct {
	BankAccountID uint                     `json:"bank_account_id" binding:"required"`
	CategoryID    uint                     `json:"category_id" binding:"required"`
	Date          string                   `json:"date" binding:"required,datetime=2006-01-02"`
	Description   string                   `json:"description" binding:"required,min=1,max=255"`
	Amount        *models.Money            `json:"amount" binding:"required"`
	Type          models.TransactionType   `json:"type" binding:"required,transaction_type"`
	DebitAccount  *string                  `json:"debit_account" binding:"omitempty,max=255"`
	CreditAccount *string                  `json:"credit_account" binding:"omitempty,max=255"`
	Source        models.TransactionSource `json:"source" binding:"omitempty,transaction_source"`
	Notes         *string                  `json:"notes"`
}

// DuplicateCheckResponse reports whether a matching transaction exists
type DuplicateCheckResponse struct {
	Exists bool `json:"exists"`
}

// CreateTransaction records a transaction
// @Summary     Create a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD"))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		BankAccountID: req.BankAccountID,
		CategoryID:    req.CategoryID,
		Date:          date,
		Description:   req.Description,
		Amount:        *req.Amount,
		Type:          req.Type,
		DebitAccount:  req.DebitAccount,
		CreditAccount: req.CreditAccount,
		Source:        req.Source,
		Notes:         req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactions lists the user's transactions
// @Summary     List transactions
// @Description Get a paginated, filtered list of the user's transactions, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from_date       query string false "Start date (YYYY-MM-DD)"
// @Param       to_date         query string false "End date (YYYY-MM-DD), inclusive"
// @Param       type            query string false "income, expense or transfer"
// @Param       category_id     query int    false "Category ID"
// @Param       bank_account_id query int    false "Bank account ID"
// @Param       source          query string false "manual or import"
// @Param       page            query int    false "Page number (default 1)"
// @Param       page_size       query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if filter.BankAccountID, err = parseQueryID(c, "bank_account_id"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategorySummary totals the user's transactions per category
// @Summary     Category summary
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from_date       query string false "Start date (YYYY-MM-DD)"
// @Param       to_date         query string false "End date (YYYY-MM-DD), inclusive"
// @Param       type            query string false "income, expense or transfer"
// @Param       bank_account_id query int    false "Bank account ID"
// @Success     200 {array}  services.CategorySummary "Totals per category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/summary [get]
func (h *TransactionHandler) GetCategorySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if filter.BankAccountID, err = parseQueryID(c, "bank_account_id"); err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.transactionService.GetCategorySummary(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// CheckDuplicate reports whether a transaction with the same day and absolute
// amount already exists
// @Summary     Check for a duplicate
// @Description Used by statement imports to skip rows that were already recorded
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       date   query string true "Date (YYYY-MM-DD)"
// @Param       amount query string true "Amount, sign ignored"
// @Success     200 {object} DuplicateCheckResponse "Whether a match exists"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/duplicates [get]
func (h *TransactionHandler) CheckDuplicate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD"))
		return
	}
	amount, err := models.ParseMoney(c.Query("amount"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a decimal number"))
		return
	}

	exists, err := h.transactionService.HasMatchingTransaction(userID, date, amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, DuplicateCheckResponse{Exists: exists})
}

// GetTransaction returns one transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a transaction. The account balance is not adjusted.
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		if !txType.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be income, expense, or transfer")
		}
		filter.Type = &txType
	}

	if v := c.Query("source"); v != "" {
		source := models.TransactionSource(v)
		if !source.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid source, must be manual or import")
		}
		filter.Source = &source
	}

	categoryID, err := parseQueryID(c, "category_id")
	if err != nil {
		return filter, err
	}
	filter.CategoryID = categoryID

	return filter, nil
}
