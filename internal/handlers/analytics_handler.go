package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "subtracker/internal/errors"
	"subtracker/internal/services"
)

const (
	monthLayout  = "2006-01"
	defaultWeeks = 4
)

// AnalyticsHandler handles spending report requests
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
	now              func() time.Time
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, now: time.Now}
}

// GetTopSpending ranks expense categories within a date range
// @Summary     Top spending categories
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string true "Start date (YYYY-MM-DD)"
// @Param       to_date   query string true "End date (YYYY-MM-DD)"
// @Success     200 {object} services.TopSpending "Categories by total, largest first"
// @Failure     400 {object} ErrorResponse "Invalid date range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/top-spending [get]
func (h *AnalyticsHandler) GetTopSpending(c *gin.Context) {
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

	report, err := h.analyticsService.GetTopSpending(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetMonthlyTrend compares daily spending of a month with the month before
// @Summary     Monthly spending trend
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM), defaults to the current month"
// @Success     200 {object} services.MonthlyTrend "Daily totals for both months"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/monthly-trend [get]
func (h *AnalyticsHandler) GetMonthlyTrend(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := h.monthParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	trend, err := h.analyticsService.GetMonthlyTrend(userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, trend)
}

// GetWeeklySpending splits recent spending into weeks ending today
// @Summary     Weekly spending
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       weeks query int false "Number of weeks (1-12)" default(4)
// @Success     200 {object} services.WeeklySpending "Weekly totals, oldest first"
// @Failure     400 {object} ErrorResponse "Invalid week count"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/weekly-spending [get]
func (h *AnalyticsHandler) GetWeeklySpending(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	weeks := defaultWeeks
	if v := c.Query("weeks"); v != "" {
		weeks, err = strconv.Atoi(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "weeks must be a number"))
			return
		}
	}

	report, err := h.analyticsService.GetWeeklySpending(userID, weeks, h.now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetIncomeExpense balances a month's income against its expenses
// @Summary     Income versus expense
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM), defaults to the current month"
// @Success     200 {object} services.IncomeExpense "Monthly totals and savings rate"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/income-expense [get]
func (h *AnalyticsHandler) GetIncomeExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := h.monthParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.analyticsService.GetIncomeExpense(userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AnalyticsHandler) monthParam(c *gin.Context) (time.Time, error) {
	v := c.Query("month")
	if v == "" {
		return h.now().UTC(), nil
	}
	month, err := time.Parse(monthLayout, v)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be YYYY-MM")
	}
	return month, nil
}
