package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "subtracker/internal/errors"
	"subtracker/internal/models"
	"subtracker/internal/services"
)

// AuthHandler serves the signed-in user's profile and session endpoints.
// Sign-up and token issuance live in a separate service.
type AuthHandler struct {
	userService    services.UserServicer
	accountService services.BankAccountServicer
	tokenService   services.AuthTokenServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, accountService services.BankAccountServicer, tokenService services.AuthTokenServicer) *AuthHandler {
	return &AuthHandler{userService: userService, accountService: accountService, tokenService: tokenService}
}

// UpdateProfileRequest represents the request payload for updating a profile
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"omitempty,min=1,max=255"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
}

// ProfileResponse represents the profile payload
type ProfileResponse struct {
	User    *models.User        `json:"user"`
	Account *models.BankAccount `json:"account"`
}

// GetProfile returns the authenticated user and their primary bank account
// @Summary     Get profile
// @Description Get the authenticated user's profile and primary bank account
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ProfileResponse "Profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetPrimaryAccount(userID)
	if err != nil && !errors.Is(err, apperrors.ErrAccountNotFound) {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{User: user, Account: account})
}

// UpdateProfile changes the authenticated user's name or phone
// @Summary     Update profile
// @Description Update the authenticated user's full name and/or phone number
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile changes"
// @Success     200 {object} models.User "Updated user"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Phone already in use"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(userID, req.FullName, req.Phone)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout revokes every stored token pair of the authenticated user
// @Summary     Log out
// @Description Revoke all stored tokens of the authenticated user
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Tokens revoked"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.tokenService.RevokeUserTokens(userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}
