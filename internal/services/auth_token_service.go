package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"subtracker/internal/database"
	apperrors "subtracker/internal/errors"
	"subtracker/internal/models"
)

const maxTokenLength = 512

// authTokenService stores token pairs issued elsewhere and answers validity checks.
type authTokenService struct {
	db *gorm.DB
}

// NewAuthTokenService creates a new AuthTokenServicer.
func NewAuthTokenService(db *gorm.DB) AuthTokenServicer {
	return &authTokenService{db: db}
}

// StoreTokens records an access/refresh pair for a user.
func (s *authTokenService) StoreTokens(userID uint, accessToken, refreshToken string, expiresAt time.Time) (*models.AuthToken, error) {
	accessToken = strings.TrimSpace(accessToken)
	refreshToken = strings.TrimSpace(refreshToken)
	if accessToken == "" || refreshToken == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "access and refresh tokens are required")
	}
	if len(accessToken) > maxTokenLength || len(refreshToken) > maxTokenLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tokens must be at most 512 characters")
	}
	if expiresAt.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expiry is required")
	}

	token := &models.AuthToken{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt.UTC(),
	}
	if err := s.db.Create(token).Error; err != nil {
		if database.IsViolation(err, database.ViolationForeignKey) {
			return nil, apperrors.Wrap(apperrors.ErrUserNotFound, err)
		}
		return nil, writeError(err)
	}
	return token, nil
}

// IsRefreshTokenValid reports whether refreshToken is stored and unexpired at now.
func (s *authTokenService) IsRefreshTokenValid(refreshToken string, now time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&models.AuthToken{}).
		Where("refresh_token = ? AND expires_at > ?", refreshToken, now.UTC()).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// ValidateTokenUser reports whether token is a live access or refresh token of userID.
func (s *authTokenService) ValidateTokenUser(token string, userID uint, now time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&models.AuthToken{}).
		Where("user_id = ? AND expires_at > ?", userID, now.UTC()).
		Where(s.db.Where("access_token = ?", token).Or("refresh_token = ?", token)).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// RevokeUserTokens deletes every stored pair of a user and returns how many were removed.
func (s *authTokenService) RevokeUserTokens(userID uint) (int64, error) {
	result := s.db.Where("user_id = ?", userID).Delete(&models.AuthToken{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// PruneExpired deletes pairs that expired at or before now.
func (s *authTokenService) PruneExpired(now time.Time) (int64, error) {
	result := s.db.Where("expires_at <= ?", now.UTC()).Delete(&models.AuthToken{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}
