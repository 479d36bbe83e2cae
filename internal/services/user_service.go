package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"subtracker/internal/database"
	apperrors "subtracker/internal/errors"
	"subtracker/internal/models"
)

const (
	minPasswordLength = 4
	maxFullNameLength = 255
	maxEmailLength    = 255
)

var (
	phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	validate     = validator.New()
)

// userService handles user persistence.
type userService struct {
	db         *gorm.DB
	bcryptCost int
}

// NewUserService creates a new UserServicer. bcryptCost outside bcrypt's
// accepted range falls back to bcrypt.DefaultCost.
func NewUserService(db *gorm.DB, bcryptCost int) UserServicer {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{db: db, bcryptCost: bcryptCost}
}

// CreateUser inserts a user with a bcrypt-hashed password
func (s *userService) CreateUser(email, phone, password, fullName string) (*models.User, error) {
	email = normalizeEmail(email)
	phone = strings.TrimSpace(phone)
	fullName = strings.TrimSpace(fullName)

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	if err := validateFullName(fullName); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 4 characters")
	}

	taken, err := s.IsEmailTaken(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateEmail
	}
	taken, err = s.IsPhoneTaken(phone)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicatePhone
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at most 72 bytes")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		FullName:     fullName,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, userWriteError(err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// GetUserByPhone retrieves a user by phone number
func (s *userService) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("phone = ?", strings.TrimSpace(phone)).First(&user).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func (s *userService) IsEmailTaken(email string) (bool, error) {
	return s.exists("email = ?", normalizeEmail(email))
}

func (s *userService) IsPhoneTaken(phone string) (bool, error) {
	return s.exists("phone = ?", strings.TrimSpace(phone))
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// UpdateProfile changes the display name and/or phone. Empty values are left unchanged.
func (s *userService) UpdateProfile(userID uint, fullName, phone string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fullName = strings.TrimSpace(fullName); fullName != "" {
		if err := validateFullName(fullName); err != nil {
			return nil, err
		}
		updates["full_name"] = fullName
	}
	if phone = strings.TrimSpace(phone); phone != "" && phone != user.Phone {
		if err := validatePhone(phone); err != nil {
			return nil, err
		}
		taken, err := s.IsPhoneTaken(phone)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.ErrDuplicatePhone
		}
		updates["phone"] = phone
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, userWriteError(err)
		}
	}

	return user, nil
}

// RecordLogin stamps the user's last_login column.
func (s *userService) RecordLogin(userID uint, at time.Time) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("last_login", at)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user that no longer owns any rows.
func (s *userService) DeleteUser(userID uint) error {
	result := s.db.Delete(&models.User{}, userID)
	if result.Error != nil {
		return deleteError(result.Error, apperrors.ErrUserInUse)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (s *userService) exists(query string, arg interface{}) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// userWriteError tells the two unique columns apart so a race past the
// pre-checks still reports the right duplicate.
func userWriteError(err error) error {
	v := database.ClassifyError(err)
	if v != nil && v.Kind == database.ViolationUnique {
		if v.Involves("phone") {
			return apperrors.Wrap(apperrors.ErrDuplicatePhone, err)
		}
		return apperrors.Wrap(apperrors.ErrDuplicateEmail, err)
	}
	return writeError(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}
	if len(email) > maxEmailLength || validate.Var(email, "email") != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "email is not a valid address")
	}
	return nil
}

func validatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "phone must be 9 to 15 digits, optionally prefixed with +")
	}
	return nil
}

func validateFullName(fullName string) error {
	if fullName == "" || len(fullName) > maxFullNameLength {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "full name must be between 1 and 255 characters")
	}
	return nil
}
