package services

import (
	"strings"

	"gorm.io/gorm"

	"subtracker/internal/database"
	apperrors "subtracker/internal/errors"
	"subtracker/internal/models"
	"subtracker/internal/pagination"
)

const (
	maxCategoryNameLength        = 100
	maxCategoryDescriptionLength = 255
)

// categoryService manages the global category list.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// SetupDefaultCategories seeds missing defaults and returns every category
// ordered by type then name.
func (s *categoryService) SetupDefaultCategories() ([]models.Category, error) {
	if _, err := database.SeedCategories(s.db); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := s.db.Order("type ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// CreateCategory adds a category. Names are unique within a type.
func (s *categoryService) CreateCategory(name string, categoryType models.CategoryType, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" || len(name) > maxCategoryNameLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name must be between 1 and 100 characters")
	}
	if !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income, expense or transfer")
	}
	if len(description) > maxCategoryDescriptionLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be at most 255 characters")
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("name = ? AND type = ?", name, categoryType).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{
		Name:        name,
		Type:        categoryType,
		Description: description,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, writeError(err)
	}

	return category, nil
}

// GetCategories retrieves a paginated list of all categories.
func (s *categoryService) GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	return s.list(s.db.Model(&models.Category{}), page)
}

// GetCategoriesByType retrieves a paginated list of categories of a specific type.
func (s *categoryService) GetCategoriesByType(categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income, expense or transfer")
	}
	return s.list(s.db.Model(&models.Category{}).Where("type = ?", categoryType), page)
}

// GetCategoryByID retrieves a category by ID
func (s *categoryService) GetCategoryByID(categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrCategoryNotFound)
	}
	return &category, nil
}

// GetCategoryByName looks a category up by exact name. When the same name
// exists under several types the oldest row wins.
func (s *categoryService) GetCategoryByName(name string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("name = ?", strings.TrimSpace(name)).Order("id ASC").First(&category).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrCategoryNotFound)
	}
	return &category, nil
}

// CountByType returns the number of categories per type. Every type is present
// in the result, zero counts included.
func (s *categoryService) CountByType() (map[models.CategoryType]int64, error) {
	var rows []struct {
		Type  models.CategoryType
		Count int64
	}
	if err := s.db.Model(&models.Category{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	counts := make(map[models.CategoryType]int64, len(models.CategoryTypes))
	for _, t := range models.CategoryTypes {
		counts[t] = 0
	}
	for _, r := range rows {
		counts[r.Type] = r.Count
	}
	return counts, nil
}

func (s *categoryService) list(base *gorm.DB, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Order("type ASC, name ASC").Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}
