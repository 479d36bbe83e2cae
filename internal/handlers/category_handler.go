package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "subtracker/internal/errors"
	"subtracker/internal/models"
	"subtracker/internal/pagination"
	"subtracker/internal/services"
)

// CategoryHandler handles requests for the shared category list
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name        string              `json:"name" binding:"required,min=1,max=100"`
	Type        models.CategoryType `json:"type" binding:"required,category_type"`
	Description string              `json:"description" binding:"max=255"`
}

// CategoryCountsResponse holds the number of categories per type
type CategoryCountsResponse struct {
	Counts map[models.CategoryType]int64 `json:"counts"`
	Total  int64                         `json:"total"`
}

// GetCategories lists categories, optionally of one type
// @Summary     List categories
// @Description Get a paginated list of categories ordered by type and name
// @Tags        categories
// @Produce     json
// @Param       type      query string false "income, expense or transfer"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Category] "Paginated categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var (
		result *pagination.PageResponse[models.Category]
		err    error
	)
	if v := c.Query("type"); v != "" {
		categoryType := models.CategoryType(v)
		if !categoryType.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income, expense or transfer"))
			return
		}
		result, err = h.categoryService.GetCategoriesByType(categoryType, page)
	} else {
		result, err = h.categoryService.GetCategories(page)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategory returns one category
// @Summary     Get category by ID
// @Tags        categories
// @Produce     json
// @Param       id path int true "Category ID"
// @Success     200 {object} models.Category "Category details"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// GetCategoryCounts returns how many categories exist per type
// @Summary     Count categories
// @Tags        categories
// @Produce     json
// @Success     200 {object} CategoryCountsResponse "Counts per type"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/counts [get]
func (h *CategoryHandler) GetCategoryCounts(c *gin.Context) {
	counts, err := h.categoryService.CountByType()
	if err != nil {
		respondWithError(c, err)
		return
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, CategoryCountsResponse{Counts: counts, Total: total})
}

// SetupDefaultCategories seeds any missing default category
// @Summary     Seed default categories
// @Description Insert missing default categories and return the full list. Existing rows are kept.
// @Tags        categories
// @Produce     json
// @Security    AdminKey
// @Success     200 {array}  models.Category "All categories"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/setup [post]
func (h *CategoryHandler) SetupDefaultCategories(c *gin.Context) {
	categories, err := h.categoryService.SetupDefaultCategories()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory adds a category to the shared list
// @Summary     Create a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    AdminKey
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     409 {object} ErrorResponse "Duplicate category"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(req.Name, req.Type, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}
