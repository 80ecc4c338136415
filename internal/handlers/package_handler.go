package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gymgate/internal/httpapi"
	"gymgate/internal/models"
)

type PackageHandler struct {
	db *gorm.DB
}

func NewPackageHandler(db *gorm.DB) *PackageHandler {
	return &PackageHandler{db: db}
}

// GetPackages is public: the registration form reads the catalog from here.
// isActive filters; results come back in admin-defined sort order.
func (h *PackageHandler) GetPackages(c *gin.Context) {
	query := h.db.Model(&models.MembershipPackage{})

	if isActive := c.Query("isActive"); isActive != "" {
		active, err := strconv.ParseBool(isActive)
		if err != nil {
			httpapi.Error(c, http.StatusBadRequest, "invalid isActive value")
			return
		}
		query = query.Where("is_active = ?", active)
	}

	var packages []models.MembershipPackage
	if err := query.Order("sort_order ASC, id ASC").Find(&packages).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to load membership packages")
		return
	}

	httpapi.Data(c, http.StatusOK, packages)
}

func (h *PackageHandler) GetPackage(c *gin.Context) {
	pkg, ok := h.loadPackage(c)
	if !ok {
		return
	}
	httpapi.Data(c, http.StatusOK, pkg)
}

func (h *PackageHandler) CreatePackage(c *gin.Context) {
	var input struct {
		Title        string   `json:"title" binding:"required"`
		Description  string   `json:"description"`
		Price        *float64 `json:"price" binding:"required"`
		DurationDays *int     `json:"durationDays" binding:"required"`
		IsActive     *bool    `json:"isActive"`
		SortOrder    int      `json:"sortOrder"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		httpapi.Error(c, http.StatusBadRequest, "invalid package data: "+err.Error())
		return
	}

	pkg := models.MembershipPackage{
		Title:        input.Title,
		Description:  input.Description,
		Price:        *input.Price,
		DurationDays: *input.DurationDays,
		IsActive:     true,
		SortOrder:    input.SortOrder,
	}
	if input.IsActive != nil {
		pkg.IsActive = *input.IsActive
	}

	if err := pkg.Validate(); err != nil {
		httpapi.Error(c, http.StatusBadRequest, "price must be non-negative and duration at least one day")
		return
	}

	if err := h.db.Create(&pkg).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to create membership package")
		return
	}

	httpapi.Data(c, http.StatusCreated, pkg)
}

func (h *PackageHandler) UpdatePackage(c *gin.Context) {
	pkg, ok := h.loadPackage(c)
	if !ok {
		return
	}

	var input struct {
		Title        *string  `json:"title"`
		Description  *string  `json:"description"`
		Price        *float64 `json:"price"`
		DurationDays *int     `json:"durationDays"`
		IsActive     *bool    `json:"isActive"`
		SortOrder    *int     `json:"sortOrder"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		httpapi.Error(c, http.StatusBadRequest, "invalid package data: "+err.Error())
		return
	}

	if input.Title != nil {
		pkg.Title = *input.Title
	}
	if input.Description != nil {
		pkg.Description = *input.Description
	}
	if input.Price != nil {
		pkg.Price = *input.Price
	}
	if input.DurationDays != nil {
		pkg.DurationDays = *input.DurationDays
	}
	if input.IsActive != nil {
		pkg.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		pkg.SortOrder = *input.SortOrder
	}

	if err := pkg.Validate(); err != nil {
		httpapi.Error(c, http.StatusBadRequest, "price must be non-negative and duration at least one day")
		return
	}

	// Existing members keep their stamped windows; package edits only
	// affect future approvals.
	if err := h.db.Save(pkg).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to update membership package")
		return
	}

	httpapi.Data(c, http.StatusOK, pkg)
}

func (h *PackageHandler) DeletePackage(c *gin.Context) {
	pkg, ok := h.loadPackage(c)
	if !ok {
		return
	}

	if err := h.db.Delete(pkg).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to delete membership package")
		return
	}

	httpapi.Data(c, http.StatusOK, gin.H{"message": "membership package deleted"})
}

func (h *PackageHandler) loadPackage(c *gin.Context) (*models.MembershipPackage, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpapi.Error(c, http.StatusBadRequest, "invalid package id")
		return nil, false
	}

	var pkg models.MembershipPackage
	if err := h.db.First(&pkg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpapi.Error(c, http.StatusNotFound, "membership package not found")
		} else {
			httpapi.Error(c, http.StatusInternalServerError, "failed to load membership package")
		}
		return nil, false
	}

	return &pkg, true
}
