package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gymgate/internal/httpapi"
	"gymgate/internal/middleware"
	"gymgate/internal/models"
)

type AuthHandler struct {
	db   *gorm.DB
	auth *middleware.AuthMiddleware
}

func NewAuthHandler(db *gorm.DB, auth *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{db: db, auth: auth}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		httpapi.Error(c, http.StatusBadRequest, "email and password are required")
		return
	}

	var admin models.Admin
	if err := h.db.First(&admin, "email = ?", input.Email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpapi.Error(c, http.StatusUnauthorized, "invalid credentials")
		} else {
			httpapi.Error(c, http.StatusInternalServerError, "database error")
		}
		return
	}

	if !admin.Active || !admin.CheckPassword(input.Password) {
		httpapi.Error(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.auth.GenerateToken(admin)
	if err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	httpapi.Data(c, http.StatusOK, gin.H{
		"accessToken": token,
		"admin":       admin,
	})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	admin, exists := c.Get("admin")
	if !exists {
		httpapi.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	httpapi.Data(c, http.StatusOK, admin)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	adminValue, exists := c.Get("admin")
	if !exists {
		httpapi.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}
	admin := adminValue.(models.Admin)

	var input struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		httpapi.Error(c, http.StatusBadRequest, "current and new password are required (new password min 8 characters)")
		return
	}

	if !admin.CheckPassword(input.CurrentPassword) {
		httpapi.Error(c, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	admin.Password = input.NewPassword
	if err := h.db.Save(&admin).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to update password")
		return
	}

	httpapi.Data(c, http.StatusOK, gin.H{"message": "password updated"})
}
