package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gymgate/internal/middleware"
	"gymgate/internal/models"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Admin{}))

	admin := models.Admin{Name: "Front Desk", Email: "desk@example.com", Password: "correct-horse", Active: true}
	require.NoError(t, db.Create(&admin).Error)

	auth := middleware.NewAuthMiddleware(db, "auth-test-secret")
	handler := NewAuthHandler(db, auth)

	router := gin.New()
	router.POST("/auth/login", handler.Login)
	router.GET("/auth/me", auth.AuthRequired(), handler.GetMe)

	return router
}

func doRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesToken(t *testing.T) {
	router := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email":    "desk@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := unwrapData(t, w)
	token, _ := data["accessToken"].(string)
	require.NotEmpty(t, token)

	// The issued token authenticates the protected surface.
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := doRequest(router, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	router := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email":    "desk@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", errorCause(t, w))

	// Unknown accounts get the same answer as wrong passwords.
	w = doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email":    "nobody@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", errorCause(t, w))
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	router := setupAuthRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := doRequest(router, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
