package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"gymgate/internal/httpapi"
	"gymgate/internal/models"
)

type AuthMiddleware struct {
	db        *gorm.DB
	jwtSecret []byte
}

func NewAuthMiddleware(db *gorm.DB, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{db: db, jwtSecret: []byte(jwtSecret)}
}

func (m *AuthMiddleware) GenerateToken(admin models.Admin) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":      admin.ID,
		"email":   admin.Email,
		"isAdmin": true,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	})

	return token.SignedString(m.jwtSecret)
}

// AuthRequired validates the bearer token and loads the admin account into
// the request context. All authenticated accounts here are admins.
func (m *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpapi.AbortError(c, http.StatusUnauthorized, "authorization header required")
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return m.jwtSecret, nil
		})

		if err != nil || !token.Valid {
			httpapi.AbortError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httpapi.AbortError(c, http.StatusUnauthorized, "invalid token claims")
			return
		}

		id, ok := claims["id"].(float64)
		if !ok {
			httpapi.AbortError(c, http.StatusUnauthorized, "invalid token claims")
			return
		}
		adminID := uint(id)

		var admin models.Admin
		if err := m.db.First(&admin, adminID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpapi.AbortError(c, http.StatusUnauthorized, "account not found")
			} else {
				httpapi.AbortError(c, http.StatusInternalServerError, "database error")
			}
			return
		}

		if !admin.Active {
			httpapi.AbortError(c, http.StatusUnauthorized, "account inactive")
			return
		}

		c.Set("admin", admin)
		c.Set("adminID", adminID)

		c.Next()
	}
}
