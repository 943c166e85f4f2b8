// utils/auth.go
package utils

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tutorhub-backend/config"
)

// CheckAdminPassword compares a supplied password against the configured
// secret. When a bcrypt hash is configured it takes precedence; otherwise a
// constant-time comparison against the plain secret is used.
func CheckAdminPassword(cfg *config.Config, password string) bool {
	if password == "" {
		return false
	}
	if cfg.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(cfg.AdminPassword), []byte(password)) == 1
}

// IssueAdminToken signs a short-lived admin session token.
func IssueAdminToken(cfg *config.Config) (string, error) {
	if cfg.JWTSecret == "" {
		return "", errors.New("JWT_SECRET not set")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(time.Duration(cfg.JWTExpiryHours) * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	})
	return token.SignedString([]byte(cfg.JWTSecret))
}

func validAdminToken(cfg *config.Config, tokenString string) bool {
	if cfg.JWTSecret == "" || tokenString == "" {
		return false
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return ok && claims["role"] == "admin"
}

// AdminAuthMiddleware guards the admin surface. It accepts either the static
// X-Admin-Password shared secret or a Bearer token from /admin/api/login.
// Requests failing both are aborted before any payload processing.
func AdminAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CheckAdminPassword(cfg, c.GetHeader("X-Admin-Password")) {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		if len(auth) > 7 && strings.ToUpper(auth[0:6]) == "BEARER" {
			if validAdminToken(cfg, auth[7:]) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
}
