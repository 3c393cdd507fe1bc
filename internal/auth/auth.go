// Package auth implements admin authentication: bcrypt password hashing,
// HMAC-signed JWT sessions, and the gin middleware guarding the admin API.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vudara/aiconfig/internal/config"
	"github.com/vudara/aiconfig/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidToken is returned for tokens that fail parsing, signature, or
// expiry checks.
var ErrInvalidToken = errors.New("auth: invalid token")

// ContextAdminID is the gin context key holding the authenticated admin's id.
const ContextAdminID = "adminID"

// AdminClaims carries the admin identity inside the JWT.
type AdminClaims struct {
	AdminID uint64 `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, errHash := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errHash != nil {
		return "", errHash
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueAdminToken signs a JWT for the admin using the configured secret and
// expiry.
func IssueAdminToken(jwtCfg config.JWTConfig, admin *models.Admin) (string, error) {
	if strings.TrimSpace(jwtCfg.Secret) == "" {
		return "", errors.New("auth: jwt secret is not configured")
	}
	now := time.Now().UTC()
	claims := AdminClaims{
		AdminID: admin.ID,
		Email:   admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtCfg.Expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtCfg.Secret))
}

// ParseAdminToken validates the token signature and expiry and returns the
// embedded claims.
func ParseAdminToken(secret, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, errParse := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if errParse != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AdminMiddleware validates the bearer token and loads the admin record
// into the request context. Disabled admins are rejected even with a valid
// token.
func AdminMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := ParseAdminToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var admin models.Admin
		if errFind := db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
			return
		}

		c.Set(ContextAdminID, admin.ID)
		c.Next()
	}
}
