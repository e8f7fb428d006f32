package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/manasa-ma/digital-signature-app/internal/services"
)

type AuthMiddleware struct {
	tokens *services.TokenService
}

func NewAuthMiddleware(tokens *services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth gates document-mutating routes behind a bearer credential.
// A missing credential is 401; a present but invalid or expired one is 403.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		userID, email, err := am.tokens.Verify(token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, services.ErrExpiredCredential) {
				msg = "Token expired"
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": msg})
			return
		}

		c.Set("userID", userID)
		c.Set("email", email)
		c.Next()
	}
}
