package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/GriffinCanCode/modulekit/internal/domain/module"
	"github.com/GriffinCanCode/modulekit/internal/shared/utils"
)

// TokenGrants grants perms to requests bearing a token that matches the
// bcrypt hash. Requests without a bearer token pass through unchanged; a
// wrong token is rejected with 401.
func TokenGrants(hash string, perms ...string) (gin.HandlerFunc, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid token hash: %w", err)
	}

	hasher := utils.DefaultHasher()
	var verified sync.Map // sha256 of accepted tokens

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		digest := hasher.HashString(token)
		if _, seen := verified.Load(digest); !seen {
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			verified.Store(digest, struct{}{})
		}

		c.Request = c.Request.WithContext(module.WithGrants(c.Request.Context(), perms...))
		c.Next()
	}, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
