package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/modulekit/internal/domain/module"
)

// Grants attaches permissions to every request context so permission gated
// modules holding one of them render.
func Grants(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(perms) > 0 {
			c.Request = c.Request.WithContext(module.WithGrants(c.Request.Context(), perms...))
		}
		c.Next()
	}
}
