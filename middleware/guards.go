package middleware

import (
	"fmt"
	"strings"

	"restaurant-api/apperrors"
	"restaurant-api/auth"
	"restaurant-api/models"

	"github.com/gin-gonic/gin"
)

// RequireAuth rejects anonymous callers with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.IsAuthenticated(CurrentPrincipal(c)) {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireAnyRole enforces that caller holds one of the allowed roles.
// Authentication is checked first so anonymous callers always get 401.
func RequireAnyRole(roles ...models.RoleName) gin.HandlerFunc {
	need := rolesString(roles)
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if !auth.IsAuthenticated(p) {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		if !p.HasAnyRole(roles...) {
			abortWithError(c, fmt.Errorf("%w: need %s", apperrors.ErrForbidden, need))
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireAnyRole(models.RoleAdmin)
}

func RequireWaiter() gin.HandlerFunc {
	return RequireAnyRole(models.RoleWaiter)
}

func RequireChefOrWaiter() gin.HandlerFunc {
	return RequireAnyRole(models.RoleChef, models.RoleWaiter)
}

func RequireAdminOrChef() gin.HandlerFunc {
	return RequireAnyRole(models.RoleAdmin, models.RoleChef)
}

func rolesString(roles []models.RoleName) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " or ")
}
