package middleware

import (
	"context"
	"fmt"
	"strings"

	"restaurant-api/apperrors"
	"restaurant-api/auth"
	"restaurant-api/models"

	"github.com/gin-gonic/gin"
)

type TokenValidator interface {
	Validate(token string) (string, error)
}

type PrincipalLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Identity resolves the bearer token into a principal. Requests without a
// bearer token continue anonymously; guards decide whether that is enough.
func Identity(tokens TokenValidator, users PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		uid, err := tokens.Validate(tokenStr)
		if err != nil {
			abortWithError(c, fmt.Errorf("%w: %v", apperrors.ErrForbidden, err))
			return
		}

		user, err := users.FindByID(c.Request.Context(), uid)
		if err != nil {
			abortWithError(c, err)
			return
		}

		ctx := auth.WithPrincipal(c.Request.Context(), auth.PrincipalFromUser(user))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

// CurrentPrincipal extracts the caller from the request, nil when anonymous.
func CurrentPrincipal(c *gin.Context) *auth.Principal {
	return auth.PrincipalFrom(c.Request.Context())
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
