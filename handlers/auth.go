package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"restaurant-api/apperrors"
	"restaurant-api/auth"
	"restaurant-api/models"

	"github.com/gin-gonic/gin"
)

type TokenIssuer interface {
	Issue(principalID string) (string, error)
}

type CredentialStore interface {
	FindByKey(ctx context.Context, key auth.LookupKey) (*models.User, error)
}

type AuthHandler struct {
	Users  CredentialStore
	Tokens TokenIssuer
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignIn exchanges email and password for a bearer token
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}

	user, err := h.Users.FindByKey(c.Request.Context(), auth.LookupKey{Kind: auth.KeyEmail, Value: req.Email})
	if errors.Is(err, apperrors.ErrNotFound) {
		_ = c.Error(fmt.Errorf("%w: wrong email or password", apperrors.ErrNotFound))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		_ = c.Error(fmt.Errorf("%w: wrong email or password", apperrors.ErrUnauthorized))
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		_ = c.Error(fmt.Errorf("generate token: %w", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}
