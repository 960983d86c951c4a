package seed

import (
	"context"
	"errors"
	"fmt"

	"restaurant-api/apperrors"
	"restaurant-api/auth"
	"restaurant-api/models"
	"restaurant-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Admin describes the account created on first boot.
type Admin struct {
	Email    string
	Password string
}

// Run creates the default roles and the admin account when they are missing.
// It is safe to call on every start.
func Run(ctx context.Context, db *gorm.DB, admin Admin, log *zap.Logger) error {
	roles := repository.NewRoleRepository(db)
	users := repository.NewUserRepository(db)

	if err := roles.Ensure(ctx, models.DefaultRoles...); err != nil {
		return err
	}

	_, err := users.FindByKey(ctx, auth.LookupKey{Kind: auth.KeyEmail, Value: admin.Email})
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	adminRoles, err := roles.FindByNames(ctx, []models.RoleName{models.RoleAdmin})
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("admin password: %w", err)
	}
	user := models.User{
		Username:     "admin",
		Name:         "Administrator",
		Email:        admin.Email,
		PasswordHash: hash,
		Roles:        adminRoles,
	}
	if err := users.Create(ctx, &user); err != nil {
		return err
	}
	log.Info("admin user created", zap.String("email", admin.Email))
	return nil
}
