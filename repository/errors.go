package repository

import (
	"errors"
	"fmt"
	"strings"

	"restaurant-api/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// isUniqueViolation recognizes unique index failures from every supported driver.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate maps store errors onto the API taxonomy.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, apperrors.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
