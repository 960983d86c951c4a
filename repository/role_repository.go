package repository

import (
	"context"

	"restaurant-api/models"

	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// FindByNames returns the known roles among names; unknown names are skipped.
func (r *RoleRepository) FindByNames(ctx context.Context, names []models.RoleName) ([]models.Role, error) {
	var roles []models.Role
	if len(names) == 0 {
		return roles, nil
	}
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&roles).Error
	return roles, translate("find roles", err)
}

// Ensure creates any missing role and leaves existing ones untouched.
func (r *RoleRepository) Ensure(ctx context.Context, names ...models.RoleName) error {
	for _, name := range names {
		role := models.Role{Name: name}
		if err := r.db.WithContext(ctx).Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return translate("ensure role "+string(name), err)
		}
	}
	return nil
}
