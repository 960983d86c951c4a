package repository

import (
	"context"

	"restaurant-api/auth"
	"restaurant-api/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate("create user", r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.FindByKey(ctx, auth.LookupKey{Kind: auth.KeyID, Value: id})
}

func (r *UserRepository) FindByKey(ctx context.Context, key auth.LookupKey) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Roles").
		Where(key.Field()+" = ?", key.Value).
		First(&user).Error
	if err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

// FindByIDs loads users without their roles; missing ids are skipped.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, translate("find users", err)
}

func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	return count > 0, translate("count users", err)
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, translate("count users", err)
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Preload("Roles").
		Order("created_at asc, id asc").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, translate("list users", err)
}

// Update applies fields to the user matched by key and, when roles is non-nil,
// replaces its role set. The updated user is returned.
func (r *UserRepository) Update(ctx context.Context, key auth.LookupKey, fields map[string]interface{}, roles []models.Role) (*models.User, error) {
	var updated *models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where(key.Field()+" = ?", key.Value).First(&user).Error; err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := tx.Model(&user).Updates(fields).Error; err != nil {
				return err
			}
		}
		if roles != nil {
			if err := tx.Model(&user).Association("Roles").Replace(roles); err != nil {
				return err
			}
		}
		if err := tx.Preload("Roles").First(&user, "id = ?", user.ID).Error; err != nil {
			return err
		}
		updated = &user
		return nil
	})
	if err != nil {
		return nil, translate("update user", err)
	}
	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, key auth.LookupKey) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where(key.Field()+" = ?", key.Value).First(&user).Error; err != nil {
			return err
		}
		return tx.Select("Roles").Delete(&user).Error
	})
	return translate("delete user", err)
}
