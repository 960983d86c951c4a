package repository

import (
	"context"

	"restaurant-api/models"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return translate("create product", r.db.WithContext(ctx).Create(product).Error)
}

func (r *ProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("name = ?", name).Count(&count).Error
	return count > 0, translate("count products", err)
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Order("created_at asc, id asc").Find(&products).Error
	return products, translate("list products", err)
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate("find product", err)
	}
	return &product, nil
}

// FindByIDs returns the existing products among ids.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, translate("find products", err)
}

func (r *ProductRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&product).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&product, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate("update product", err)
	}
	return &product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return translate("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("delete product", gorm.ErrRecordNotFound)
	}
	return nil
}
