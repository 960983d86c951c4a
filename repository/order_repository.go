package repository

import (
	"context"

	"restaurant-api/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderChanges describes an order update. Nil members are left untouched.
type OrderChanges struct {
	Fields  map[string]interface{}
	Lines   []models.OrderLine
	History *models.OrderStatusHistory
}

// Create stores the order with its lines and the initial status history entry.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, changedBy string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  order.Status,
			ChangedBy: changedBy,
		}).Error
	})
	return translate("create order", err)
}

// List returns all orders, or only those of userID when it is non-empty.
func (r *OrderRepository) List(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Order("created_at asc, id asc").Find(&orders).Error
	return orders, translate("list orders", err)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate("find order", err)
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, id string, changes OrderChanges) (*models.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order := models.Order{ID: id}
		if len(changes.Fields) > 0 {
			if err := tx.Model(&order).Updates(changes.Fields).Error; err != nil {
				return err
			}
		}
		if changes.Lines != nil {
			if err := tx.Where("order_id = ?", id).Delete(&models.OrderLine{}).Error; err != nil {
				return err
			}
			for i := range changes.Lines {
				changes.Lines[i].ID = 0
				changes.Lines[i].OrderID = id
			}
			if err := tx.Create(&changes.Lines).Error; err != nil {
				return err
			}
		}
		if changes.History != nil {
			changes.History.OrderID = id
			return tx.Create(changes.History).Error
		}
		return nil
	})
	if err != nil {
		return nil, translate("update order", err)
	}
	return r.FindByID(ctx, id)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderStatusHistory{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate("delete order", err)
}

func (r *OrderRepository) History(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&history).Error
	return history, translate("order history", err)
}
