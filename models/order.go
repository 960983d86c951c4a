package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents all possible states of a restaurant order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPreparing  OrderStatus = "preparing"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
	StatusCanceled   OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusDelivering, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

type Order struct {
	ID            string      `gorm:"primaryKey;type:varchar(36)"`
	UserID        string      `gorm:"type:varchar(36);not null;index"`
	Client        string      `gorm:"not null"`
	Lines         []OrderLine `gorm:"foreignKey:OrderID"`
	Status        OrderStatus `gorm:"not null;default:'pending'"`
	DateProcessed time.Time   `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderLine is a product reference with quantity; the product itself is resolved on read.
type OrderLine struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"type:varchar(36);not null;index"`
	ProductID string `gorm:"type:varchar(36);not null"`
	Qty       int    `gorm:"not null"`
}

// OrderStatusHistory tracks every status change of an order
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"orderId" gorm:"type:varchar(36);not null;index"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  string      `json:"changedBy"` // user ID who triggered the transition
	CreatedAt  time.Time   `json:"createdAt"`
}
