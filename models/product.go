package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryBreakfast ProductCategory = "Breakfast"
	CategoryLunch     ProductCategory = "Lunch"
	CategoryDinner    ProductCategory = "Dinner"
)

func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryBreakfast, CategoryLunch, CategoryDinner:
		return true
	}
	return false
}

type ProductType string

const (
	TypeBurger     ProductType = "Burger"
	TypeSideDishes ProductType = "Side dishes"
	TypeDrinks     ProductType = "Drinks"
)

func (t ProductType) Valid() bool {
	switch t {
	case TypeBurger, TypeSideDishes, TypeDrinks:
		return true
	}
	return false
}

type Product struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string          `json:"name" gorm:"uniqueIndex;not null"`
	Price     float64         `json:"price" gorm:"not null"`
	Image     string          `json:"image" gorm:"not null"`
	Category  ProductCategory `json:"category" gorm:"not null"`
	Type      ProductType     `json:"type" gorm:"not null"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
