package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleName defines allowed roles in the system
type RoleName string

const (
	RoleAdmin  RoleName = "admin"
	RoleChef   RoleName = "chef"
	RoleWaiter RoleName = "waiter"
)

// DefaultRoles are seeded on first boot.
var DefaultRoles = []RoleName{RoleAdmin, RoleChef, RoleWaiter}

type Role struct {
	ID   string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name RoleName `json:"name" gorm:"uniqueIndex;not null"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Roles        []Role    `json:"roles" gorm:"many2many:user_roles;"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// RoleNames lists the names of the user's loaded roles.
func (u *User) RoleNames() []RoleName {
	names := make([]RoleName, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
