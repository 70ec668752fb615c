package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_mobile,priority:1" json:"userId"`

	Name    string `gorm:"not null" json:"name"`
	Mobile  string `gorm:"not null;uniqueIndex:idx_user_mobile,priority:2" json:"mobile"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// Snapshot copies the fields an order keeps about its customer.
func (c *Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{
		Name:    c.Name,
		Email:   c.Email,
		Mobile:  c.Mobile,
		Address: c.Address,
		City:    c.City,
	}
}
