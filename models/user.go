package models

import (
	"studiocrm-backend/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a studio account. Every customer, service and order is scoped to one.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Mobile   string    `gorm:"uniqueIndex;not null" json:"mobile"`
	Address  string    `json:"address"`
	Password string    `gorm:"not null" json:"-"`
	IsAdmin  bool      `gorm:"default:false" json:"isAdmin"`

	StudioName        string `json:"studioName"`
	StudioLocation    string `json:"studioLocation"`
	GSTNumber         string `json:"gstNumber"`
	InvoiceFooterNote string `json:"invoiceFooterNote"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Initialize UUID and hash the password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
