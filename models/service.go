package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ServiceStatusActive   = "active"
	ServiceStatusInactive = "inactive"
)

// Service is a catalog entry. Orders never hold a foreign key to it, so
// deleting a service leaves existing orders untouched.
type Service struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_service_name,priority:1" json:"userId"`

	Name       string   `gorm:"not null;uniqueIndex:idx_user_service_name,priority:2" json:"name"`
	Group      string   `gorm:"column:service_group" json:"group"`
	InvestCost float64  `gorm:"type:numeric;default:0" json:"investCost"`
	SellCost   float64  `gorm:"type:numeric;not null" json:"sellCost"`
	Status     string   `gorm:"type:varchar(20);not null;default:active" json:"status"`
	TaxRate    *float64 `gorm:"type:numeric" json:"taxRate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = ServiceStatusActive
	}
	return
}

func ValidServiceStatus(status string) bool {
	return status == ServiceStatusActive || status == ServiceStatusInactive
}
