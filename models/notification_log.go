package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	OrderID      uuid.UUID `gorm:"type:uuid;index" json:"orderId"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index" json:"customerId"`
	Type         string    `gorm:"type:varchar(30)" json:"type"` // event_reminder
	DaysBefore   int       `json:"daysBefore"`
	Channel      string    `gorm:"type:varchar(20)" json:"channel"` // email, sms, whatsapp
	Recipient    string    `json:"recipient"`
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"errorMessage,omitempty"`
	SentAt       time.Time `gorm:"index" json:"sentAt"`
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
