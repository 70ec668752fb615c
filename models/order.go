package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusApproved  = "approved"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func ValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CustomerSnapshot is captured when the order is created and never rewritten.
type CustomerSnapshot struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Mobile  string `json:"mobile"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type Order struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`

	CustomerSnapshot CustomerSnapshot `gorm:"embedded;embeddedPrefix:snapshot_" json:"customerSnapshot"`

	InvoiceNumber string     `gorm:"uniqueIndex;not null" json:"invoiceNumber"`
	EventDate     *time.Time `gorm:"index" json:"eventDate"`
	Venue         string     `json:"venue"`

	Tax           float64 `gorm:"type:numeric;default:0" json:"tax"` // percentage
	Discount      float64 `gorm:"type:numeric;default:0" json:"discount"`
	AdvanceAmount float64 `gorm:"type:numeric;default:0" json:"advanceAmount"`
	FinalTotal    float64 `gorm:"type:numeric;default:0" json:"finalTotal"`
	DueAmount     float64 `gorm:"type:numeric;default:0" json:"dueAmount"`

	Status string `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`

	Items   []OrderLineItem `gorm:"foreignKey:OrderID" json:"services"`
	History []OrderHistory  `gorm:"foreignKey:OrderID" json:"history"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return
}

// OrderLineItem references a catalog service by id only. ServiceName is the
// catalog name at the time the line was written.
type OrderLineItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"-"`
	Position    int        `gorm:"not null;default:0" json:"-"`
	ServiceID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"service"`
	ServiceName string     `json:"serviceName"`
	Date        *time.Time `json:"date"`
	Qty         float64    `gorm:"type:numeric;default:0" json:"qty"`
	Days        float64    `gorm:"type:numeric;default:0" json:"days"`
	SalePrice   float64    `gorm:"type:numeric;default:0" json:"salePrice"`
	Total       float64    `gorm:"type:numeric;default:0" json:"total"`
}

func (i *OrderLineItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// OrderHistory rows are only ever inserted.
type OrderHistory struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Action  string    `gorm:"not null" json:"action"`
	By      uuid.UUID `gorm:"type:uuid;not null" json:"by"`
	Date    time.Time `gorm:"not null" json:"date"`
}

func (OrderHistory) TableName() string {
	return "order_history"
}

func (h *OrderHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Date.IsZero() {
		h.Date = time.Now()
	}
	return
}
