package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studiocrm-backend/models"
	"studiocrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	HistoryOrderCreated = "Order created"
	HistoryOrderUpdated = "Order updated"
)

type LineItemInput struct {
	Service   uuid.UUID    `json:"service"`
	Date      *time.Time   `json:"date"`
	Qty       utils.Amount `json:"qty"`
	Days      utils.Amount `json:"days"`
	SalePrice utils.Amount `json:"salePrice"`
	Total     utils.Amount `json:"total"`
}

type OrderInput struct {
	CustomerID    *uuid.UUID      `json:"customerId"`
	Customer      *CustomerInput  `json:"customer"`
	EventDate     *time.Time      `json:"eventDate"`
	Venue         string          `json:"venue"`
	Services      []LineItemInput `json:"services"`
	Tax           utils.Amount    `json:"tax"`
	Discount      utils.Amount    `json:"discount"`
	AdvanceAmount utils.Amount    `json:"advanceAmount"`
	Status        string          `json:"status" binding:"omitempty,oneof=pending approved completed cancelled"`
}

// OrderUpdate replaces every field that is present. Services, when present,
// replaces the whole line item list.
type OrderUpdate struct {
	EventDate     *time.Time       `json:"eventDate"`
	Venue         *string          `json:"venue"`
	Services      *[]LineItemInput `json:"services"`
	Tax           *utils.Amount    `json:"tax"`
	Discount      *utils.Amount    `json:"discount"`
	AdvanceAmount *utils.Amount    `json:"advanceAmount"`
	Status        *string          `json:"status"`
}

type OrderListQuery struct {
	Search    string
	Status    string
	SortBy    string
	SortOrder string
	utils.Pagination
}

// OrderDetail pairs the stored order with the live customer record, which is
// nil once the customer has been deleted.
type OrderDetail struct {
	*models.Order
	CurrentCustomer *models.Customer `json:"currentCustomer"`
}

var orderSortColumns = map[string]string{
	"createdAt":     "created_at",
	"eventDate":     "event_date",
	"finalTotal":    "final_total",
	"invoiceNumber": "invoice_number",
	"status":        "status",
}

type OrderService struct {
	db        *gorm.DB
	customers *CustomerService
	audit     *AuditService
	log       *zap.Logger
}

func NewOrderService(db *gorm.DB, customers *CustomerService, audit *AuditService, log *zap.Logger) *OrderService {
	return &OrderService{db: db, customers: customers, audit: audit, log: log}
}

func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, in OrderInput) (*OrderDetail, error) {
	if in.Status != "" && !models.ValidOrderStatus(in.Status) {
		return nil, ErrInvalidStatus
	}
	if in.CustomerID == nil && in.Customer == nil {
		return nil, ErrCustomerMissing
	}

	items, err := s.buildLineItems(ctx, userID, in.Services)
	if err != nil {
		return nil, err
	}

	// The inline customer is written before the order and is not rolled back
	// if the order insert fails.
	var customer *models.Customer
	if in.CustomerID != nil {
		customer, err = s.customers.Get(ctx, userID, *in.CustomerID)
	} else {
		customer, err = s.customers.FindOrCreate(ctx, userID, *in.Customer)
	}
	if err != nil {
		return nil, err
	}

	invoiceNumber, err := utils.NewInvoiceNumber()
	if err != nil {
		return nil, fmt.Errorf("generate invoice number: %w", err)
	}

	totals := Calculate(lineTotals(items), in.Tax.Float(), in.Discount.Float(), in.AdvanceAmount.Float())

	order := models.Order{
		UserID:           userID,
		CustomerID:       customer.ID,
		CustomerSnapshot: customer.Snapshot(),
		InvoiceNumber:    invoiceNumber,
		EventDate:        in.EventDate,
		Venue:            strings.TrimSpace(in.Venue),
		Tax:              in.Tax.Float(),
		Discount:         in.Discount.Float(),
		AdvanceAmount:    in.AdvanceAmount.Float(),
		FinalTotal:       totals.FinalTotal,
		DueAmount:        totals.DueAmount,
		Status:           in.Status,
		Items:            items,
		History: []models.OrderHistory{
			{Action: HistoryOrderCreated, By: userID, Date: time.Now()},
		},
	}

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.audit.Record(ctx, userID, AuditActionCreate, "order", order.ID.String(), "Order "+order.InvoiceNumber+" created",
		map[string]interface{}{"finalTotal": order.FinalTotal})
	return s.Get(ctx, userID, order.ID)
}

// buildLineItems checks every referenced service belongs to the tenant and
// records its current name on the line. Totals are taken as given.
func (s *OrderService) buildLineItems(ctx context.Context, userID uuid.UUID, lines []LineItemInput) ([]models.OrderLineItem, error) {
	if len(lines) == 0 {
		return []models.OrderLineItem{}, nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if l.Service == uuid.Nil {
			return nil, ErrInvalidService
		}
		ids = append(ids, l.Service)
	}

	var services []models.Service
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Find(&services).Error; err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(services))
	for _, svc := range services {
		names[svc.ID] = svc.Name
	}

	items := make([]models.OrderLineItem, 0, len(lines))
	for i, l := range lines {
		name, ok := names[l.Service]
		if !ok {
			return nil, ErrServiceNotFound
		}
		items = append(items, models.OrderLineItem{
			Position:    i,
			ServiceID:   l.Service,
			ServiceName: name,
			Date:        l.Date,
			Qty:         l.Qty.Float(),
			Days:        l.Days.Float(),
			SalePrice:   l.SalePrice.Float(),
			Total:       l.Total.Float(),
		})
	}
	return items, nil
}

func lineTotals(items []models.OrderLineItem) []float64 {
	totals := make([]float64, len(items))
	for i, item := range items {
		totals[i] = item.Total
	}
	return totals
}

func (s *OrderService) find(ctx context.Context, db *gorm.DB, userID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		Where("user_id = ? AND id = ?", userID, id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Find loads an order without the live customer.
func (s *OrderService) Find(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	return s.find(ctx, s.db, userID, id)
}

func (s *OrderService) Get(ctx context.Context, userID, id uuid.UUID) (*OrderDetail, error) {
	order, err := s.find(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}

	detail := &OrderDetail{Order: order}
	customer, err := s.customers.Get(ctx, userID, order.CustomerID)
	switch {
	case err == nil:
		detail.CurrentCustomer = customer
	case errors.Is(err, ErrCustomerNotFound):
	default:
		return nil, err
	}
	return detail, nil
}

func (s *OrderService) List(ctx context.Context, userID uuid.UUID, q OrderListQuery) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if q.Status != "" {
		if !models.ValidOrderStatus(q.Status) {
			return nil, 0, ErrInvalidStatus
		}
		query = query.Where("status = ?", q.Status)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(venue) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := orderSortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	desc := !strings.EqualFold(q.SortOrder, "asc")

	var orders []models.Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Offset(q.Offset()).Limit(q.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (s *OrderService) Update(ctx context.Context, userID, id uuid.UUID, in OrderUpdate) (*OrderDetail, error) {
	if in.Status != nil && !models.ValidOrderStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}

	var newItems []models.OrderLineItem
	if in.Services != nil {
		items, err := s.buildLineItems(ctx, userID, *in.Services)
		if err != nil {
			return nil, err
		}
		newItems = items
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.find(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if in.EventDate != nil {
			updates["event_date"] = *in.EventDate
		}
		if in.Venue != nil {
			updates["venue"] = strings.TrimSpace(*in.Venue)
		}
		if in.Status != nil {
			updates["status"] = *in.Status
		}

		items := order.Items
		if in.Services != nil {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderLineItem{}).Error; err != nil {
				return err
			}
			for i := range newItems {
				newItems[i].OrderID = order.ID
			}
			if len(newItems) > 0 {
				if err := tx.Create(&newItems).Error; err != nil {
					return err
				}
			}
			items = newItems
		}

		tax, discount, advance := order.Tax, order.Discount, order.AdvanceAmount
		if in.Tax != nil {
			tax = in.Tax.Float()
		}
		if in.Discount != nil {
			discount = in.Discount.Float()
		}
		if in.AdvanceAmount != nil {
			advance = in.AdvanceAmount.Float()
		}
		totals := Calculate(lineTotals(items), tax, discount, advance)
		updates["tax"] = tax
		updates["discount"] = discount
		updates["advance_amount"] = advance
		updates["final_total"] = totals.FinalTotal
		updates["due_amount"] = totals.DueAmount

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderHistory{OrderID: order.ID, Action: HistoryOrderUpdated, By: userID, Date: time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, AuditActionUpdate, "order", id.String(), "Order updated", nil)
	return s.Get(ctx, userID, id)
}

// BulkUpdateStatus sets status on every listed order the tenant owns and
// appends one history entry to each. Unknown ids are skipped.
func (s *OrderService) BulkUpdateStatus(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, status string) (int64, error) {
	if !models.ValidOrderStatus(status) {
		return 0, ErrInvalidStatus
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var updated int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned []uuid.UUID
		if err := tx.Model(&models.Order{}).
			Where("user_id = ? AND id IN ?", userID, ids).
			Pluck("id", &owned).Error; err != nil {
			return err
		}
		if len(owned) == 0 {
			return nil
		}

		res := tx.Model(&models.Order{}).Where("id IN ?", owned).Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		updated = res.RowsAffected

		now := time.Now()
		history := make([]models.OrderHistory, len(owned))
		for i, id := range owned {
			history[i] = models.OrderHistory{OrderID: id, Action: "Status changed to " + status, By: userID, Date: now}
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return 0, err
	}

	s.audit.Record(ctx, userID, AuditActionUpdate, "order", "", fmt.Sprintf("%d orders set to %s", updated, status),
		map[string]interface{}{"ids": ids, "status": status})
	return updated, nil
}

// Delete removes the order with its line items and history. Its invoice
// number is not handed out again.
func (s *OrderService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	var invoiceNumber string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Select("id", "invoice_number").Where("user_id = ? AND id = ?", userID, id).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		invoiceNumber = order.InvoiceNumber

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderLineItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, userID, AuditActionDelete, "order", id.String(), "Order "+invoiceNumber+" deleted", nil)
	return nil
}
