package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studiocrm-backend/models"
	"studiocrm-backend/notifications"
	"studiocrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier is the fire-and-forget side of notifications.Dispatcher.
type Notifier interface {
	Notify(msg notifications.Message)
}

type CustomerInput struct {
	Name    string `json:"name" binding:"required"`
	Mobile  string `json:"mobile" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type CustomerUpdate struct {
	Name    *string `json:"name"`
	Mobile  *string `json:"mobile"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
	City    *string `json:"city"`
}

type CustomerService struct {
	db       *gorm.DB
	audit    *AuditService
	notifier Notifier
	log      *zap.Logger
}

func NewCustomerService(db *gorm.DB, audit *AuditService, notifier Notifier, log *zap.Logger) *CustomerService {
	return &CustomerService{db: db, audit: audit, notifier: notifier, log: log}
}

func (s *CustomerService) Create(ctx context.Context, userID uuid.UUID, in CustomerInput) (*models.Customer, error) {
	customer, err := s.create(ctx, s.db, userID, in)
	if err != nil {
		return nil, err
	}
	s.afterCreate(ctx, userID, customer)
	return customer, nil
}

func (s *CustomerService) create(ctx context.Context, db *gorm.DB, userID uuid.UUID, in CustomerInput) (*models.Customer, error) {
	if !utils.ValidatePhone(in.Mobile) {
		return nil, ErrInvalidPhone
	}
	mobile := utils.NormalizePhone(in.Mobile)

	var existing models.Customer
	err := db.WithContext(ctx).Where("user_id = ? AND mobile = ?", userID, mobile).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateCustomer
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer := models.Customer{
		UserID:  userID,
		Name:    strings.TrimSpace(in.Name),
		Mobile:  mobile,
		Email:   strings.TrimSpace(in.Email),
		Address: in.Address,
		City:    in.City,
	}
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCustomer
		}
		return nil, err
	}
	return &customer, nil
}

func (s *CustomerService) afterCreate(ctx context.Context, userID uuid.UUID, customer *models.Customer) {
	s.audit.Record(ctx, userID, AuditActionCreate, "customer", customer.ID.String(), "Customer "+customer.Name+" added", nil)

	if s.notifier == nil {
		return
	}
	var owner models.User
	if err := s.db.WithContext(ctx).Select("email", "studio_name").First(&owner, "id = ?", userID).Error; err != nil {
		s.log.Warn("customer notification skipped", zap.String("userId", userID.String()), zap.Error(err))
		return
	}
	s.notifier.Notify(notifications.Message{
		Channel: notifications.ChannelEmail,
		To:      owner.Email,
		Subject: "New customer added",
		Body:    fmt.Sprintf("%s (%s) was added to %s.", customer.Name, customer.Mobile, owner.StudioName),
	})
}

// FindOrCreate returns the tenant's customer with the given mobile, creating
// it from in when none exists.
func (s *CustomerService) FindOrCreate(ctx context.Context, userID uuid.UUID, in CustomerInput) (*models.Customer, error) {
	if !utils.ValidatePhone(in.Mobile) {
		return nil, ErrInvalidPhone
	}

	var existing models.Customer
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND mobile = ?", userID, utils.NormalizePhone(in.Mobile)).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.Create(ctx, userID, in)
}

func (s *CustomerService) List(ctx context.Context, userID uuid.UUID, search string, p utils.Pagination) ([]models.Customer, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Customer{}).Where("user_id = ?", userID)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR mobile LIKE ? OR LOWER(city) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []models.Customer
	err := query.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&customers).Error
	return customers, total, err
}

func (s *CustomerService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Orders pages the customer's orders, newest first, optionally filtered by venue.
func (s *CustomerService) Orders(ctx context.Context, userID, customerID uuid.UUID, venue string, p utils.Pagination) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND customer_id = ?", userID, customerID)
	if venue = strings.TrimSpace(venue); venue != "" {
		query = query.Where("LOWER(venue) LIKE ?", "%"+strings.ToLower(venue)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&orders).Error
	return orders, total, err
}

// Update never touches order snapshots.
func (s *CustomerService) Update(ctx context.Context, userID, id uuid.UUID, in CustomerUpdate) (*models.Customer, error) {
	customer, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Mobile != nil {
		if !utils.ValidatePhone(*in.Mobile) {
			return nil, ErrInvalidPhone
		}
		mobile := utils.NormalizePhone(*in.Mobile)
		if mobile != customer.Mobile {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.Customer{}).
				Where("user_id = ? AND mobile = ? AND id <> ?", userID, mobile, id).
				Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrDuplicateCustomer
			}
		}
		updates["mobile"] = mobile
	}
	if in.Email != nil {
		updates["email"] = strings.TrimSpace(*in.Email)
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.City != nil {
		updates["city"] = *in.City
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(customer).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrDuplicateCustomer
			}
			return nil, err
		}
		s.audit.Record(ctx, userID, AuditActionUpdate, "customer", id.String(), "Customer updated", updates)
	}
	return s.Get(ctx, userID, id)
}

// Delete is a hard delete. Orders keep their snapshot of the customer.
func (s *CustomerService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.Customer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	s.audit.Record(ctx, userID, AuditActionDelete, "customer", id.String(), "Customer deleted", nil)
	return nil
}

func (s *CustomerService) BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Customer{})
	if res.Error != nil {
		return 0, res.Error
	}
	s.audit.Record(ctx, userID, AuditActionDelete, "customer", "", fmt.Sprintf("%d customers deleted", res.RowsAffected),
		map[string]interface{}{"ids": ids})
	return res.RowsAffected, nil
}
