package services

import (
	"context"
	"errors"
	"strings"

	"studiocrm-backend/models"
	"studiocrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceInput struct {
	Name       string        `json:"name" binding:"required"`
	Group      string        `json:"group"`
	InvestCost utils.Amount  `json:"investCost"`
	SellCost   *utils.Amount `json:"sellCost" binding:"required"`
	Status     string        `json:"status" binding:"omitempty,oneof=active inactive"`
	TaxRate    *utils.Amount `json:"taxRate"`
}

type ServiceUpdate struct {
	Name       *string       `json:"name"`
	Group      *string       `json:"group"`
	InvestCost *utils.Amount `json:"investCost"`
	SellCost   *utils.Amount `json:"sellCost"`
	Status     *string       `json:"status" binding:"omitempty,oneof=active inactive"`
	TaxRate    *utils.Amount `json:"taxRate"`
}

// ServiceUsage summarises how a service has been used across orders.
type ServiceUsage struct {
	UsedCount    int64   `json:"usedCount"`
	TotalRevenue float64 `json:"totalRevenue"`
	Customers    int64   `json:"customers"`
}

type ServiceWithUsage struct {
	models.Service
	Usage ServiceUsage `json:"usage"`
}

type CatalogService struct {
	db    *gorm.DB
	audit *AuditService
	log   *zap.Logger
}

func NewCatalogService(db *gorm.DB, audit *AuditService, log *zap.Logger) *CatalogService {
	return &CatalogService{db: db, audit: audit, log: log}
}

func (s *CatalogService) Create(ctx context.Context, userID uuid.UUID, in ServiceInput) (*models.Service, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.SellCost == nil {
		return nil, ErrInvalidService
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Service{}).
		Where("user_id = ? AND name = ?", userID, name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateService
	}

	service := models.Service{
		UserID:     userID,
		Name:       name,
		Group:      strings.TrimSpace(in.Group),
		InvestCost: in.InvestCost.Float(),
		SellCost:   in.SellCost.Float(),
		Status:     in.Status,
	}
	if in.TaxRate != nil {
		rate := in.TaxRate.Float()
		service.TaxRate = &rate
	}

	if err := s.db.WithContext(ctx).Create(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateService
		}
		return nil, err
	}

	s.audit.Record(ctx, userID, AuditActionCreate, "service", service.ID.String(), "Service "+service.Name+" added", nil)
	return &service, nil
}

func (s *CatalogService) List(ctx context.Context, userID uuid.UUID, search string, p utils.Pagination) ([]ServiceWithUsage, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Service{}).Where("user_id = ?", userID)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(service_group) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []models.Service
	if err := query.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&services).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(services))
	for i, svc := range services {
		ids[i] = svc.ID
	}
	usage, err := s.usage(ctx, userID, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ServiceWithUsage, len(services))
	for i, svc := range services {
		out[i] = ServiceWithUsage{Service: svc, Usage: usage[svc.ID]}
	}
	return out, total, nil
}

func (s *CatalogService) Get(ctx context.Context, userID, id uuid.UUID) (*ServiceWithUsage, error) {
	service, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	usage, err := s.usage(ctx, userID, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return &ServiceWithUsage{Service: *service, Usage: usage[id]}, nil
}

func (s *CatalogService) find(ctx context.Context, userID, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

type usageRow struct {
	ServiceID    uuid.UUID
	UsedCount    int64
	TotalRevenue float64
	Customers    int64
}

func (s *CatalogService) usage(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ServiceUsage, error) {
	out := make(map[uuid.UUID]ServiceUsage, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []usageRow
	err := s.db.WithContext(ctx).
		Table("order_line_items AS li").
		Select("li.service_id, COUNT(*) AS used_count, COALESCE(SUM(li.total), 0) AS total_revenue, COUNT(DISTINCT o.customer_id) AS customers").
		Joins("JOIN orders o ON o.id = li.order_id").
		Where("o.user_id = ? AND li.service_id IN ?", userID, ids).
		Group("li.service_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		out[r.ServiceID] = ServiceUsage{UsedCount: r.UsedCount, TotalRevenue: r.TotalRevenue, Customers: r.Customers}
	}
	return out, nil
}

func (s *CatalogService) Update(ctx context.Context, userID, id uuid.UUID, in ServiceUpdate) (*ServiceWithUsage, error) {
	service, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrInvalidService
		}
		if name != service.Name {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.Service{}).
				Where("user_id = ? AND name = ? AND id <> ?", userID, name, id).
				Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrDuplicateService
			}
		}
		updates["name"] = name
	}
	if in.Group != nil {
		updates["service_group"] = strings.TrimSpace(*in.Group)
	}
	if in.InvestCost != nil {
		updates["invest_cost"] = in.InvestCost.Float()
	}
	if in.SellCost != nil {
		updates["sell_cost"] = in.SellCost.Float()
	}
	if in.Status != nil {
		if !models.ValidServiceStatus(*in.Status) {
			return nil, ErrInvalidService
		}
		updates["status"] = *in.Status
	}
	if in.TaxRate != nil {
		updates["tax_rate"] = in.TaxRate.Float()
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(service).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrDuplicateService
			}
			return nil, err
		}
		s.audit.Record(ctx, userID, AuditActionUpdate, "service", id.String(), "Service updated", updates)
	}
	return s.Get(ctx, userID, id)
}

// Delete removes the catalog entry only. Order line items keep their totals
// and name snapshot.
func (s *CatalogService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.Service{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrServiceNotFound
	}
	s.audit.Record(ctx, userID, AuditActionDelete, "service", id.String(), "Service deleted", nil)
	return nil
}

// Count is used by the report totals.
func (s *CatalogService) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Service{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
