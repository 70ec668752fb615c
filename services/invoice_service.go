package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studiocrm-backend/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PDFCache keeps rendered documents in Redis. A nil cache or a nil client
// disables caching.
type PDFCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPDFCache(rdb *redis.Client, ttl time.Duration) *PDFCache {
	if rdb == nil {
		return nil
	}
	return &PDFCache{rdb: rdb, ttl: ttl}
}

// Keys include both update timestamps, so any edit to the order or the studio
// profile misses the cache.
func pdfCacheKey(order *models.Order, studio *models.User, docType DocumentType) string {
	return fmt.Sprintf("invoice-pdf:%s:%s:%d:%d", order.ID, docType, order.UpdatedAt.UnixNano(), studio.UpdatedAt.UnixNano())
}

func (c *PDFCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil {
		return nil, redis.Nil
	}
	return c.rdb.Get(ctx, key).Bytes()
}

func (c *PDFCache) Set(ctx context.Context, key string, data []byte) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

type InvoiceService struct {
	db     *gorm.DB
	orders *OrderService
	cache  *PDFCache
	log    *zap.Logger
}

func NewInvoiceService(db *gorm.DB, orders *OrderService, cache *PDFCache, log *zap.Logger) *InvoiceService {
	return &InvoiceService{db: db, orders: orders, cache: cache, log: log}
}

// Document returns the rendered PDF and its download filename.
func (s *InvoiceService) Document(ctx context.Context, userID, orderID uuid.UUID, docType DocumentType) ([]byte, string, error) {
	order, err := s.orders.Find(ctx, userID, orderID)
	if err != nil {
		return nil, "", err
	}

	var studio models.User
	if err := s.db.WithContext(ctx).First(&studio, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}

	filename := DocumentFilename(docType, order.InvoiceNumber)
	key := pdfCacheKey(order, &studio, docType)

	if data, err := s.cache.Get(ctx, key); err == nil {
		return data, filename, nil
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn("pdf cache read failed", zap.String("key", key), zap.Error(err))
	}

	data, err := RenderInvoice(order, &studio, docType)
	if err != nil {
		return nil, "", err
	}

	if err := s.cache.Set(ctx, key, data); err != nil {
		s.log.Warn("pdf cache write failed", zap.String("key", key), zap.Error(err))
	}
	return data, filename, nil
}
