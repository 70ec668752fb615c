package services

import (
	"context"
	"testing"
	"time"

	"studiocrm-backend/models"
	"studiocrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitAuth("test-secret", 8, bcrypt.MinCost)

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

type testEnv struct {
	db        *gorm.DB
	audit     *AuditService
	customers *CustomerService
	catalog   *CatalogService
	orders    *OrderService
	reports   *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	audit := NewAuditService(NewGormAuditSink(db), db, log)
	customers := NewCustomerService(db, audit, nil, log)
	return &testEnv{
		db:        db,
		audit:     audit,
		customers: customers,
		catalog:   NewCatalogService(db, audit, log),
		orders:    NewOrderService(db, customers, audit, log),
		reports:   NewReportService(db),
	}
}

func (e *testEnv) user(t *testing.T, email, mobile string) *models.User {
	t.Helper()
	u := &models.User{
		Name:       "Owner " + email,
		Email:      email,
		Mobile:     mobile,
		Password:   "password123",
		StudioName: "Studio " + email,
	}
	if err := e.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *testEnv) customer(t *testing.T, userID uuid.UUID, name, mobile string) *models.Customer {
	t.Helper()
	c, err := e.customers.Create(context.Background(), userID, CustomerInput{
		Name:    name,
		Mobile:  mobile,
		Email:   "customer@example.com",
		Address: "12 Lake Road",
		City:    "Pune",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return c
}

func (e *testEnv) service(t *testing.T, userID uuid.UUID, name string, sell, invest float64) *models.Service {
	t.Helper()
	sellAmount := utils.Amount(sell)
	s, err := e.catalog.Create(context.Background(), userID, ServiceInput{
		Name:       name,
		Group:      "Photography",
		InvestCost: utils.Amount(invest),
		SellCost:   &sellAmount,
	})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return s
}

func line(serviceID uuid.UUID, qty, price float64) LineItemInput {
	d := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return LineItemInput{
		Service:   serviceID,
		Date:      &d,
		Qty:       utils.Amount(qty),
		Days:      1,
		SalePrice: utils.Amount(price),
		Total:     utils.Amount(qty * price),
	}
}
