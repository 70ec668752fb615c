package services

import (
	"context"
	"testing"
	"time"

	"studiocrm-backend/models"
)

func TestReportService_Revenue(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "r@studio.com", "+919800000101")
	other := env.user(t, "s@studio.com", "+919800000102")

	asha := env.customer(t, owner.ID, "Asha", "+919821000001")
	ben := env.customer(t, owner.ID, "Ben", "+919821000002")
	shoot := env.service(t, owner.ID, "Shoot", 1000, 400)
	album := env.service(t, owner.ID, "Album", 500, 100)
	gone := env.service(t, owner.ID, "Gone", 100, 0)

	o1, err := env.orders.Create(ctx, owner.ID, OrderInput{
		CustomerID: &asha.ID,
		Services:   []LineItemInput{line(shoot.ID, 2, 1000), line(album.ID, 1, 500)},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	o2, err := env.orders.Create(ctx, owner.ID, OrderInput{
		CustomerID: &asha.ID,
		Services:   []LineItemInput{line(album.ID, 2, 500), line(gone.ID, 1, 100)},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	o3, err := env.orders.Create(ctx, owner.ID, OrderInput{
		CustomerID: &ben.ID,
		Services:   []LineItemInput{line(shoot.ID, 1, 1000)},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Move orders into different months.
	env.db.Model(&models.Order{}).Where("id = ?", o1.ID).Update("created_at", time.Date(2025, 12, 5, 10, 0, 0, 0, time.UTC))
	env.db.Model(&models.Order{}).Where("id = ?", o2.ID).Update("created_at", time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	env.db.Model(&models.Order{}).Where("id = ?", o3.ID).Update("created_at", time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC))

	// Noise from another tenant.
	otherCust := env.customer(t, other.ID, "Zed", "+919821000009")
	if _, err := env.orders.Create(ctx, other.ID, OrderInput{CustomerID: &otherCust.ID, Discount: -9999}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := env.catalog.Delete(ctx, owner.ID, gone.ID); err != nil {
		t.Fatalf("delete service: %v", err)
	}

	report, err := env.reports.Revenue(ctx, owner.ID)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}

	if report.TotalOrders != 3 || report.TotalRevenue != 4600 || report.TotalServices != 2 {
		t.Fatalf("unexpected totals: orders=%d revenue=%v services=%d", report.TotalOrders, report.TotalRevenue, report.TotalServices)
	}

	perCustomer := map[string]CustomerRevenue{}
	for _, r := range report.RevenuePerCustomer {
		perCustomer[r.Name] = r
	}
	if len(perCustomer) != 2 || perCustomer["Asha"].TotalRevenue != 3600 || perCustomer["Asha"].OrderCount != 2 || perCustomer["Ben"].TotalRevenue != 1000 {
		t.Fatalf("unexpected per customer: %+v", report.RevenuePerCustomer)
	}

	if len(report.RevenuePerMonth) != 2 {
		t.Fatalf("expected 2 months, got %+v", report.RevenuePerMonth)
	}
	if m := report.RevenuePerMonth[0]; m.Month != "2026-01" || m.TotalRevenue != 2100 || m.OrderCount != 2 {
		t.Fatalf("unexpected latest month: %+v", m)
	}
	if m := report.RevenuePerMonth[1]; m.Month != "2025-12" || m.TotalRevenue != 2500 {
		t.Fatalf("unexpected earliest month: %+v", m)
	}

	if len(report.RevenuePerYear) != 2 || report.RevenuePerYear[0].Year != 2026 || report.RevenuePerYear[1].TotalRevenue != 2500 {
		t.Fatalf("unexpected per year: %+v", report.RevenuePerYear)
	}

	profit := map[string]ServiceProfit{}
	for _, p := range report.ProfitMargins {
		profit[p.ServiceName] = p
	}
	if _, ok := profit["Gone"]; ok {
		t.Fatalf("deleted service should not appear in profit view")
	}
	// Shoot: 3 units, revenue 3000, cost 3*400
	if p := profit["Shoot"]; p.TotalRevenue != 3000 || p.TotalCost != 1200 || p.TotalProfit != 1800 {
		t.Fatalf("unexpected shoot profit: %+v", p)
	}
	// Album: 3 units, revenue 1500, cost 3*100
	if p := profit["Album"]; p.TotalRevenue != 1500 || p.TotalCost != 300 || p.TotalProfit != 1200 {
		t.Fatalf("unexpected album profit: %+v", p)
	}

	breakdown := map[string]ServiceBreakdown{}
	for _, b := range report.ServiceBreakdown {
		breakdown[b.Name] = b
	}
	if b := breakdown["Album"]; b.TotalQty != 3 || b.TotalOrders != 2 || b.Group != "Photography" {
		t.Fatalf("unexpected album breakdown: %+v", b)
	}

	if len(report.PerOrderRevenue) != 3 || report.PerOrderRevenue[0].ID != o3.ID || report.PerOrderRevenue[2].ID != o1.ID {
		t.Fatalf("ledger not sorted newest first: %+v", report.PerOrderRevenue)
	}
	if report.PerOrderRevenue[0].CustomerName != "Ben" {
		t.Fatalf("expected snapshot name on ledger row")
	}

	if len(report.NewCustomersPerMonth) != 1 || report.NewCustomersPerMonth[0].Count != 2 {
		t.Fatalf("unexpected new customers: %+v", report.NewCustomersPerMonth)
	}

	// Two lines of the same service on one order count as one order.
	if _, err := env.orders.Create(ctx, owner.ID, OrderInput{
		CustomerID: &ben.ID,
		Services:   []LineItemInput{line(shoot.ID, 1, 1000), line(shoot.ID, 1, 1000)},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	rows, err := env.reports.ServiceBreakdown(ctx, owner.ID)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	for _, b := range rows {
		if b.Name == "Shoot" && (b.TotalOrders != 3 || b.TotalQty != 5 || b.TotalRevenue != 5000) {
			t.Fatalf("unexpected shoot breakdown: %+v", b)
		}
	}
}

func TestReportService_ReflectsNewOrders(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "t@studio.com", "+919800000103")
	cust := env.customer(t, owner.ID, "Tara", "+919821000010")

	first, err := env.reports.Revenue(ctx, owner.ID)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if first.TotalOrders != 0 || len(first.PerOrderRevenue) != 0 {
		t.Fatalf("expected empty report")
	}

	if _, err := env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &cust.ID, Discount: -250}); err != nil {
		t.Fatalf("create: %v", err)
	}

	second, err := env.reports.Revenue(ctx, owner.ID)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if second.TotalOrders != 1 || second.TotalRevenue != 250 {
		t.Fatalf("expected new order in report, got %+v", second)
	}
}

func TestReportService_CustomerNameFallsBackToSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "u@studio.com", "+919800000104")
	cust := env.customer(t, owner.ID, "Uma", "+919821000011")

	if _, err := env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &cust.ID, Discount: -10}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.customers.Delete(ctx, owner.ID, cust.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rows, err := env.reports.RevenuePerCustomer(ctx, owner.ID)
	if err != nil {
		t.Fatalf("per customer: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Uma" || rows[0].Mobile != "+919821000011" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "v@studio.com", "+919800000105")
	cust := env.customer(t, owner.ID, "Vee", "+919821000012")

	a, _ := env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &cust.ID, Discount: -100})
	env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &cust.ID, Discount: -50})
	status := models.OrderStatusApproved
	env.orders.Update(ctx, owner.ID, a.ID, OrderUpdate{Status: &status})

	stats, err := env.reports.Dashboard(ctx, owner.ID, time.Now())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.TotalRevenue != 150 || stats.OrderCount != 2 || stats.CustomerCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.StatusCounts[models.OrderStatusApproved] != 1 || stats.StatusCounts[models.OrderStatusPending] != 1 || stats.StatusCounts[models.OrderStatusCancelled] != 0 {
		t.Fatalf("unexpected status counts: %+v", stats.StatusCounts)
	}
	if len(stats.RecentOrders) != 2 {
		t.Fatalf("expected recent orders")
	}
}

func TestGrowthPercentage(t *testing.T) {
	tests := []struct {
		current, previous, want float64
	}{
		{0, 0, 0},
		{100, 0, 100},
		{150, 100, 50},
		{50, 100, -50},
	}
	for _, tt := range tests {
		if got := growthPercentage(tt.current, tt.previous); got != tt.want {
			t.Errorf("growthPercentage(%v, %v) = %v, want %v", tt.current, tt.previous, got, tt.want)
		}
	}
}
