package services

import (
	"context"
	"sort"
	"time"

	"studiocrm-backend/models"
	"studiocrm-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CustomerRevenue struct {
	CustomerID   uuid.UUID `json:"customerId"`
	Name         string    `json:"name"`
	Mobile       string    `json:"mobile"`
	TotalRevenue float64   `json:"totalRevenue"`
	OrderCount   int64     `json:"orderCount"`
}

type MonthRevenue struct {
	Month        string  `json:"month"` // YYYY-MM
	Year         int     `json:"year"`
	MonthNumber  int     `json:"monthNumber"`
	TotalRevenue float64 `json:"totalRevenue"`
	OrderCount   int64   `json:"orderCount"`
}

type YearRevenue struct {
	Year         int     `json:"year"`
	TotalRevenue float64 `json:"totalRevenue"`
	OrderCount   int64   `json:"orderCount"`
}

type ServiceProfit struct {
	ServiceID    uuid.UUID `json:"serviceId"`
	ServiceName  string    `json:"serviceName"`
	TotalRevenue float64   `json:"totalRevenue"`
	TotalCost    float64   `json:"totalCost"`
	TotalProfit  float64   `json:"totalProfit"`
}

type ServiceBreakdown struct {
	ServiceID    uuid.UUID `json:"serviceId"`
	Name         string    `json:"name"`
	Group        string    `json:"group"`
	TotalRevenue float64   `json:"totalRevenue"`
	TotalQty     float64   `json:"totalQty"`
	TotalOrders  int64     `json:"totalOrders"`
}

type OrderLedgerRow struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	CustomerName  string    `json:"customerName"`
	Status        string    `json:"status"`
	Tax           float64   `json:"tax"`
	Discount      float64   `json:"discount"`
	FinalTotal    float64   `json:"finalTotal"`
	AdvanceAmount float64   `json:"advanceAmount"`
	DueAmount     float64   `json:"dueAmount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type NewCustomersMonth struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

type RevenueReport struct {
	RevenuePerCustomer   []CustomerRevenue   `json:"revenuePerCustomer"`
	RevenuePerMonth      []MonthRevenue      `json:"revenuePerMonth"`
	RevenuePerYear       []YearRevenue       `json:"revenuePerYear"`
	ProfitMargins        []ServiceProfit     `json:"profitMargins"`
	ServiceBreakdown     []ServiceBreakdown  `json:"serviceBreakdown"`
	PerOrderRevenue      []OrderLedgerRow    `json:"perOrderRevenue"`
	NewCustomersPerMonth []NewCustomersMonth `json:"newCustomersPerMonth"`
	TotalOrders          int64               `json:"totalOrders"`
	TotalRevenue         float64             `json:"totalRevenue"`
	TotalServices        int64               `json:"totalServices"`
}

type DashboardStats struct {
	TotalRevenue   float64          `json:"totalRevenue"`
	MonthlyRevenue float64          `json:"monthlyRevenue"`
	MonthGrowth    float64          `json:"monthGrowth"`
	OrderCount     int64            `json:"orderCount"`
	CustomerCount  int64            `json:"customerCount"`
	StatusCounts   map[string]int64 `json:"statusCounts"`
	RecentOrders   []OrderLedgerRow `json:"recentOrders"`
}

// ReportService computes every view from scratch on each call.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) Revenue(ctx context.Context, userID uuid.UUID) (*RevenueReport, error) {
	var (
		report RevenueReport
		err    error
	)

	if report.RevenuePerCustomer, err = s.RevenuePerCustomer(ctx, userID); err != nil {
		return nil, err
	}
	if report.RevenuePerMonth, report.RevenuePerYear, err = s.RevenueOverTime(ctx, userID); err != nil {
		return nil, err
	}
	if report.ProfitMargins, err = s.ProfitMargins(ctx, userID); err != nil {
		return nil, err
	}
	if report.ServiceBreakdown, err = s.ServiceBreakdown(ctx, userID); err != nil {
		return nil, err
	}
	if report.PerOrderRevenue, err = s.Ledger(ctx, userID, 0); err != nil {
		return nil, err
	}
	if report.NewCustomersPerMonth, err = s.NewCustomersPerMonth(ctx, userID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err = db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&report.TotalOrders).Error; err != nil {
		return nil, err
	}
	if report.TotalRevenue, err = s.sumRevenue(ctx, userID, nil); err != nil {
		return nil, err
	}
	if err = db.Model(&models.Service{}).Where("user_id = ?", userID).Count(&report.TotalServices).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

type customerRevenueRow struct {
	CustomerID     uuid.UUID
	TotalRevenue   float64
	OrderCount     int64
	SnapshotName   string
	SnapshotMobile string
}

// RevenuePerCustomer names each group from the live customer, falling back to
// the order snapshot once the customer is gone.
func (s *ReportService) RevenuePerCustomer(ctx context.Context, userID uuid.UUID) ([]CustomerRevenue, error) {
	var rows []customerRevenueRow
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("customer_id, COALESCE(SUM(final_total), 0) AS total_revenue, COUNT(*) AS order_count, " +
			"MAX(snapshot_name) AS snapshot_name, MAX(snapshot_mobile) AS snapshot_mobile").
		Where("user_id = ?", userID).
		Group("customer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.CustomerID
	}
	live := map[uuid.UUID]models.Customer{}
	if len(ids) > 0 {
		var customers []models.Customer
		if err := s.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Find(&customers).Error; err != nil {
			return nil, err
		}
		for _, c := range customers {
			live[c.ID] = c
		}
	}

	out := make([]CustomerRevenue, len(rows))
	for i, r := range rows {
		name, mobile := r.SnapshotName, r.SnapshotMobile
		if c, ok := live[r.CustomerID]; ok {
			name, mobile = c.Name, c.Mobile
		}
		out[i] = CustomerRevenue{
			CustomerID:   r.CustomerID,
			Name:         name,
			Mobile:       mobile,
			TotalRevenue: r.TotalRevenue,
			OrderCount:   r.OrderCount,
		}
	}
	return out, nil
}

type revenuePoint struct {
	FinalTotal float64
	CreatedAt  time.Time
}

// RevenueOverTime buckets orders by UTC creation month and year, newest first.
func (s *ReportService) RevenueOverTime(ctx context.Context, userID uuid.UUID) ([]MonthRevenue, []YearRevenue, error) {
	var points []revenuePoint
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("final_total, created_at").
		Where("user_id = ?", userID).
		Scan(&points).Error; err != nil {
		return nil, nil, err
	}

	type bucket struct {
		total decimal.Decimal
		count int64
	}
	months := map[string]*bucket{}
	years := map[int]*bucket{}
	for _, p := range points {
		t := p.CreatedAt.UTC()
		amount := decimal.NewFromFloat(utils.Finite(p.FinalTotal))

		key := utils.MonthKey(t)
		if months[key] == nil {
			months[key] = &bucket{}
		}
		months[key].total = months[key].total.Add(amount)
		months[key].count++

		if years[t.Year()] == nil {
			years[t.Year()] = &bucket{}
		}
		years[t.Year()].total = years[t.Year()].total.Add(amount)
		years[t.Year()].count++
	}

	perMonth := make([]MonthRevenue, 0, len(months))
	for key, b := range months {
		t, _ := time.Parse("2006-01", key)
		perMonth = append(perMonth, MonthRevenue{
			Month:        key,
			Year:         t.Year(),
			MonthNumber:  int(t.Month()),
			TotalRevenue: b.total.InexactFloat64(),
			OrderCount:   b.count,
		})
	}
	sort.Slice(perMonth, func(i, j int) bool { return perMonth[i].Month > perMonth[j].Month })

	perYear := make([]YearRevenue, 0, len(years))
	for year, b := range years {
		perYear = append(perYear, YearRevenue{Year: year, TotalRevenue: b.total.InexactFloat64(), OrderCount: b.count})
	}
	sort.Slice(perYear, func(i, j int) bool { return perYear[i].Year > perYear[j].Year })

	return perMonth, perYear, nil
}

type serviceProfitRow struct {
	ServiceID    uuid.UUID
	ServiceName  string
	TotalRevenue float64
	TotalCost    float64
}

// ProfitMargins only covers services still in the catalog; cost uses the
// current invest cost.
func (s *ReportService) ProfitMargins(ctx context.Context, userID uuid.UUID) ([]ServiceProfit, error) {
	var rows []serviceProfitRow
	err := s.db.WithContext(ctx).
		Table("order_line_items AS li").
		Select("s.id AS service_id, s.name AS service_name, COALESCE(SUM(li.total), 0) AS total_revenue, "+
			"COALESCE(SUM(li.qty * s.invest_cost), 0) AS total_cost").
		Joins("JOIN orders o ON o.id = li.order_id").
		Joins("JOIN services s ON s.id = li.service_id").
		Where("o.user_id = ? AND s.user_id = ?", userID, userID).
		Group("s.id, s.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]ServiceProfit, len(rows))
	for i, r := range rows {
		profit := decimal.NewFromFloat(r.TotalRevenue).Sub(decimal.NewFromFloat(r.TotalCost))
		out[i] = ServiceProfit{
			ServiceID:    r.ServiceID,
			ServiceName:  r.ServiceName,
			TotalRevenue: r.TotalRevenue,
			TotalCost:    r.TotalCost,
			TotalProfit:  profit.InexactFloat64(),
		}
	}
	return out, nil
}

func (s *ReportService) ServiceBreakdown(ctx context.Context, userID uuid.UUID) ([]ServiceBreakdown, error) {
	var rows []ServiceBreakdown
	err := s.db.WithContext(ctx).
		Table("order_line_items AS li").
		Select("s.id AS service_id, s.name AS name, s.service_group AS \"group\", "+
			"COALESCE(SUM(li.total), 0) AS total_revenue, COALESCE(SUM(li.qty), 0) AS total_qty, "+
			"COUNT(DISTINCT li.order_id) AS total_orders").
		Joins("JOIN orders o ON o.id = li.order_id").
		Joins("JOIN services s ON s.id = li.service_id").
		Where("o.user_id = ? AND s.user_id = ?", userID, userID).
		Group("s.id, s.name, s.service_group").
		Scan(&rows).Error
	return rows, err
}

// Ledger lists orders newest first. limit <= 0 means all.
func (s *ReportService) Ledger(ctx context.Context, userID uuid.UUID, limit int) ([]OrderLedgerRow, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("id, invoice_number, snapshot_name AS customer_name, status, tax, discount, " +
			"final_total, advance_amount, due_amount, created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	rows := []OrderLedgerRow{}
	err := query.Scan(&rows).Error
	return rows, err
}

func (s *ReportService) NewCustomersPerMonth(ctx context.Context, userID uuid.UUID) ([]NewCustomersMonth, error) {
	var created []time.Time
	if err := s.db.WithContext(ctx).Model(&models.Customer{}).
		Where("user_id = ?", userID).
		Pluck("created_at", &created).Error; err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	for _, t := range created {
		counts[utils.MonthKey(t.UTC())]++
	}

	out := make([]NewCustomersMonth, 0, len(counts))
	for month, n := range counts {
		out = append(out, NewCustomersMonth{Month: month, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (s *ReportService) sumRevenue(ctx context.Context, userID uuid.UUID, since *time.Time) (float64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	var total float64
	err := query.Select("COALESCE(SUM(final_total), 0)").Scan(&total).Error
	return total, err
}

func (s *ReportService) Dashboard(ctx context.Context, userID uuid.UUID, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{StatusCounts: make(map[string]int64, len(models.OrderStatuses))}
	for _, status := range models.OrderStatuses {
		stats.StatusCounts[status] = 0
	}

	var err error
	if stats.TotalRevenue, err = s.sumRevenue(ctx, userID, nil); err != nil {
		return nil, err
	}

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	firstOfLastMonth := firstOfMonth.AddDate(0, -1, 0)
	if stats.MonthlyRevenue, err = s.sumRevenue(ctx, userID, &firstOfMonth); err != nil {
		return nil, err
	}
	var lastMonth float64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, firstOfLastMonth, firstOfMonth).
		Select("COALESCE(SUM(final_total), 0)").
		Scan(&lastMonth).Error; err != nil {
		return nil, err
	}
	stats.MonthGrowth = growthPercentage(stats.MonthlyRevenue, lastMonth)

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&stats.OrderCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Customer{}).Where("user_id = ?", userID).Count(&stats.CustomerCount).Error; err != nil {
		return nil, err
	}

	var statusRows []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, r := range statusRows {
		stats.StatusCounts[r.Status] = r.Count
	}

	if stats.RecentOrders, err = s.Ledger(ctx, userID, 5); err != nil {
		return nil, err
	}
	return stats, nil
}

func growthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}
