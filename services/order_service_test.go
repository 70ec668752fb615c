package services

import (
	"context"
	"errors"
	"testing"

	"studiocrm-backend/models"
	"studiocrm-backend/utils"

	"github.com/google/uuid"
)

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("computes totals and snapshots the customer", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.user(t, "a@studio.com", "+919800000001")
		cust := env.customer(t, owner.ID, "Asha", "+919811111111")
		shoot := env.service(t, owner.ID, "Wedding Shoot", 1000, 400)
		album := env.service(t, owner.ID, "Album", 500, 200)

		detail, err := env.orders.Create(ctx, owner.ID, OrderInput{
			CustomerID:    &cust.ID,
			Venue:         "Taj Hall",
			Services:      []LineItemInput{line(shoot.ID, 1, 1000), line(album.ID, 1, 500)},
			Tax:           18,
			Discount:      100,
			AdvanceAmount: 500,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if detail.FinalTotal != 1670 || detail.DueAmount != 1170 {
			t.Fatalf("expected 1670/1170, got %v/%v", detail.FinalTotal, detail.DueAmount)
		}
		if detail.Status != models.OrderStatusPending {
			t.Fatalf("expected pending status, got %s", detail.Status)
		}
		if detail.CustomerSnapshot.Name != "Asha" || detail.CustomerSnapshot.City != "Pune" {
			t.Fatalf("unexpected snapshot: %+v", detail.CustomerSnapshot)
		}
		if len(detail.Items) != 2 || detail.Items[0].ServiceName != "Wedding Shoot" || detail.Items[1].ServiceName != "Album" {
			t.Fatalf("unexpected items: %+v", detail.Items)
		}
		if len(detail.History) != 1 || detail.History[0].Action != HistoryOrderCreated || detail.History[0].By != owner.ID {
			t.Fatalf("unexpected history: %+v", detail.History)
		}
		if detail.CurrentCustomer == nil || detail.CurrentCustomer.ID != cust.ID {
			t.Fatalf("expected live customer")
		}
	})

	t.Run("empty order with discount is negative", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.user(t, "b@studio.com", "+919800000002")
		cust := env.customer(t, owner.ID, "Ben", "+919822222222")

		detail, err := env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &cust.ID, Discount: 50})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if detail.FinalTotal != -50 || detail.DueAmount != -50 {
			t.Fatalf("expected -50/-50, got %v/%v", detail.FinalTotal, detail.DueAmount)
		}
	})

	t.Run("inline customer is found by mobile", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.user(t, "c@studio.com", "+919800000003")
		existing := env.customer(t, owner.ID, "Chitra", "+919833333333")

		detail, err := env.orders.Create(ctx, owner.ID, OrderInput{
			Customer: &CustomerInput{Name: "Someone Else", Mobile: "+91 98333 33333"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if detail.CustomerID != existing.ID {
			t.Fatalf("expected existing customer to be reused")
		}

		created, err := env.orders.Create(ctx, owner.ID, OrderInput{
			Customer: &CustomerInput{Name: "Dev", Mobile: "+919844444444", City: "Goa"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.CustomerSnapshot.Name != "Dev" || created.CurrentCustomer == nil {
			t.Fatalf("expected new customer, got %+v", created.CustomerSnapshot)
		}
	})

	t.Run("rejects other tenant's references", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.user(t, "d@studio.com", "+919800000004")
		other := env.user(t, "e@studio.com", "+919800000005")
		foreignCustomer := env.customer(t, other.ID, "Eve", "+919855555555")
		foreignService := env.service(t, other.ID, "Drone", 3000, 0)
		ownCustomer := env.customer(t, owner.ID, "Farah", "+919866666666")

		_, err := env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &foreignCustomer.ID})
		if !errors.Is(err, ErrCustomerNotFound) {
			t.Fatalf("expected ErrCustomerNotFound, got %v", err)
		}

		_, err = env.orders.Create(ctx, owner.ID, OrderInput{
			CustomerID: &ownCustomer.ID,
			Services:   []LineItemInput{line(foreignService.ID, 1, 3000)},
		})
		if !errors.Is(err, ErrServiceNotFound) {
			t.Fatalf("expected ErrServiceNotFound, got %v", err)
		}
	})

	t.Run("validation happens before any write", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.user(t, "g@studio.com", "+919800000006")

		_, err := env.orders.Create(ctx, owner.ID, OrderInput{
			Customer: &CustomerInput{Name: "Gita", Mobile: "+919877777777"},
			Services: []LineItemInput{line(uuid.New(), 1, 100)},
		})
		if !errors.Is(err, ErrServiceNotFound) {
			t.Fatalf("expected ErrServiceNotFound, got %v", err)
		}
		var count int64
		env.db.Model(&models.Customer{}).Count(&count)
		if count != 0 {
			t.Fatalf("expected no customer to be created, got %d", count)
		}

		if _, err := env.orders.Create(ctx, owner.ID, OrderInput{}); !errors.Is(err, ErrCustomerMissing) {
			t.Fatalf("expected ErrCustomerMissing, got %v", err)
		}
		if _, err := env.orders.Create(ctx, owner.ID, OrderInput{Customer: &CustomerInput{Name: "x", Mobile: "+1"}, Status: "shipped"}); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
	})
}

func TestOrderService_InvoiceNumbersAreUnique(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "h@studio.com", "+919800000007")
	cust := env.customer(t, owner.ID, "Hari", "+919888888888")

	seen := map[string]bool{}
	var firstID uuid.UUID
	var firstNumber string
	for i := 0; i < 25; i++ {
		o, err := env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &cust.ID})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[o.InvoiceNumber] {
			t.Fatalf("duplicate invoice number %s", o.InvoiceNumber)
		}
		seen[o.InvoiceNumber] = true
		if i == 0 {
			firstID, firstNumber = o.ID, o.InvoiceNumber
		}
	}

	venue := "Changed"
	status := models.OrderStatusApproved
	updated, err := env.orders.Update(ctx, owner.ID, firstID, OrderUpdate{Venue: &venue, Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.InvoiceNumber != firstNumber {
		t.Fatalf("invoice number changed from %s to %s", firstNumber, updated.InvoiceNumber)
	}
}

func TestOrderService_Update(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "i@studio.com", "+919800000008")
	cust := env.customer(t, owner.ID, "Ira", "+919899999999")
	shoot := env.service(t, owner.ID, "Shoot", 1000, 0)

	created, err := env.orders.Create(ctx, owner.ID, OrderInput{
		CustomerID: &cust.ID,
		Services:   []LineItemInput{line(shoot.ID, 1, 1000)},
		Tax:        10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("tax change recalculates totals", func(t *testing.T) {
		tax := utils.Amount(20)
		advance := utils.Amount(200)
		o, err := env.orders.Update(ctx, owner.ID, created.ID, OrderUpdate{Tax: &tax, AdvanceAmount: &advance})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if o.FinalTotal != 1200 || o.DueAmount != 1000 {
			t.Fatalf("expected 1200/1000, got %v/%v", o.FinalTotal, o.DueAmount)
		}
	})

	t.Run("line items are replaced", func(t *testing.T) {
		lines := []LineItemInput{line(shoot.ID, 2, 1000), line(shoot.ID, 1, 500)}
		o, err := env.orders.Update(ctx, owner.ID, created.ID, OrderUpdate{Services: &lines})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if len(o.Items) != 2 || o.Items[0].Total != 2000 || o.Items[1].Total != 500 {
			t.Fatalf("unexpected items: %+v", o.Items)
		}
		// 2500 * 1.2 - 0, advance 200
		if o.FinalTotal != 3000 || o.DueAmount != 2800 {
			t.Fatalf("expected 3000/2800, got %v/%v", o.FinalTotal, o.DueAmount)
		}
	})

	t.Run("history only grows", func(t *testing.T) {
		before, _ := env.orders.Get(ctx, owner.ID, created.ID)
		count := len(before.History)

		for i := 0; i < 3; i++ {
			venue := "Venue"
			o, err := env.orders.Update(ctx, owner.ID, created.ID, OrderUpdate{Venue: &venue})
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if len(o.History) != count+1 {
				t.Fatalf("expected %d history entries, got %d", count+1, len(o.History))
			}
			if o.History[len(o.History)-1].Action != HistoryOrderUpdated {
				t.Fatalf("unexpected last action %q", o.History[len(o.History)-1].Action)
			}
			count = len(o.History)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		bad := "archived"
		if _, err := env.orders.Update(ctx, owner.ID, created.ID, OrderUpdate{Status: &bad}); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("other tenant cannot update", func(t *testing.T) {
		other := env.user(t, "j@studio.com", "+919800000009")
		venue := "x"
		if _, err := env.orders.Update(ctx, other.ID, created.ID, OrderUpdate{Venue: &venue}); !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

func TestOrderService_SnapshotSurvivesCustomerEdits(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "k@studio.com", "+919800000010")
	cust := env.customer(t, owner.ID, "Kiran", "+919812121212")

	created, err := env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &cust.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name, mobile, city := "Kiran Rao", "+919813131313", "Mumbai"
	if _, err := env.customers.Update(ctx, owner.ID, cust.ID, CustomerUpdate{Name: &name, Mobile: &mobile, City: &city}); err != nil {
		t.Fatalf("update customer: %v", err)
	}

	got, err := env.orders.Get(ctx, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CustomerSnapshot != created.CustomerSnapshot {
		t.Fatalf("snapshot changed: %+v -> %+v", created.CustomerSnapshot, got.CustomerSnapshot)
	}
	if got.CurrentCustomer.Name != "Kiran Rao" {
		t.Fatalf("expected live customer to reflect edit")
	}

	if err := env.customers.Delete(ctx, owner.ID, cust.ID); err != nil {
		t.Fatalf("delete customer: %v", err)
	}
	got, err = env.orders.Get(ctx, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got.CurrentCustomer != nil || got.CustomerSnapshot.Name != "Kiran" {
		t.Fatalf("expected snapshot only, got %+v", got)
	}
}

func TestOrderService_ServiceDeleteKeepsTotals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "l@studio.com", "+919800000011")
	cust := env.customer(t, owner.ID, "Lata", "+919814141414")
	shoot := env.service(t, owner.ID, "Pre Wedding", 1500, 0)

	created, err := env.orders.Create(ctx, owner.ID, OrderInput{
		CustomerID: &cust.ID,
		Services:   []LineItemInput{line(shoot.ID, 2, 1500)},
		Tax:        5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := env.catalog.Delete(ctx, owner.ID, shoot.ID); err != nil {
		t.Fatalf("delete service: %v", err)
	}

	got, err := env.orders.Get(ctx, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FinalTotal != created.FinalTotal || got.Items[0].Total != 3000 || got.Items[0].ServiceName != "Pre Wedding" {
		t.Fatalf("order changed after service delete: %+v", got.Order)
	}
}

func TestOrderService_BulkStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "m@studio.com", "+919800000012")
	other := env.user(t, "n@studio.com", "+919800000013")
	cust := env.customer(t, owner.ID, "Mira", "+919815151515")
	otherCust := env.customer(t, other.ID, "Nia", "+919816161616")

	a, _ := env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &cust.ID})
	b, _ := env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &cust.ID})
	foreign, _ := env.orders.Create(ctx, other.ID, OrderInput{CustomerID: &otherCust.ID})

	n, err := env.orders.BulkUpdateStatus(ctx, owner.ID, []uuid.UUID{a.ID, b.ID, foreign.ID}, models.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 updated, got %d", n)
	}

	got, _ := env.orders.Get(ctx, owner.ID, a.ID)
	if got.Status != models.OrderStatusCompleted || len(got.History) != 2 || got.History[1].Action != "Status changed to completed" {
		t.Fatalf("unexpected order after bulk: status=%s history=%+v", got.Status, got.History)
	}
	untouched, _ := env.orders.Get(ctx, other.ID, foreign.ID)
	if untouched.Status != models.OrderStatusPending {
		t.Fatalf("foreign order changed")
	}

	if _, err := env.orders.BulkUpdateStatus(ctx, owner.ID, []uuid.UUID{a.ID}, "done"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	if err := env.orders.Delete(ctx, owner.ID, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.orders.Get(ctx, owner.ID, a.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	var historyRows int64
	env.db.Model(&models.OrderHistory{}).Where("order_id = ?", a.ID).Count(&historyRows)
	if historyRows != 0 {
		t.Fatalf("expected history removed with order")
	}
	if err := env.orders.Delete(ctx, owner.ID, foreign.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign order, got %v", err)
	}
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "o@studio.com", "+919800000014")
	cust := env.customer(t, owner.ID, "Om", "+919817171717")

	for i, venue := range []string{"Beach Resort", "City Hall", "Beach House"} {
		o, err := env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &cust.ID, Venue: venue, Discount: utils.Amount(-100 * (i + 1))})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if i == 1 {
			status := models.OrderStatusCancelled
			env.orders.Update(ctx, owner.ID, o.ID, OrderUpdate{Status: &status})
		}
	}

	orders, total, err := env.orders.List(ctx, owner.ID, OrderListQuery{Search: "beach", Pagination: utils.Pagination{Page: 1, Limit: 10}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Fatalf("expected 2 beach orders, got %d", total)
	}

	orders, _, err = env.orders.List(ctx, owner.ID, OrderListQuery{SortBy: "finalTotal", SortOrder: "asc", Pagination: utils.Pagination{Page: 1, Limit: 10}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 3 || orders[0].FinalTotal != 100 || orders[2].FinalTotal != 300 {
		t.Fatalf("unexpected sort: %v %v", orders[0].FinalTotal, orders[len(orders)-1].FinalTotal)
	}

	_, total, _ = env.orders.List(ctx, owner.ID, OrderListQuery{Status: models.OrderStatusCancelled, Pagination: utils.Pagination{Page: 1, Limit: 10}})
	if total != 1 {
		t.Fatalf("expected 1 cancelled order, got %d", total)
	}

	if _, _, err := env.orders.List(ctx, owner.ID, OrderListQuery{Status: "bogus", Pagination: utils.Pagination{Page: 1, Limit: 10}}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
