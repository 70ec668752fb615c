package services

import (
	"context"
	"errors"
	"testing"

	"studiocrm-backend/models"
	"studiocrm-backend/notifications"
	"studiocrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	messages []notifications.Message
}

func (r *recordingNotifier) Notify(msg notifications.Message) {
	r.messages = append(r.messages, msg)
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects duplicate mobile per tenant", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.user(t, "cs1@studio.com", "+919800000201")
		other := env.user(t, "cs2@studio.com", "+919800000202")
		env.customer(t, owner.ID, "Asha", "+919830000001")

		_, err := env.customers.Create(ctx, owner.ID, CustomerInput{Name: "Asha Two", Mobile: "+91-98300-00001"})
		if !errors.Is(err, ErrDuplicateCustomer) {
			t.Fatalf("expected ErrDuplicateCustomer, got %v", err)
		}

		if _, err := env.customers.Create(ctx, other.ID, CustomerInput{Name: "Asha", Mobile: "+919830000001"}); err != nil {
			t.Fatalf("same mobile should be allowed for another tenant: %v", err)
		}
	})

	t.Run("rejects invalid phone", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.user(t, "cs3@studio.com", "+919800000203")
		if _, err := env.customers.Create(ctx, owner.ID, CustomerInput{Name: "X", Mobile: "abc"}); !errors.Is(err, ErrInvalidPhone) {
			t.Fatalf("expected ErrInvalidPhone, got %v", err)
		}
	})

	t.Run("notifies the studio owner", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.user(t, "cs4@studio.com", "+919800000204")
		notifier := &recordingNotifier{}
		svc := NewCustomerService(env.db, env.audit, notifier, zap.NewNop())

		if _, err := svc.Create(ctx, owner.ID, CustomerInput{Name: "Bina", Mobile: "+919830000002"}); err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(notifier.messages) != 1 || notifier.messages[0].To != "cs4@studio.com" || notifier.messages[0].Channel != notifications.ChannelEmail {
			t.Fatalf("unexpected notifications: %+v", notifier.messages)
		}
	})
}

func TestCustomerService_ListUpdateDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "cs5@studio.com", "+919800000205")
	a := env.customer(t, owner.ID, "Alpha", "+919830000011")
	b := env.customer(t, owner.ID, "Beta", "+919830000012")
	c := env.customer(t, owner.ID, "Gamma", "+919830000013")

	list, total, err := env.customers.List(ctx, owner.ID, "", utils.Pagination{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(list) != 2 {
		t.Fatalf("expected page of 2 out of 3, got %d/%d", len(list), total)
	}

	list, total, _ = env.customers.List(ctx, owner.ID, "ALP", utils.Pagination{Page: 1, Limit: 10})
	if total != 1 || list[0].ID != a.ID {
		t.Fatalf("search failed: %+v", list)
	}

	dup := "+919830000012"
	if _, err := env.customers.Update(ctx, owner.ID, a.ID, CustomerUpdate{Mobile: &dup}); !errors.Is(err, ErrDuplicateCustomer) {
		t.Fatalf("expected ErrDuplicateCustomer, got %v", err)
	}
	city := "Nagpur"
	updated, err := env.customers.Update(ctx, owner.ID, a.ID, CustomerUpdate{City: &city})
	if err != nil || updated.City != "Nagpur" {
		t.Fatalf("update: %v %+v", err, updated)
	}

	if err := env.customers.Delete(ctx, owner.ID, uuid.New()); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}

	n, err := env.customers.BulkDelete(ctx, owner.ID, []uuid.UUID{b.ID, c.ID, uuid.New()})
	if err != nil || n != 2 {
		t.Fatalf("bulk delete: %v n=%d", err, n)
	}

	var remaining int64
	env.db.Model(&models.Customer{}).Where("user_id = ?", owner.ID).Count(&remaining)
	if remaining != 1 {
		t.Fatalf("expected 1 remaining customer, got %d", remaining)
	}
}

func TestCustomerService_Orders(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "cs6@studio.com", "+919800000206")
	cust := env.customer(t, owner.ID, "Dia", "+919830000021")
	for _, venue := range []string{"Lake View", "Hill Top", "Lake Side"} {
		if _, err := env.orders.Create(ctx, owner.ID, OrderInput{CustomerID: &cust.ID, Venue: venue}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	orders, total, err := env.customers.Orders(ctx, owner.ID, cust.ID, "lake", utils.Pagination{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Fatalf("expected 2 lake orders, got %d", total)
	}
}
