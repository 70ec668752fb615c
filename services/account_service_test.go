package services

import (
	"context"
	"errors"
	"testing"

	"studiocrm-backend/models"
	"studiocrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestAccountService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	notifier := &recordingNotifier{}
	accounts := NewAccountService(env.db, env.audit, notifier, zap.NewNop())

	input := RegisterInput{
		Name:       "Priya",
		Email:      "Priya@Studio.com",
		Mobile:     "+91 98000 00501",
		Password:   "supersecret",
		StudioName: "Lens Lab",
	}

	var userID uuid.UUID

	t.Run("register", func(t *testing.T) {
		res, err := accounts.Register(ctx, input)
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		if res.Token == "" || res.User.Email != "priya@studio.com" || res.User.Mobile != "+919800000501" {
			t.Fatalf("unexpected result: %+v", res.User)
		}
		if res.User.Password == "supersecret" {
			t.Fatalf("password stored in clear text")
		}
		claims, err := utils.ParseToken(res.Token)
		if err != nil || claims.Subject != res.User.ID.String() {
			t.Fatalf("token does not identify the user: %v", err)
		}
		if len(notifier.messages) != 1 || notifier.messages[0].Subject != "Welcome to StudioCRM" {
			t.Fatalf("expected welcome email, got %+v", notifier.messages)
		}
		userID = res.User.ID
	})

	t.Run("duplicate register", func(t *testing.T) {
		if _, err := accounts.Register(ctx, input); !errors.Is(err, ErrDuplicateUser) {
			t.Fatalf("expected ErrDuplicateUser, got %v", err)
		}
	})

	t.Run("login by email or mobile", func(t *testing.T) {
		for _, id := range []string{"priya@studio.com", "+919800000501"} {
			res, err := accounts.Login(ctx, LoginInput{Identifier: id, Password: "supersecret"})
			if err != nil {
				t.Fatalf("login %s: %v", id, err)
			}
			if res.User.LastLogin == nil {
				t.Fatalf("expected last login")
			}
		}
		if _, err := accounts.Login(ctx, LoginInput{Identifier: "priya@studio.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := accounts.Login(ctx, LoginInput{Identifier: "nobody@studio.com", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("update profile", func(t *testing.T) {
		gst := " 27abcde1234f1z5 "
		footer := "See you again"
		user, err := accounts.UpdateProfile(ctx, userID, ProfileUpdate{GSTNumber: &gst, InvoiceFooterNote: &footer})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if user.GSTNumber != "27ABCDE1234F1Z5" || user.InvoiceFooterNote != footer {
			t.Fatalf("unexpected profile: %+v", user)
		}
	})

	t.Run("delete removes tenant data", func(t *testing.T) {
		admin := env.user(t, "admin@studio.com", "+919800000502")
		cust := env.customer(t, userID, "Ria", "+919860000001")
		if _, err := env.orders.Create(ctx, userID, OrderInput{CustomerID: &cust.ID}); err != nil {
			t.Fatalf("create order: %v", err)
		}

		if err := accounts.Delete(ctx, admin.ID, admin.ID); !errors.Is(err, ErrCannotDeleteSelf) {
			t.Fatalf("expected ErrCannotDeleteSelf, got %v", err)
		}
		if err := accounts.Delete(ctx, admin.ID, userID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := accounts.Get(ctx, userID); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
		var orders, customers, history int64
		env.db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&orders)
		env.db.Model(&models.Customer{}).Where("user_id = ?", userID).Count(&customers)
		env.db.Model(&models.OrderHistory{}).Count(&history)
		if orders != 0 || customers != 0 || history != 0 {
			t.Fatalf("tenant data left behind: orders=%d customers=%d history=%d", orders, customers, history)
		}
	})
}
