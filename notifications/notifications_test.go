package notifications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"studiocrm-backend/notifications"
	"studiocrm-backend/notifications/mocks"

	"go.uber.org/mock/gomock"
)

func TestDispatcher_Deliver(t *testing.T) {
	t.Run("unconfigured channel", func(t *testing.T) {
		d := notifications.NewDispatcher(nil)
		err := d.Deliver(context.Background(), notifications.Message{Channel: notifications.ChannelSMS, To: "+919999999999"})
		if !errors.Is(err, notifications.ErrChannelNotConfigured) {
			t.Fatalf("expected ErrChannelNotConfigured, got %v", err)
		}
	})

	t.Run("routes to channel sender", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		email := mocks.NewMockSender(ctrl)
		sms := mocks.NewMockSender(ctrl)

		d := notifications.NewDispatcher(nil)
		d.Register(notifications.ChannelEmail, email)
		d.Register(notifications.ChannelSMS, sms)

		msg := notifications.Message{Channel: notifications.ChannelEmail, To: "a@b.com", Subject: "Hi", Body: "Hello"}
		email.EXPECT().Send(gomock.Any(), msg).Return(nil)

		if err := d.Deliver(context.Background(), msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("returns sender error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		email := mocks.NewMockSender(ctrl)

		d := notifications.NewDispatcher(nil)
		d.Register(notifications.ChannelEmail, email)
		email.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

		err := d.Deliver(context.Background(), notifications.Message{Channel: notifications.ChannelEmail, To: "a@b.com"})
		if err == nil || err.Error() != "smtp down" {
			t.Fatalf("expected smtp error, got %v", err)
		}
	})

	t.Run("empty recipient", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		email := mocks.NewMockSender(ctrl)

		d := notifications.NewDispatcher(nil)
		d.Register(notifications.ChannelEmail, email)

		if err := d.Deliver(context.Background(), notifications.Message{Channel: notifications.ChannelEmail}); err == nil {
			t.Fatalf("expected error for empty recipient")
		}
	})
}

func TestDispatcher_NotifySwallowsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	email := mocks.NewMockSender(ctrl)

	d := notifications.NewDispatcher(nil)
	d.Register(notifications.ChannelEmail, email)

	done := make(chan struct{})
	email.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ notifications.Message) error {
			close(done)
			return errors.New("boom")
		},
	)

	d.Notify(notifications.Message{Channel: notifications.ChannelEmail, To: "a@b.com"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected background send")
	}
}
