// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"studiocrm-backend/models"
	"studiocrm-backend/notifications"
	"studiocrm-backend/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	NotificationEventReminder = "event_reminder"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// Deliverer is the synchronous side of notifications.Dispatcher.
type Deliverer interface {
	Deliver(ctx context.Context, msg notifications.Message) error
	Enabled(ch notifications.Channel) bool
}

type ReminderService struct {
	db        *gorm.DB
	deliverer Deliverer
	days      []int
	spec      string
	log       *zap.Logger
	cron      *cron.Cron
}

func NewReminderService(db *gorm.DB, deliverer Deliverer, spec string, days []int, log *zap.Logger) *ReminderService {
	if spec == "" {
		spec = "0 8 * * *"
	}
	if len(days) == 0 {
		days = []int{7, 5, 2, 1}
	}
	return &ReminderService{db: db, deliverer: deliverer, days: days, spec: spec, log: log}
}

func (s *ReminderService) StartScheduler() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.spec, func() {
		s.SendDailyReminders(context.Background(), time.Now())
	})
	if err != nil {
		return fmt.Errorf("schedule reminders %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("reminder scheduler started", zap.String("spec", s.spec), zap.Ints("days", s.days))
	return nil
}

func (s *ReminderService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// SendDailyReminders notifies customers whose event is exactly one of the
// configured offsets away from now. Every attempt is logged; nothing is retried.
func (s *ReminderService) SendDailyReminders(ctx context.Context, now time.Time) (sent, failed int) {
	s.log.Info("starting daily reminder processing")

	for _, offset := range s.days {
		start, end := utils.DayWindow(now.UTC(), offset)

		var orders []models.Order
		if err := s.db.WithContext(ctx).
			Where("event_date >= ? AND event_date < ? AND status <> ?", start, end, models.OrderStatusCancelled).
			Find(&orders).Error; err != nil {
			s.log.Error("failed to fetch upcoming events", zap.Int("daysBefore", offset), zap.Error(err))
			continue
		}

		for i := range orders {
			ok, bad := s.remind(ctx, &orders[i], offset)
			sent += ok
			failed += bad
		}
	}

	s.log.Info("daily reminder processing completed", zap.Int("sent", sent), zap.Int("failed", failed))
	return sent, failed
}

func (s *ReminderService) remind(ctx context.Context, order *models.Order, offset int) (sent, failed int) {
	contact := order.CustomerSnapshot
	var customer models.Customer
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", order.UserID, order.CustomerID).First(&customer).Error; err == nil {
		contact = customer.Snapshot()
	}

	var studio models.User
	studioName := "your studio"
	if err := s.db.WithContext(ctx).Select("studio_name", "name").First(&studio, "id = ?", order.UserID).Error; err == nil {
		if studio.StudioName != "" {
			studioName = studio.StudioName
		} else if studio.Name != "" {
			studioName = studio.Name
		}
	}

	body := reminderBody(contact.Name, studioName, order, offset)

	var messages []notifications.Message
	if contact.Email != "" && s.deliverer.Enabled(notifications.ChannelEmail) {
		messages = append(messages, notifications.Message{
			Channel: notifications.ChannelEmail,
			To:      contact.Email,
			Subject: fmt.Sprintf("Reminder: your event is in %d day(s)", offset),
			Body:    body,
		})
	}
	if contact.Mobile != "" && s.deliverer.Enabled(notifications.ChannelSMS) {
		messages = append(messages, notifications.Message{
			Channel: notifications.ChannelSMS,
			To:      contact.Mobile,
			Body:    body,
		})
	}
	if contact.Mobile != "" && s.deliverer.Enabled(notifications.ChannelWhatsApp) {
		messages = append(messages, notifications.Message{
			Channel: notifications.ChannelWhatsApp,
			To:      contact.Mobile,
			Body:    body,
		})
	}

	for _, msg := range messages {
		status, errMsg := NotificationStatusSent, ""
		if err := s.deliverer.Deliver(ctx, msg); err != nil {
			s.log.Warn("failed to send reminder",
				zap.String("orderId", order.ID.String()),
				zap.String("channel", string(msg.Channel)),
				zap.Error(err),
			)
			status, errMsg = NotificationStatusFailed, err.Error()
			failed++
		} else {
			sent++
		}

		entry := models.NotificationLog{
			UserID:       order.UserID,
			OrderID:      order.ID,
			CustomerID:   order.CustomerID,
			Type:         NotificationEventReminder,
			DaysBefore:   offset,
			Channel:      string(msg.Channel),
			Recipient:    msg.To,
			Message:      msg.Body,
			Status:       status,
			ErrorMessage: errMsg,
			SentAt:       time.Now(),
		}
		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			s.log.Error("failed to log reminder", zap.String("orderId", order.ID.String()), zap.Error(err))
		}
	}
	return sent, failed
}

func reminderBody(customerName, studioName string, order *models.Order, offset int) string {
	when := "tomorrow"
	if offset != 1 {
		when = fmt.Sprintf("in %d days", offset)
	}
	body := fmt.Sprintf("Hi %s, this is a reminder from %s that your event is %s", customerName, studioName, when)
	if order.EventDate != nil {
		body += " on " + order.EventDate.Format("02 Jan 2006")
	}
	if order.Venue != "" {
		body += " at " + order.Venue
	}
	return body + fmt.Sprintf(". Order %s.", order.InvoiceNumber)
}

// Upcoming lists the tenant's non-cancelled orders with an event in the next
// `days` days, soonest first.
func (s *ReminderService) Upcoming(ctx context.Context, userID uuid.UUID, now time.Time, days int) ([]models.Order, error) {
	start := utils.BeginningOfDay(now.UTC())
	end := start.AddDate(0, 0, days+1)

	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND event_date >= ? AND event_date < ? AND status <> ?", userID, start, end, models.OrderStatusCancelled).
		Order("event_date ASC").
		Find(&orders).Error
	return orders, err
}

func (s *ReminderService) Logs(ctx context.Context, userID uuid.UUID, p utils.Pagination) ([]models.NotificationLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.NotificationLog{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []models.NotificationLog
	err := query.Order("sent_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&logs).Error
	return logs, total, err
}
