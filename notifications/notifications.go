package notifications

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -source=notifications.go -destination=mocks/mock_sender.go -package=mocks

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

var ErrChannelNotConfigured = errors.New("notification channel not configured")

type Message struct {
	Channel Channel
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const defaultSendTimeout = 30 * time.Second

// Dispatcher routes messages to the sender registered for their channel.
type Dispatcher struct {
	senders map[Channel]Sender
	timeout time.Duration
	log     *zap.Logger
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		senders: make(map[Channel]Sender),
		timeout: defaultSendTimeout,
		log:     log,
	}
}

// Register is not safe to call once messages are being sent.
func (d *Dispatcher) Register(ch Channel, s Sender) {
	if s == nil {
		return
	}
	d.senders[ch] = s
}

func (d *Dispatcher) Enabled(ch Channel) bool {
	_, ok := d.senders[ch]
	return ok
}

// Deliver sends synchronously and returns the sender's error.
func (d *Dispatcher) Deliver(ctx context.Context, msg Message) error {
	s, ok := d.senders[msg.Channel]
	if !ok {
		return ErrChannelNotConfigured
	}
	if msg.To == "" {
		return errors.New("notification recipient is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return s.Send(ctx, msg)
}

// Notify sends in the background. Failures are logged and dropped.
func (d *Dispatcher) Notify(msg Message) {
	if !d.Enabled(msg.Channel) || msg.To == "" {
		return
	}
	go func() {
		if err := d.Deliver(context.Background(), msg); err != nil {
			d.log.Warn("notification failed",
				zap.String("channel", string(msg.Channel)),
				zap.String("to", msg.To),
				zap.Error(err),
			)
		}
	}()
}
