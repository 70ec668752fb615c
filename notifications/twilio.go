package notifications

import (
	"context"
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends SMS or WhatsApp messages depending on its channel.
type TwilioSender struct {
	api     messageCreator
	channel Channel
	from    string
}

func newTwilioClient(cfg TwilioConfig) *twilio.RestClient {
	return twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
}

// NewSMSSender returns nil when Twilio or the sender number is not configured.
func NewSMSSender(cfg TwilioConfig) *TwilioSender {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.PhoneNumber == "" {
		return nil
	}
	return &TwilioSender{api: newTwilioClient(cfg).Api, channel: ChannelSMS, from: cfg.PhoneNumber}
}

func NewWhatsAppSender(cfg TwilioConfig) *TwilioSender {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.WhatsAppNumber == "" {
		return nil
	}
	return &TwilioSender{api: newTwilioClient(cfg).Api, channel: ChannelWhatsApp, from: cfg.WhatsAppNumber}
}

// Send ignores ctx; the Twilio client has no context aware API.
func (s *TwilioSender) Send(_ context.Context, msg Message) error {
	to, from := msg.To, s.from
	if s.channel == ChannelWhatsApp {
		to = withWhatsAppPrefix(to)
		from = withWhatsAppPrefix(from)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(msg.Body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp == nil || resp.Sid == nil {
		return errors.New("twilio returned no message sid")
	}
	return nil
}

func withWhatsAppPrefix(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
