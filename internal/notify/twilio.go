package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/time/rate"

	"github.com/mmynk/settleup/internal/apperr"
)

// messageCreator is the part of the Twilio API client used to send SMS.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioConfig holds the credentials and limits for TwilioSender.
type TwilioConfig struct {
	AccountSID         string
	AuthToken          string
	FromNumber         string
	DefaultCountryCode string
	RatePerSecond      float64
	Burst              int
}

// TwilioSender sends SMS through the Twilio REST API.
// Outbound messages are rate limited to stay within the account's throughput.
type TwilioSender struct {
	api         messageCreator
	from        string
	countryCode string
	limiter     *rate.Limiter
}

// NewTwilioSender creates a sender from cfg.
func NewTwilioSender(cfg TwilioConfig) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return newTwilioSender(client.Api, cfg)
}

func newTwilioSender(api messageCreator, cfg TwilioConfig) *TwilioSender {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &TwilioSender{
		api:         api,
		from:        cfg.FromNumber,
		countryCode: cfg.DefaultCountryCode,
		limiter:     rate.NewLimiter(limit, burst),
	}
}

// Send delivers body to phone. Failures are returned as DependencyError.
func (s *TwilioSender) Send(ctx context.Context, phone, body string) (string, error) {
	to, err := FormatPhone(phone, s.countryCode)
	if err != nil {
		return "", apperr.Validation("%s", err.Error())
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", apperr.Dependency(err, "sms rate limiter")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		slog.Error("Failed to send SMS", "to", to, "error", err)
		return "", apperr.Dependency(err, "failed to send SMS")
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	if sid == "" {
		return "", apperr.Dependency(fmt.Errorf("empty message SID"), "failed to send SMS")
	}

	slog.Info("SMS sent", "to", to, "message_id", sid)
	return sid, nil
}
