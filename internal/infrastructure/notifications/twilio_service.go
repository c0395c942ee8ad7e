package notifications

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/you/erpauth/domain"
	"go.uber.org/zap"
)

// TwilioServiceImpl implements domain.SMSSender
type TwilioServiceImpl struct {
	client     *twilio.RestClient
	fromNumber string
	logger     *zap.Logger
}

// NewTwilioService creates a new Twilio SMS sender
func NewTwilioService(accountSID, authToken, fromNumber string, logger *zap.Logger) *TwilioServiceImpl {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioServiceImpl{
		client:     client,
		fromNumber: fromNumber,
		logger:     logger,
	}
}

// SendSMS implements domain.SMSSender
func (t *TwilioServiceImpl) SendSMS(ctx context.Context, to, message string) error {
	if to == "" {
		return fmt.Errorf("%w: no phone number on file", domain.ErrDeliveryFailed)
	}

	// If credentials are not configured, log instead of sending
	if t.fromNumber == "" {
		t.logger.Info("sms delivery disabled, logging message", zap.String("to", to), zap.String("message", message))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	_, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	return nil
}

var _ domain.SMSSender = (*TwilioServiceImpl)(nil)
