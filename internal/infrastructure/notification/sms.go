package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender delivers a text message and returns the provider message id
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// ErrSMSDisabled is returned when no SMS provider is configured
var ErrSMSDisabled = errors.New("sms delivery is not configured")

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends SMS through the Twilio messaging API
type TwilioSender struct {
	api  messageCreator
	from string
}

// NewTwilioSender creates a sender using the account credentials and sender number
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.Api, from: from}
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio create message: %w", err)
	}
	if resp == nil || resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// DisabledSMSSender fails every send with ErrSMSDisabled
type DisabledSMSSender struct{}

func (DisabledSMSSender) SendSMS(context.Context, string, string) (string, error) {
	return "", ErrSMSDisabled
}
