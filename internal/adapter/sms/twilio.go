// Package sms sends text messages to callers through Twilio.
package sms

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends SMS messages from a fixed Twilio number.
type TwilioSender struct {
	api  messageCreator
	from string
}

// NewTwilioSender creates a sender from account credentials.
func NewTwilioSender(accountSID, authToken, from string) (*TwilioSender, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSender{api: client.Api, from: from}, nil
}

// SendSMS sends body to the given number and returns the message SID.
func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	if to == "" {
		return "", fmt.Errorf("destination number is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send sms: %w", err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return "", fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	slog.Info("sms sent", "to", to, "sid", sid)
	return sid, nil
}
