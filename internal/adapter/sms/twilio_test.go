package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeAPI struct {
	params *twilioApi.CreateMessageParams
	resp   *twilioApi.ApiV2010Message
	err    error
}

func (f *fakeAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	return f.resp, f.err
}

func TestSendSMS(t *testing.T) {
	sid := "SM42"
	api := &fakeAPI{resp: &twilioApi.ApiV2010Message{Sid: &sid}}
	s := &TwilioSender{api: api, from: "+15550001111"}

	got, err := s.SendSMS(context.Background(), "+15552223333", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM42", got)
	assert.Equal(t, "+15550001111", *api.params.From)
	assert.Equal(t, "+15552223333", *api.params.To)
	assert.Equal(t, "hello", *api.params.Body)
}

func TestSendSMSFailures(t *testing.T) {
	s := &TwilioSender{api: &fakeAPI{err: errors.New("401")}, from: "+15550001111"}
	_, err := s.SendSMS(context.Background(), "+15552223333", "hello")
	assert.Error(t, err)

	code := 21211
	text := "invalid 'To' number"
	s = &TwilioSender{api: &fakeAPI{resp: &twilioApi.ApiV2010Message{ErrorCode: &code, ErrorMessage: &text}}, from: "+1"}
	_, err = s.SendSMS(context.Background(), "+15552223333", "hello")
	assert.ErrorContains(t, err, "21211")

	_, err = s.SendSMS(context.Background(), "", "hello")
	assert.Error(t, err)
}

func TestNewTwilioSenderRequiresCredentials(t *testing.T) {
	_, err := NewTwilioSender("", "token", "+1555")
	assert.Error(t, err)

	s, err := NewTwilioSender("AC123", "token", "+15550001111")
	require.NoError(t, err)
	assert.NotNil(t, s.api)
}
