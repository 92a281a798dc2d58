package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/EstateEmpire/estateempire-backend/internal/logging"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioSender struct {
	api  messageCreator
	from string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.Api, from: from}
}

// SendReceipt expects phone in international form without the leading plus (2547XXXXXXXX).
func (s *TwilioSender) SendReceipt(ctx context.Context, phone, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("+" + phone)
	params.SetFrom(s.from)
	params.SetBody(message)

	if _, err := s.api.CreateMessage(params); err != nil {
		logging.FromContext(ctx).WithError(err).Errorf("failed to send receipt SMS to %s via Twilio", phone)
		return fmt.Errorf("%w: twilio: %v", ErrDeliveryFailed, err)
	}
	return nil
}
