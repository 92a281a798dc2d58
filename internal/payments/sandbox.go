package payments

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/EstateEmpire/estateempire-backend/internal/logging"
)

const receiptAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ0123456789"

// SandboxGateway approves every well-formed charge without touching the network.
// Numbers listed in Decline are refused, for exercising failure paths.
type SandboxGateway struct {
	Shortcode string
	Decline   map[string]bool
}

func NewSandboxGateway(shortcode string) *SandboxGateway {
	return &SandboxGateway{Shortcode: shortcode, Decline: map[string]bool{}}
}

func (g *SandboxGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	phone, err := NormalizeMSISDN(req.Phone)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	log := logging.FromContext(ctx).WithFields(logrus.Fields{
		"shortcode": g.Shortcode,
		"reference": req.Reference,
		"amount":    req.Amount,
	})

	if g.Decline[phone] {
		log.Warn("sandbox charge declined")
		return &ChargeResult{CheckoutID: "ws_CO_" + uuid.NewString(), Status: StatusFailed}, ErrChargeFailed
	}

	receipt, err := newReceiptCode()
	if err != nil {
		return nil, fmt.Errorf("generate receipt: %w", err)
	}

	log.WithField("receipt", receipt).Info("sandbox charge completed")
	return &ChargeResult{
		CheckoutID:  "ws_CO_" + uuid.NewString(),
		ReceiptCode: receipt,
		Status:      StatusCompleted,
	}, nil
}

func newReceiptCode() (string, error) {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, v := range b {
		sb.WriteByte(receiptAlphabet[int(v)%len(receiptAlphabet)])
	}
	return sb.String(), nil
}
