// Package payments charges mobile-money accounts. Only a sandbox gateway ships;
// a live provider plugs in behind Gateway.
package payments

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidPhone  = errors.New("invalid phone number")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrChargeFailed  = errors.New("payment was not completed")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type ChargeRequest struct {
	Phone       string
	Amount      int64
	Reference   string
	Description string
}

type ChargeResult struct {
	CheckoutID  string `json:"checkout_id"`
	ReceiptCode string `json:"receipt_code"`
	Status      Status `json:"status"`
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

var msisdnPattern = regexp.MustCompile(`^254(7|1)\d{8}$`)

// NormalizeMSISDN converts the local and international spellings of a Kenyan
// mobile number into 2547XXXXXXXX or 2541XXXXXXXX.
func NormalizeMSISDN(phone string) (string, error) {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	p = strings.TrimPrefix(p, "+")

	switch {
	case strings.HasPrefix(p, "254"):
	case strings.HasPrefix(p, "0") && len(p) == 10:
		p = "254" + p[1:]
	case len(p) == 9 && (p[0] == '7' || p[0] == '1'):
		p = "254" + p
	}

	if !msisdnPattern.MatchString(p) {
		return "", ErrInvalidPhone
	}
	return p, nil
}
