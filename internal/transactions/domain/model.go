package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/EstateEmpire/estateempire-backend/internal/payments"
	propdomain "github.com/EstateEmpire/estateempire-backend/internal/properties/domain"
)

const DefaultRentPeriod = 30 * 24 * time.Hour

// Rental is an immutable record of a completed rent payment.
type Rental struct {
	ID             uuid.UUID            `json:"id"`
	UserID         uuid.UUID            `json:"user_id"`
	PropertyID     int64                `json:"property_id"`
	Property       *propdomain.Property `json:"property,omitempty"`
	Amount         int64                `json:"amount"`
	PhoneNumber    string               `json:"phone_number"`
	CheckoutID     string               `json:"checkout_id"`
	ReceiptCode    string               `json:"receipt_code"`
	Status         payments.Status      `json:"status"`
	RentedAt       time.Time            `json:"rented_at"`
	NextPaymentDue time.Time            `json:"next_payment_due"`
	CreatedAt      time.Time            `json:"created_at"`
	DaysLeft       int                  `json:"days_left"`
	RentDue        bool                 `json:"rent_due"`
}

// WithCountdown fills DaysLeft and RentDue relative to now. DaysLeft counts
// whole days and never goes negative.
func (r Rental) WithCountdown(now time.Time) Rental {
	left := r.NextPaymentDue.Sub(now)
	r.RentDue = !now.Before(r.NextPaymentDue)
	r.DaysLeft = 0
	if left > 0 {
		r.DaysLeft = int(left / (24 * time.Hour))
	}
	return r
}

type Purchase struct {
	ID          uuid.UUID            `json:"id"`
	UserID      uuid.UUID            `json:"user_id"`
	PropertyID  int64                `json:"property_id"`
	Property    *propdomain.Property `json:"property,omitempty"`
	Amount      int64                `json:"amount"`
	PhoneNumber string               `json:"phone_number"`
	CheckoutID  string               `json:"checkout_id"`
	ReceiptCode string               `json:"receipt_code"`
	Status      payments.Status      `json:"status"`
	PurchasedAt time.Time            `json:"purchased_at"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Payment is one row of an agent's incoming payments, from either a rental or a purchase.
type Payment struct {
	ID           uuid.UUID              `json:"id"`
	ListingType  propdomain.ListingType `json:"listing_type"`
	PropertyID   int64                  `json:"property_id"`
	PropertyName string                 `json:"property_name"`
	Amount       int64                  `json:"amount"`
	ReceiptCode  string                 `json:"receipt_code"`
	Status       payments.Status        `json:"status"`
	PaidAt       time.Time              `json:"paid_at"`
	Month        string                 `json:"month,omitempty"`
	PayerEmail   string                 `json:"payer_email"`
}

type RentInput struct {
	PropertyID  int64  `json:"property_id"`
	RentAmount  int64  `json:"rent_amount"`
	PhoneNumber string `json:"phone_number"`
}

type PurchaseInput struct {
	PropertyID  int64  `json:"property_id"`
	Amount      int64  `json:"amount"`
	PhoneNumber string `json:"phone_number"`
}
