package client

import (
	"strconv"
	"time"
)

type Role string

const (
	RoleAgent  Role = "agent"
	RoleClient Role = "client"
)

type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Role          Role       `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

type Property struct {
	ID             int64     `json:"id"`
	AgentID        string    `json:"agent_id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	UnitTypeID     *int      `json:"unit_type_id,omitempty"`
	ListingType    string    `json:"listing_type"`
	Price          int64     `json:"price"`
	Location       string    `json:"location"`
	Description    string    `json:"description"`
	Image          string    `json:"image"`
	Bedrooms       int       `json:"bedrooms"`
	Bathrooms      int       `json:"bathrooms"`
	Units          *int      `json:"units,omitempty"`
	AvailableUnits *int      `json:"available_units,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type UnitType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Listing is the body of CreateListing.
type Listing struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	UnitTypeID  *int   `json:"unit_type_id,omitempty"`
	Price       int64  `json:"price"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Bedrooms    int    `json:"bedrooms"`
	Bathrooms   int    `json:"bathrooms"`
	Units       *int   `json:"units,omitempty"`
}

// ListOptions filters public listings. Zero values are omitted.
type ListOptions struct {
	Location string
	MinPrice int64
	MaxPrice int64
	Bedrooms int
	Limit    int
	Offset   int
}

type Rental struct {
	ID             string    `json:"id"`
	PropertyID     int64     `json:"property_id"`
	Property       *Property `json:"property,omitempty"`
	Amount         int64     `json:"amount"`
	PhoneNumber    string    `json:"phone_number"`
	ReceiptCode    string    `json:"receipt_code"`
	Status         string    `json:"status"`
	RentedAt       time.Time `json:"rented_at"`
	NextPaymentDue time.Time `json:"next_payment_due"`
	DaysLeft       int       `json:"days_left"`
	RentDue        bool      `json:"rent_due"`
}

// Countdown renders the rent countdown the way the rentals page shows it.
func (r Rental) Countdown() string {
	if r.RentDue {
		return "Rent due"
	}
	if r.DaysLeft == 1 {
		return "1 day left"
	}
	return strconv.Itoa(r.DaysLeft) + " days left"
}

type Purchase struct {
	ID          string    `json:"id"`
	PropertyID  int64     `json:"property_id"`
	Property    *Property `json:"property,omitempty"`
	Amount      int64     `json:"amount"`
	PhoneNumber string    `json:"phone_number"`
	ReceiptCode string    `json:"receipt_code"`
	Status      string    `json:"status"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type Payment struct {
	ID           string    `json:"id"`
	ListingType  string    `json:"listing_type"`
	PropertyID   int64     `json:"property_id"`
	PropertyName string    `json:"property_name"`
	Amount       int64     `json:"amount"`
	ReceiptCode  string    `json:"receipt_code"`
	Status       string    `json:"status"`
	PaidAt       time.Time `json:"paid_at"`
	Month        string    `json:"month,omitempty"`
	PayerEmail   string    `json:"payer_email"`
}
