package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ListingType string

const (
	ListingRent ListingType = "rent"
	ListingSale ListingType = "sale"
)

func (t ListingType) Valid() bool { return t == ListingRent || t == ListingSale }

type Status string

const (
	StatusAvailable Status = "available"
	StatusRented    Status = "rented"
	StatusSold      Status = "sold"
)

// Property is a listing. Prices are whole Kenyan shillings.
type Property struct {
	ID             int64       `json:"id"`
	AgentID        uuid.UUID   `json:"agent_id"`
	Name           string      `json:"name"`
	Type           string      `json:"type"`
	UnitTypeID     *int        `json:"unit_type_id,omitempty"`
	ListingType    ListingType `json:"listing_type"`
	Price          int64       `json:"price"`
	Location       string      `json:"location"`
	Description    string      `json:"description"`
	Image          string      `json:"image"`
	Bedrooms       int         `json:"bedrooms"`
	Bathrooms      int         `json:"bathrooms"`
	Units          *int        `json:"units,omitempty"`
	AvailableUnits *int        `json:"available_units,omitempty"`
	Status         Status      `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type UnitType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CreateInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Type        string `json:"type" validate:"max=100"`
	UnitTypeID  *int   `json:"unit_type_id"`
	Price       int64  `json:"price" validate:"gt=0"`
	Location    string `json:"location" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Image       string `json:"image" validate:"omitempty,url"`
	Bedrooms    int    `json:"bedrooms" validate:"gte=0,lte=50"`
	Bathrooms   int    `json:"bathrooms" validate:"gte=0,lte=50"`
	Units       *int   `json:"units" validate:"omitempty,gte=1"`
}

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type ListFilter struct {
	ListingType ListingType
	Location    string
	MinPrice    int64
	MaxPrice    int64
	Bedrooms    int
	Status      Status
	AgentID     *uuid.UUID
	Limit       int
	Offset      int
}

// Normalize clamps paging and trims text fields.
func (f ListFilter) Normalize() ListFilter {
	f.Location = strings.TrimSpace(f.Location)
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// CacheKey identifies a normalized public listing query.
func (f ListFilter) CacheKey() string {
	return fmt.Sprintf("%s:%s:%s:%d:%d:%d:%d:%d",
		f.ListingType, f.Status, strings.ToLower(f.Location), f.MinPrice, f.MaxPrice, f.Bedrooms, f.Limit, f.Offset)
}
