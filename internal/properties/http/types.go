package http

import (
	"context"

	"github.com/google/uuid"

	"github.com/EstateEmpire/estateempire-backend/internal/properties/domain"
)

type Service interface {
	ListForRent(ctx context.Context, f domain.ListFilter) ([]domain.Property, error)
	ListForSale(ctx context.Context, f domain.ListFilter) ([]domain.Property, error)
	Get(ctx context.Context, id int64) (*domain.Property, error)
	GetOfType(ctx context.Context, id int64, t domain.ListingType) (*domain.Property, error)
	Create(ctx context.Context, agentID uuid.UUID, t domain.ListingType, in domain.CreateInput) (*domain.Property, error)
	Delete(ctx context.Context, agentID uuid.UUID, id int64) error
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]domain.Property, error)
	UnitTypes(ctx context.Context) ([]domain.UnitType, error)
}

type Handler struct {
	propertyService Service
}

func New(propertyService Service) *Handler {
	return &Handler{propertyService: propertyService}
}

type listQuery struct {
	Location string `form:"location" binding:"max=200"`
	MinPrice int64  `form:"min_price" binding:"gte=0"`
	MaxPrice int64  `form:"max_price" binding:"gte=0"`
	Bedrooms int    `form:"bedrooms" binding:"gte=0"`
	Limit    int    `form:"limit" binding:"gte=0"`
	Offset   int    `form:"offset" binding:"gte=0"`
}

func (q listQuery) filter() domain.ListFilter {
	return domain.ListFilter{
		Location: q.Location,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Bedrooms: q.Bedrooms,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
}

type unitTypesResponse struct {
	UnitTypes []domain.UnitType `json:"unit_types"`
}
