package http

import (
	"context"

	"github.com/google/uuid"

	"github.com/EstateEmpire/estateempire-backend/internal/transactions/domain"
)

type Service interface {
	Rent(ctx context.Context, userID uuid.UUID, in domain.RentInput) (*domain.Rental, error)
	Purchase(ctx context.Context, userID uuid.UUID, in domain.PurchaseInput) (*domain.Purchase, error)
	Rentals(ctx context.Context, userID uuid.UUID) ([]domain.Rental, error)
	Purchases(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error)
	AgentPayments(ctx context.Context, agentID uuid.UUID) ([]domain.Payment, error)
}

type Handler struct {
	txService Service
}

func New(txService Service) *Handler {
	return &Handler{txService: txService}
}

type rentRequest struct {
	PropertyID  int64  `json:"property_id" binding:"required,gt=0"`
	RentAmount  int64  `json:"rent_amount" binding:"gte=0"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

type purchaseRequest struct {
	PropertyID  int64  `json:"property_id" binding:"required,gt=0"`
	Amount      int64  `json:"amount" binding:"gte=0"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}
