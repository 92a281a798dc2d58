package http

import (
	"context"

	"github.com/google/uuid"

	"github.com/EstateEmpire/estateempire-backend/internal/auth/domain"
)

type Service interface {
	Signup(ctx context.Context, in domain.SignupInput) (*domain.User, error)
	VerifyEmail(ctx context.Context, email, code string) error
	ResendCode(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context, claims *domain.Claims) error
	Me(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type Handler struct {
	authService Service
}

func New(authService Service) *Handler {
	return &Handler{
		authService: authService,
	}
}

type signupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	AccountType string `json:"account_type" binding:"required,oneof=agent client"`
}

type signupResponse struct {
	User                 *domain.User `json:"user"`
	VerificationRequired bool         `json:"verification_required"`
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,numeric"`
}

type resendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
