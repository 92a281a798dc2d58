package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EstateEmpire/estateempire-backend/internal/api/http/apierr"
	"github.com/EstateEmpire/estateempire-backend/internal/auth"
	"github.com/EstateEmpire/estateempire-backend/internal/auth/domain"
)

func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "email, a password of at least 8 characters and an account type (agent or client) are required", err)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), domain.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		AccountType: domain.Role(req.AccountType),
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, signupResponse{User: user, VerificationRequired: true})
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "email and a numeric otp are required", err)
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true, "message": "Email verified. You can now log in."})
}

func (h *Handler) ResendCode(c *gin.Context) {
	var req resendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "a valid email is required", err)
		return
	}

	if err := h.authService.ResendCode(c.Request.Context(), req.Email); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "If the account exists and is unverified, a new code has been sent."})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "email and password are required", err)
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *Handler) Logout(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		apierr.Unauthorized(c, "authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		apierr.Internal(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		apierr.Unauthorized(c, "authentication required")
		return
	}

	user, err := h.authService.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// account deleted after the token was issued
			apierr.Unauthorized(c, "account no longer exists")
			return
		}
		apierr.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		apierr.BadRequest(c, err.Error(), nil)
	case errors.Is(err, domain.ErrEmailInUse):
		apierr.Respond(c, http.StatusConflict, apierr.CodeConflict, "an account with this email already exists", nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		apierr.Respond(c, http.StatusUnauthorized, apierr.CodeInvalidCredentials, "invalid email or password", nil)
	case errors.Is(err, domain.ErrEmailNotVerified):
		apierr.Respond(c, http.StatusForbidden, apierr.CodeEmailNotVerified, "verify your email before logging in", nil)
	case errors.Is(err, domain.ErrInvalidCode), errors.Is(err, domain.ErrCodeNotFound):
		apierr.Respond(c, http.StatusBadRequest, apierr.CodeInvalidCode, "the verification code is incorrect", nil)
	case errors.Is(err, domain.ErrCodeExpired):
		apierr.Respond(c, http.StatusGone, apierr.CodeCodeExpired, "the verification code has expired, request a new one", nil)
	case errors.Is(err, domain.ErrTooManyAttempts):
		apierr.Respond(c, http.StatusTooManyRequests, apierr.CodeTooManyAttempts, "too many incorrect attempts, request a new code", nil)
	case errors.Is(err, domain.ErrRateLimited):
		apierr.Respond(c, http.StatusTooManyRequests, apierr.CodeRateLimited, "too many requests, try again later", nil)
	default:
		apierr.Internal(c, err)
	}
}
