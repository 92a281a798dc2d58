package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/EstateEmpire/estateempire-backend/internal/auth/domain"
	"github.com/EstateEmpire/estateempire-backend/internal/events"
	"github.com/EstateEmpire/estateempire-backend/internal/logging"
	"github.com/EstateEmpire/estateempire-backend/internal/notify"
)

const (
	MinPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

type CodeRepository interface {
	Create(ctx context.Context, code *domain.VerificationCode) error
	Latest(ctx context.Context, email string) (*domain.VerificationCode, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type RevocationRepository interface {
	Revoke(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Config struct {
	CodeTTL         time.Duration
	CodeLength      int
	MaxCodeAttempts int
	BcryptCost      int
}

type AuthService struct {
	users       UserRepository
	codes       CodeRepository
	revocations RevocationRepository
	tokens      *TokenService
	limiter     *RateLimiterService
	mailer      notify.EmailSender
	publisher   events.Publisher
	cfg         Config
	validate    *validator.Validate
	now         func() time.Time
	compareHash func(hash, password []byte) error
	// dummyHash is compared on unknown emails so they cost as much as a wrong password.
	dummyHash func() []byte
}

type Deps struct {
	Users       UserRepository
	Codes       CodeRepository
	Revocations RevocationRepository
	Tokens      *TokenService
	Limiter     *RateLimiterService
	Mailer      notify.EmailSender
	Publisher   events.Publisher
}

func NewAuthService(d Deps, cfg Config) *AuthService {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 10 * time.Minute
	}
	if cfg.MaxCodeAttempts <= 0 {
		cfg.MaxCodeAttempts = 5
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if d.Mailer == nil {
		d.Mailer = notify.LogEmailSender{}
	}
	if d.Publisher == nil {
		d.Publisher = events.NewLogPublisher()
	}
	return &AuthService{
		users:       d.Users,
		codes:       d.Codes,
		revocations: d.Revocations,
		tokens:      d.Tokens,
		limiter:     d.Limiter,
		mailer:      d.Mailer,
		publisher:   d.Publisher,
		cfg:         cfg,
		validate:    validator.New(),
		now:         time.Now,
		compareHash: bcrypt.CompareHashAndPassword,
		dummyHash: sync.OnceValue(func() []byte {
			h, _ := bcrypt.GenerateFromPassword([]byte("estateempire-unknown-account"), cfg.BcryptCost)
			return h
		}),
	}
}

// Signup registers an unverified account and emails it a verification code.
func (s *AuthService) Signup(ctx context.Context, in domain.SignupInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if err := s.validateCredentials(email, in.Password); err != nil {
		return nil, err
	}
	if !in.AccountType.Valid() {
		return nil, fmt.Errorf("%w: account type must be agent or client", domain.ErrInvalidInput)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailInUse
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if err := s.limiter.CheckEmail(ctx, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.AccountType,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.issueCode(ctx, user); err != nil {
		// the account exists; the user can ask for another code
		logging.FromContext(ctx).WithError(err).WithField("email", email).Warn("verification code not delivered")
	}

	events.PublishBestEffort(ctx, s.publisher, events.TypeUserRegistered, map[string]any{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidCode
	}
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}

	rec, err := s.codes.Latest(ctx, email)
	if errors.Is(err, domain.ErrCodeNotFound) {
		return domain.ErrInvalidCode
	}
	if err != nil {
		return err
	}

	if rec.Attempts >= s.cfg.MaxCodeAttempts {
		return domain.ErrTooManyAttempts
	}
	if rec.Expired(s.now()) {
		return domain.ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		if err := s.codes.IncrementAttempts(ctx, rec.ID); err != nil {
			return err
		}
		return domain.ErrInvalidCode
	}

	if err := s.codes.MarkVerified(ctx, rec.ID); err != nil {
		return err
	}
	return s.users.MarkEmailVerified(ctx, user.ID)
}

// ResendCode issues a new code. Unknown and already verified addresses succeed silently.
func (s *AuthService) ResendCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}

	if err := s.limiter.CheckEmail(ctx, email); err != nil {
		return err
	}
	return s.issueCode(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)
	if err := s.validateCredentials(email, password); err != nil {
		return nil, err
	}

	if err := s.limiter.CheckLogin(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		_ = s.compareHash(s.dummyHash(), []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.compareHash([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, domain.ErrEmailNotVerified
	}
	if err := s.limiter.ResetLogin(ctx, email); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("failed to reset login attempts")
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("failed to record last login")
	}

	return &domain.Session{
		Token:     token,
		Email:     user.Email,
		Role:      user.Role,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *domain.Claims) error {
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.TokenID, claims.UserID.String(), ttl)
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}
	return claims, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) CleanupExpiredCodes(ctx context.Context) (int64, error) {
	return s.codes.DeleteExpired(ctx, s.now())
}

func (s *AuthService) issueCode(ctx context.Context, user *domain.User) error {
	code, err := generateVerificationCode(s.cfg.CodeLength)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	rec := &domain.VerificationCode{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		ExpiresAt: s.now().Add(s.cfg.CodeTTL),
	}
	if err := s.codes.Create(ctx, rec); err != nil {
		return err
	}
	return s.mailer.SendVerificationCode(ctx, user.Email, code)
}

func (s *AuthService) validateCredentials(email, password string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, MinPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d characters", domain.ErrInvalidInput, maxPasswordLength)
	}
	return nil
}
