package service

import (
	"context"
	"fmt"
	"time"

	"github.com/EstateEmpire/estateempire-backend/internal/auth/domain"
	"github.com/EstateEmpire/estateempire-backend/internal/logging"
)

type RateLimitRepository interface {
	IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Reset(ctx context.Context, key string) error
}

type RateLimits struct {
	EmailPerHour   int
	LoginPerMinute int
}

// RateLimiterService throttles verification emails and login attempts per address.
// A limit of zero disables that check.
type RateLimiterService struct {
	repo   RateLimitRepository
	limits RateLimits
}

func NewRateLimiterService(repo RateLimitRepository, limits RateLimits) *RateLimiterService {
	return &RateLimiterService{repo: repo, limits: limits}
}

func (s *RateLimiterService) CheckEmail(ctx context.Context, email string) error {
	return s.check(ctx, fmt.Sprintf("email:address:%s", email), s.limits.EmailPerHour, time.Hour)
}

func (s *RateLimiterService) CheckLogin(ctx context.Context, email string) error {
	return s.check(ctx, loginKey(email), s.limits.LoginPerMinute, time.Minute)
}

// ResetLogin forgets earlier failed attempts once the address has logged in.
func (s *RateLimiterService) ResetLogin(ctx context.Context, email string) error {
	if s == nil || s.repo == nil {
		return nil
	}
	return s.repo.Reset(ctx, loginKey(email))
}

func loginKey(email string) string { return fmt.Sprintf("login:address:%s", email) }

func (s *RateLimiterService) check(ctx context.Context, key string, limit int, window time.Duration) error {
	if s == nil || s.repo == nil || limit <= 0 {
		return nil
	}
	allowed, err := s.repo.IncrementAndCheck(ctx, key, limit, window)
	if err != nil {
		return err
	}
	if !allowed {
		logging.FromContext(ctx).Warnf("rate limit exceeded (key: %s)", key)
		return domain.ErrRateLimited
	}
	return nil
}
