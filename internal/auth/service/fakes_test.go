package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EstateEmpire/estateempire-backend/internal/auth/domain"
)

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]*domain.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrEmailInUse
	}
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	cp := *u
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUsers) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	return f.update(id, func(u *domain.User) { u.EmailVerified = true })
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	return f.update(id, func(u *domain.User) {
		now := time.Now()
		u.LastLoginAt = &now
	})
}

func (f *fakeUsers) update(id uuid.UUID, fn func(*domain.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			fn(u)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type fakeCodes struct {
	mu    sync.Mutex
	codes []*domain.VerificationCode
}

func (f *fakeCodes) Create(_ context.Context, c *domain.VerificationCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	cp := *c
	f.codes = append(f.codes, &cp)
	return nil
}

func (f *fakeCodes) Latest(_ context.Context, email string) (*domain.VerificationCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.codes) - 1; i >= 0; i-- {
		if f.codes[i].Email == email {
			cp := *f.codes[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrCodeNotFound
}

func (f *fakeCodes) IncrementAttempts(_ context.Context, id uuid.UUID) error {
	return f.update(id, func(c *domain.VerificationCode) { c.Attempts++ })
}

func (f *fakeCodes) MarkVerified(_ context.Context, id uuid.UUID) error {
	return f.update(id, func(c *domain.VerificationCode) {
		now := time.Now()
		c.VerifiedAt = &now
	})
}

func (f *fakeCodes) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []*domain.VerificationCode
	var n int64
	for _, c := range f.codes {
		if c.VerifiedAt == nil && c.ExpiresAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	f.codes = kept
	return n, nil
}

func (f *fakeCodes) update(id uuid.UUID, fn func(*domain.VerificationCode)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.ID == id {
			fn(c)
			return nil
		}
	}
	return domain.ErrCodeNotFound
}

type fakeMailer struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (f *fakeMailer) SendVerificationCode(_ context.Context, to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent[to] = code
	return nil
}

func (f *fakeMailer) last(to string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[to]
}
