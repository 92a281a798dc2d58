package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAgent  Role = "agent"
	RoleClient Role = "client"
)

func (r Role) Valid() bool {
	return r == RoleAgent || r == RoleClient
}

// User is an account holder. Agents list properties, clients rent and buy them.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Role          Role       `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

type VerificationCode struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Email      string
	Code       string
	ExpiresAt  time.Time
	Attempts   int
	VerifiedAt *time.Time
	CreatedAt  time.Time
}

func (v *VerificationCode) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// Claims is what an authenticated request knows about its caller.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	TokenID   string    `json:"jti"`
	ExpiresAt time.Time `json:"exp"`
}

// Session is returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SignupInput struct {
	Email       string
	Password    string
	AccountType Role
}
