package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/EstateEmpire/estateempire-backend/internal/auth/domain"
	"github.com/EstateEmpire/estateempire-backend/internal/storage/postgres"
)

type CodeRepository struct {
	db postgres.DB
}

func NewCodeRepository(db postgres.DB) *CodeRepository {
	return &CodeRepository{db: db}
}

// Create stores a fresh code and discards any unverified codes previously issued to the email.
func (r *CodeRepository) Create(ctx context.Context, code *domain.VerificationCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}

	if _, err := r.db.Exec(ctx,
		`DELETE FROM verification_codes WHERE email = $1 AND verified_at IS NULL`, code.Email,
	); err != nil {
		return fmt.Errorf("discard old codes: %w", err)
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO verification_codes (id, user_id, email, code, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, code.ID, code.UserID, code.Email, code.Code, code.ExpiresAt).Scan(&code.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert verification code: %w", err)
	}
	return nil
}

// Latest returns the most recently issued code for the email.
func (r *CodeRepository) Latest(ctx context.Context, email string) (*domain.VerificationCode, error) {
	var c domain.VerificationCode
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, email, code, expires_at, attempts, verified_at, created_at
		FROM verification_codes
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, email).Scan(&c.ID, &c.UserID, &c.Email, &c.Code, &c.ExpiresAt, &c.Attempts, &c.VerifiedAt, &c.CreatedAt)
	if postgres.IsNoRows(err) {
		return nil, domain.ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get verification code: %w", err)
	}
	return &c, nil
}

func (r *CodeRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE verification_codes SET attempts = attempts + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment attempts: %w", err)
	}
	return nil
}

func (r *CodeRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE verification_codes SET verified_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark code verified: %w", err)
	}
	return nil
}

// DeleteExpired removes unverified codes that expired before the cutoff.
func (r *CodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM verification_codes WHERE expires_at < $1 AND verified_at IS NULL`, before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	return tag.RowsAffected(), nil
}
