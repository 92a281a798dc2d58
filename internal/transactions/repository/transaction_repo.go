package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/EstateEmpire/estateempire-backend/internal/payments"
	propdomain "github.com/EstateEmpire/estateempire-backend/internal/properties/domain"
	proprepo "github.com/EstateEmpire/estateempire-backend/internal/properties/repository"
	"github.com/EstateEmpire/estateempire-backend/internal/storage/postgres"
	"github.com/EstateEmpire/estateempire-backend/internal/transactions/domain"
)

const rentalColumns = `r.id, r.user_id, r.property_id, r.amount, r.phone_number, r.checkout_id,
	r.receipt_code, r.status, r.rented_at, r.next_payment_due, r.created_at`

const purchaseColumns = `pu.id, pu.user_id, pu.property_id, pu.amount, pu.phone_number, pu.checkout_id,
	pu.receipt_code, pu.status, pu.purchased_at, pu.created_at`

type TransactionRepository struct {
	db postgres.TxBeginner
}

func NewTransactionRepository(db postgres.TxBeginner) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// RecordRental takes one unit of the listing and inserts the rental in a single
// transaction. The listing becomes rented when its last unit is taken.
func (r *TransactionRepository) RecordRental(ctx context.Context, rental *domain.Rental) error {
	return postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		p, err := lockProperty(ctx, tx, rental.PropertyID)
		if err != nil {
			return err
		}
		if p.ListingType != propdomain.ListingRent {
			return domain.ErrWrongListingType
		}
		if p.Status != propdomain.StatusAvailable || p.AvailableUnits == nil || *p.AvailableUnits <= 0 {
			return domain.ErrPropertyUnavailable
		}

		remaining := *p.AvailableUnits - 1
		status := propdomain.StatusAvailable
		if remaining == 0 {
			status = propdomain.StatusRented
		}
		if err := tx.QueryRow(ctx, `
			UPDATE properties SET available_units = $2, status = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`, p.ID, remaining, string(status)).Scan(&p.UpdatedAt); err != nil {
			return fmt.Errorf("update property: %w", err)
		}
		p.AvailableUnits, p.Status = &remaining, status

		err = tx.QueryRow(ctx, `
			INSERT INTO rentals (id, user_id, property_id, amount, phone_number, checkout_id,
				receipt_code, status, rented_at, next_payment_due)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at
		`,
			rental.ID, rental.UserID, rental.PropertyID, rental.Amount, rental.PhoneNumber, rental.CheckoutID,
			rental.ReceiptCode, string(rental.Status), rental.RentedAt, rental.NextPaymentDue,
		).Scan(&rental.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert rental: %w", err)
		}

		rental.Property = p
		return nil
	})
}

// RecordPurchase marks the listing sold and inserts the purchase atomically.
func (r *TransactionRepository) RecordPurchase(ctx context.Context, purchase *domain.Purchase) error {
	return postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		p, err := lockProperty(ctx, tx, purchase.PropertyID)
		if err != nil {
			return err
		}
		if p.ListingType != propdomain.ListingSale {
			return domain.ErrWrongListingType
		}
		if p.Status != propdomain.StatusAvailable {
			return domain.ErrPropertyUnavailable
		}

		if err := tx.QueryRow(ctx, `
			UPDATE properties SET status = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`, p.ID, string(propdomain.StatusSold)).Scan(&p.UpdatedAt); err != nil {
			return fmt.Errorf("update property: %w", err)
		}
		p.Status = propdomain.StatusSold

		err = tx.QueryRow(ctx, `
			INSERT INTO purchases (id, user_id, property_id, amount, phone_number, checkout_id,
				receipt_code, status, purchased_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at
		`,
			purchase.ID, purchase.UserID, purchase.PropertyID, purchase.Amount, purchase.PhoneNumber,
			purchase.CheckoutID, purchase.ReceiptCode, string(purchase.Status), purchase.PurchasedAt,
		).Scan(&purchase.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		purchase.Property = p
		return nil
	})
}

func (r *TransactionRepository) RentalsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Rental, error) {
	return r.queryRentals(ctx, `
		SELECT `+proprepo.PropertyColumns+`, `+rentalColumns+`
		FROM rentals r JOIN properties p ON p.id = r.property_id
		WHERE r.user_id = $1
		ORDER BY r.rented_at DESC
	`, userID)
}

// RentalsDueBetween returns completed rentals whose next payment falls in (from, to].
func (r *TransactionRepository) RentalsDueBetween(ctx context.Context, from, to time.Time) ([]domain.Rental, error) {
	return r.queryRentals(ctx, `
		SELECT `+proprepo.PropertyColumns+`, `+rentalColumns+`
		FROM rentals r JOIN properties p ON p.id = r.property_id
		WHERE r.status = 'completed' AND r.next_payment_due > $1 AND r.next_payment_due <= $2
		ORDER BY r.next_payment_due
	`, from, to)
}

func (r *TransactionRepository) PurchasesByUser(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+proprepo.PropertyColumns+`, `+purchaseColumns+`
		FROM purchases pu JOIN properties p ON p.id = pu.property_id
		WHERE pu.user_id = $1
		ORDER BY pu.purchased_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Purchase, 0)
	for rows.Next() {
		var (
			pu     domain.Purchase
			status string
		)
		p, err := proprepo.ScanPropertyWith(rows,
			&pu.ID, &pu.UserID, &pu.PropertyID, &pu.Amount, &pu.PhoneNumber, &pu.CheckoutID,
			&pu.ReceiptCode, &status, &pu.PurchasedAt, &pu.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		pu.Status = payments.Status(status)
		pu.Property = p
		out = append(out, pu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return out, nil
}

// PaymentsByAgent lists rent and sale payments made on the agent's listings, newest first.
func (r *TransactionRepository) PaymentsByAgent(ctx context.Context, agentID uuid.UUID) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, p.listing_type, p.id, p.name, r.amount, r.receipt_code, r.status, r.rented_at, u.email
		FROM rentals r
		JOIN properties p ON p.id = r.property_id
		JOIN users u ON u.id = r.user_id
		WHERE p.agent_id = $1
		UNION ALL
		SELECT pu.id, p.listing_type, p.id, p.name, pu.amount, pu.receipt_code, pu.status, pu.purchased_at, u.email
		FROM purchases pu
		JOIN properties p ON p.id = pu.property_id
		JOIN users u ON u.id = pu.user_id
		WHERE p.agent_id = $1
		ORDER BY 8 DESC
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list agent payments: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Payment, error) {
		var (
			pay         domain.Payment
			listingType string
			status      string
		)
		err := row.Scan(&pay.ID, &listingType, &pay.PropertyID, &pay.PropertyName, &pay.Amount,
			&pay.ReceiptCode, &status, &pay.PaidAt, &pay.PayerEmail)
		pay.ListingType = propdomain.ListingType(listingType)
		pay.Status = payments.Status(status)
		if pay.ListingType == propdomain.ListingRent {
			pay.Month = pay.PaidAt.Format("January 2006")
		}
		return pay, err
	})
	if err != nil {
		return nil, fmt.Errorf("list agent payments: %w", err)
	}
	if out == nil {
		out = []domain.Payment{}
	}
	return out, nil
}

func (r *TransactionRepository) queryRentals(ctx context.Context, query string, args ...any) ([]domain.Rental, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Rental, 0)
	for rows.Next() {
		var (
			rn     domain.Rental
			status string
		)
		p, err := proprepo.ScanPropertyWith(rows,
			&rn.ID, &rn.UserID, &rn.PropertyID, &rn.Amount, &rn.PhoneNumber, &rn.CheckoutID,
			&rn.ReceiptCode, &status, &rn.RentedAt, &rn.NextPaymentDue, &rn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan rental: %w", err)
		}
		rn.Status = payments.Status(status)
		rn.Property = p
		out = append(out, rn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	return out, nil
}

func lockProperty(ctx context.Context, tx pgx.Tx, id int64) (*propdomain.Property, error) {
	row := tx.QueryRow(ctx, `SELECT `+proprepo.PropertyColumns+` FROM properties p WHERE p.id = $1 FOR UPDATE`, id)
	p, err := proprepo.ScanProperty(row)
	if postgres.IsNoRows(err) {
		return nil, propdomain.ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock property: %w", err)
	}
	return p, nil
}
