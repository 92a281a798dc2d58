package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/EstateEmpire/estateempire-backend/internal/events"
	"github.com/EstateEmpire/estateempire-backend/internal/logging"
	"github.com/EstateEmpire/estateempire-backend/internal/notify"
	"github.com/EstateEmpire/estateempire-backend/internal/payments"
	propdomain "github.com/EstateEmpire/estateempire-backend/internal/properties/domain"
	"github.com/EstateEmpire/estateempire-backend/internal/transactions/domain"
)

type Repository interface {
	RecordRental(ctx context.Context, r *domain.Rental) error
	RecordPurchase(ctx context.Context, p *domain.Purchase) error
	RentalsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Rental, error)
	PurchasesByUser(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error)
	PaymentsByAgent(ctx context.Context, agentID uuid.UUID) ([]domain.Payment, error)
	RentalsDueBetween(ctx context.Context, from, to time.Time) ([]domain.Rental, error)
}

// Listings is the slice of the property service that transactions depend on.
type Listings interface {
	Get(ctx context.Context, id int64) (*propdomain.Property, error)
	Invalidate(ctx context.Context) error
}

type Deps struct {
	Repo      Repository
	Listings  Listings
	Gateway   payments.Gateway
	SMS       notify.SMSSender
	Publisher events.Publisher
}

type TransactionService struct {
	repo       Repository
	listings   Listings
	gateway    payments.Gateway
	sms        notify.SMSSender
	publisher  events.Publisher
	rentPeriod time.Duration
	now        func() time.Time
}

// NewTransactionService falls back to log-only SMS and events when those deps are nil.
func NewTransactionService(d Deps, rentPeriod time.Duration) *TransactionService {
	if rentPeriod <= 0 {
		rentPeriod = domain.DefaultRentPeriod
	}
	if d.SMS == nil {
		d.SMS = notify.LogSMSSender{}
	}
	if d.Publisher == nil {
		d.Publisher = events.NewLogPublisher()
	}
	return &TransactionService{
		repo:       d.Repo,
		listings:   d.Listings,
		gateway:    d.Gateway,
		sms:        d.SMS,
		publisher:  d.Publisher,
		rentPeriod: rentPeriod,
		now:        time.Now,
	}
}

// Rent charges the client for one unit of a rent listing and records the rental.
func (s *TransactionService) Rent(ctx context.Context, userID uuid.UUID, in domain.RentInput) (*domain.Rental, error) {
	phone, err := payments.NormalizeMSISDN(in.PhoneNumber)
	if err != nil {
		return nil, err
	}

	p, err := s.listings.Get(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	if p.ListingType != propdomain.ListingRent {
		return nil, domain.ErrWrongListingType
	}
	if p.Status != propdomain.StatusAvailable || (p.AvailableUnits != nil && *p.AvailableUnits <= 0) {
		return nil, domain.ErrPropertyUnavailable
	}
	amount, err := resolveAmount(in.RentAmount, p.Price)
	if err != nil {
		return nil, err
	}

	res, err := s.charge(ctx, phone, amount, fmt.Sprintf("RENT-%d", p.ID), "Rent for "+p.Name)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rental := &domain.Rental{
		ID:             uuid.New(),
		UserID:         userID,
		PropertyID:     p.ID,
		Amount:         amount,
		PhoneNumber:    phone,
		CheckoutID:     res.CheckoutID,
		ReceiptCode:    res.ReceiptCode,
		Status:         payments.StatusCompleted,
		RentedAt:       now,
		NextPaymentDue: now.Add(s.rentPeriod),
	}
	if err := s.repo.RecordRental(ctx, rental); err != nil {
		s.logUnrecorded(ctx, err, res, p.ID, amount)
		return nil, err
	}

	s.afterCommit(ctx, events.TypeRentalCreated, phone, map[string]any{
		"rental_id":   rental.ID,
		"property_id": p.ID,
		"user_id":     userID,
		"amount":      amount,
		"receipt":     res.ReceiptCode,
	}, fmt.Sprintf("EstateEmpire: %s confirmed. KES %d paid for %s. Next rent due %s.",
		res.ReceiptCode, amount, p.Name, rental.NextPaymentDue.Format("02 Jan 2006")))

	out := rental.WithCountdown(now)
	return &out, nil
}

// Purchase charges the client for a sale listing and marks it sold.
func (s *TransactionService) Purchase(ctx context.Context, userID uuid.UUID, in domain.PurchaseInput) (*domain.Purchase, error) {
	phone, err := payments.NormalizeMSISDN(in.PhoneNumber)
	if err != nil {
		return nil, err
	}

	p, err := s.listings.Get(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	if p.ListingType != propdomain.ListingSale {
		return nil, domain.ErrWrongListingType
	}
	if p.Status != propdomain.StatusAvailable {
		return nil, domain.ErrPropertyUnavailable
	}
	amount, err := resolveAmount(in.Amount, p.Price)
	if err != nil {
		return nil, err
	}

	res, err := s.charge(ctx, phone, amount, fmt.Sprintf("SALE-%d", p.ID), "Purchase of "+p.Name)
	if err != nil {
		return nil, err
	}

	purchase := &domain.Purchase{
		ID:          uuid.New(),
		UserID:      userID,
		PropertyID:  p.ID,
		Amount:      amount,
		PhoneNumber: phone,
		CheckoutID:  res.CheckoutID,
		ReceiptCode: res.ReceiptCode,
		Status:      payments.StatusCompleted,
		PurchasedAt: s.now().UTC(),
	}
	if err := s.repo.RecordPurchase(ctx, purchase); err != nil {
		s.logUnrecorded(ctx, err, res, p.ID, amount)
		return nil, err
	}

	s.afterCommit(ctx, events.TypePurchaseCreated, phone, map[string]any{
		"purchase_id": purchase.ID,
		"property_id": p.ID,
		"user_id":     userID,
		"amount":      amount,
		"receipt":     res.ReceiptCode,
	}, fmt.Sprintf("EstateEmpire: %s confirmed. KES %d paid for %s.", res.ReceiptCode, amount, p.Name))

	return purchase, nil
}

// Rentals returns the caller's rentals, newest first, with the rent countdown filled in.
func (s *TransactionService) Rentals(ctx context.Context, userID uuid.UUID) ([]domain.Rental, error) {
	rentals, err := s.repo.RentalsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]domain.Rental, 0, len(rentals))
	for _, r := range rentals {
		out = append(out, r.WithCountdown(now))
	}
	return out, nil
}

func (s *TransactionService) Purchases(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error) {
	purchases, err := s.repo.PurchasesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if purchases == nil {
		purchases = []domain.Purchase{}
	}
	return purchases, nil
}

func (s *TransactionService) AgentPayments(ctx context.Context, agentID uuid.UUID) ([]domain.Payment, error) {
	pays, err := s.repo.PaymentsByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if pays == nil {
		pays = []domain.Payment{}
	}
	return pays, nil
}

// SweepRentDue announces rentals whose next payment fell due in the day before now.
// It is meant to run once a day.
func (s *TransactionService) SweepRentDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.RentalsDueBetween(ctx, now.Add(-24*time.Hour), now)
	if err != nil {
		return 0, err
	}

	log := logging.FromContext(ctx)
	for _, r := range due {
		log.WithFields(logrus.Fields{
			"rental_id":   r.ID,
			"property_id": r.PropertyID,
			"due":         r.NextPaymentDue,
		}).Info("rent due")
		events.PublishBestEffort(ctx, s.publisher, events.TypeRentalDue, map[string]any{
			"rental_id":        r.ID,
			"user_id":          r.UserID,
			"property_id":      r.PropertyID,
			"amount":           r.Amount,
			"next_payment_due": r.NextPaymentDue,
		})
	}
	return len(due), nil
}

func (s *TransactionService) charge(ctx context.Context, phone string, amount int64, ref, desc string) (*payments.ChargeResult, error) {
	res, err := s.gateway.Charge(ctx, payments.ChargeRequest{
		Phone:       phone,
		Amount:      amount,
		Reference:   ref,
		Description: desc,
	})
	if err != nil {
		if errors.Is(err, payments.ErrInvalidPhone) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrPaymentFailed, err)
	}
	if res == nil || res.Status != payments.StatusCompleted {
		return nil, domain.ErrPaymentFailed
	}
	return res, nil
}

// logUnrecorded flags a captured charge whose record could not be written so it can be reversed.
func (s *TransactionService) logUnrecorded(ctx context.Context, err error, res *payments.ChargeResult, propertyID, amount int64) {
	logging.FromContext(ctx).WithError(err).WithFields(logrus.Fields{
		"property_id": propertyID,
		"amount":      amount,
		"checkout_id": res.CheckoutID,
		"receipt":     res.ReceiptCode,
	}).Error("charge captured but transaction not recorded")
}

func (s *TransactionService) afterCommit(ctx context.Context, evtType, phone string, payload map[string]any, receipt string) {
	log := logging.FromContext(ctx)
	if err := s.listings.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("listing cache invalidation failed")
	}
	events.PublishBestEffort(ctx, s.publisher, evtType, payload)
	if err := s.sms.SendReceipt(ctx, phone, receipt); err != nil {
		log.WithError(err).Warn("sms receipt not delivered")
	}
}

// resolveAmount defaults to the listed price and rejects any other figure.
func resolveAmount(given, price int64) (int64, error) {
	if given == 0 {
		return price, nil
	}
	if given != price {
		return 0, domain.ErrAmountMismatch
	}
	return given, nil
}
