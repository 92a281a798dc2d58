package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/EstateEmpire/estateempire-backend/internal/events"
	"github.com/EstateEmpire/estateempire-backend/internal/logging"
	"github.com/EstateEmpire/estateempire-backend/internal/properties/domain"
)

type Repository interface {
	List(ctx context.Context, f domain.ListFilter) ([]domain.Property, error)
	Get(ctx context.Context, id int64) (*domain.Property, error)
	Create(ctx context.Context, p *domain.Property) error
	Delete(ctx context.Context, id int64, agentID uuid.UUID) error
	UnitTypes(ctx context.Context) ([]domain.UnitType, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (props []domain.Property, gen int64, hit bool, err error)
	Set(ctx context.Context, key string, gen int64, props []domain.Property) error
	Invalidate(ctx context.Context) error
}

type PropertyService struct {
	repo      Repository
	cache     Cache
	publisher events.Publisher
	validate  *validator.Validate
}

// NewPropertyService accepts a nil cache, in which case every list hits the database.
func NewPropertyService(repo Repository, cache Cache, publisher events.Publisher) *PropertyService {
	if publisher == nil {
		publisher = events.NewLogPublisher()
	}
	return &PropertyService{repo: repo, cache: cache, publisher: publisher, validate: validator.New()}
}

func (s *PropertyService) ListForRent(ctx context.Context, f domain.ListFilter) ([]domain.Property, error) {
	f.ListingType = domain.ListingRent
	return s.listAvailable(ctx, f)
}

func (s *PropertyService) ListForSale(ctx context.Context, f domain.ListFilter) ([]domain.Property, error) {
	f.ListingType = domain.ListingSale
	return s.listAvailable(ctx, f)
}

// listAvailable never returns a nil slice so callers can render an explicit empty state.
func (s *PropertyService) listAvailable(ctx context.Context, f domain.ListFilter) ([]domain.Property, error) {
	f.Status = domain.StatusAvailable
	f.AgentID = nil
	f = f.Normalize()
	key := f.CacheKey()
	log := logging.FromContext(ctx)

	cacheable := false
	var gen int64
	if s.cache != nil {
		props, g, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			log.WithError(err).Warn("listing cache read failed")
		} else if hit {
			return nonNil(props), nil
		} else {
			cacheable, gen = true, g
		}
	}

	props, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	props = nonNil(props)

	if cacheable {
		if err := s.cache.Set(ctx, key, gen, props); err != nil {
			log.WithError(err).Warn("listing cache write failed")
		}
	}
	return props, nil
}

func (s *PropertyService) Get(ctx context.Context, id int64) (*domain.Property, error) {
	return s.repo.Get(ctx, id)
}

// GetOfType reports ErrPropertyNotFound when the listing exists under the other listing type.
func (s *PropertyService) GetOfType(ctx context.Context, id int64, t domain.ListingType) (*domain.Property, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ListingType != t {
		return nil, domain.ErrPropertyNotFound
	}
	return p, nil
}

func (s *PropertyService) Create(ctx context.Context, agentID uuid.UUID, t domain.ListingType, in domain.CreateInput) (*domain.Property, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: listing type must be rent or sale", domain.ErrInvalidListing)
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Type = strings.TrimSpace(in.Type)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidListing, describeValidation(err))
	}

	p := &domain.Property{
		AgentID:     agentID,
		Name:        in.Name,
		Type:        in.Type,
		ListingType: t,
		Price:       in.Price,
		Location:    in.Location,
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Status:      domain.StatusAvailable,
	}

	if err := s.resolveUnitType(ctx, p, in); err != nil {
		return nil, err
	}

	if t == domain.ListingRent {
		units := 1
		if in.Units != nil {
			units = *in.Units
		}
		available := units
		p.Units, p.AvailableUnits = &units, &available
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	events.PublishBestEffort(ctx, s.publisher, events.TypePropertyCreated, map[string]any{
		"property_id":  p.ID,
		"agent_id":     agentID,
		"listing_type": p.ListingType,
		"price":        p.Price,
	})
	return p, nil
}

func (s *PropertyService) Delete(ctx context.Context, agentID uuid.UUID, id int64) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.AgentID != agentID {
		return domain.ErrNotOwner
	}

	if err := s.repo.Delete(ctx, id, agentID); err != nil {
		return err
	}

	s.invalidate(ctx)
	events.PublishBestEffort(ctx, s.publisher, events.TypePropertyDeleted, map[string]any{
		"property_id": id,
		"agent_id":    agentID,
	})
	return nil
}

// ListByAgent returns every listing the agent owns, in any status.
func (s *PropertyService) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]domain.Property, error) {
	props, err := s.repo.List(ctx, domain.ListFilter{AgentID: &agentID})
	if err != nil {
		return nil, err
	}
	return nonNil(props), nil
}

func (s *PropertyService) UnitTypes(ctx context.Context) ([]domain.UnitType, error) {
	return s.repo.UnitTypes(ctx)
}

// Invalidate drops cached listing queries. Transactions call it after changing a listing's status.
func (s *PropertyService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

func (s *PropertyService) invalidate(ctx context.Context) {
	if err := s.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("listing cache invalidation failed")
	}
}

func (s *PropertyService) resolveUnitType(ctx context.Context, p *domain.Property, in domain.CreateInput) error {
	if in.UnitTypeID == nil && in.Type == "" {
		return nil
	}

	types, err := s.repo.UnitTypes(ctx)
	if err != nil {
		return err
	}

	for _, ut := range types {
		if in.UnitTypeID != nil && ut.ID == *in.UnitTypeID {
			id := ut.ID
			p.UnitTypeID, p.Type = &id, ut.Name
			return nil
		}
		if in.UnitTypeID == nil && strings.EqualFold(ut.Name, in.Type) {
			id := ut.ID
			p.UnitTypeID, p.Type = &id, ut.Name
			return nil
		}
	}

	if in.UnitTypeID != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidListing, domain.ErrUnitTypeNotFound)
	}
	// free-text type without a catalogue entry
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(msgs, ", ")
}

func nonNil(props []domain.Property) []domain.Property {
	if props == nil {
		return []domain.Property{}
	}
	return props
}
