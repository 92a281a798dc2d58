package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EstateEmpire/estateempire-backend/internal/events"
	"github.com/EstateEmpire/estateempire-backend/internal/properties/domain"
	"github.com/EstateEmpire/estateempire-backend/internal/properties/repository"
)

type fakeRepo struct {
	mu        sync.Mutex
	props     map[int64]*domain.Property
	nextID    int64
	listCalls int
}

func newFakeRepo() *fakeRepo { return &fakeRepo{props: map[int64]*domain.Property{}} }

func (f *fakeRepo) List(_ context.Context, flt domain.ListFilter) ([]domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []domain.Property
	for _, p := range f.props {
		if flt.ListingType != "" && p.ListingType != flt.ListingType {
			continue
		}
		if flt.Status != "" && p.Status != flt.Status {
			continue
		}
		if flt.AgentID != nil && p.AgentID != *flt.AgentID {
			continue
		}
		if flt.MaxPrice > 0 && p.Price > flt.MaxPrice {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.props[id]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Create(_ context.Context, p *domain.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	cp := *p
	f.props[p.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64, agentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.props[id]
	if !ok || p.AgentID != agentID {
		return domain.ErrPropertyNotFound
	}
	delete(f.props, id)
	return nil
}

func (f *fakeRepo) UnitTypes(context.Context) ([]domain.UnitType, error) {
	return []domain.UnitType{{ID: 1, Name: "Bedsitter"}, {ID: 3, Name: "One Bedroom"}}, nil
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (r *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, evt.Type)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func newTestService(t *testing.T) (*PropertyService, *fakeRepo, *recordingPublisher) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := newFakeRepo()
	pub := &recordingPublisher{}
	return NewPropertyService(repo, repository.NewListingCache(client, time.Minute), pub), repo, pub
}

func validInput() domain.CreateInput {
	return domain.CreateInput{Name: "Garden Flat", Price: 25000, Location: "Kilimani", Bedrooms: 2, Bathrooms: 1}
}

func TestListForRent_EmptyIsNeverNil(t *testing.T) {
	svc, _, _ := newTestService(t)

	props, err := svc.ListForRent(context.Background(), domain.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, props)
	assert.Empty(t, props)

	props, err = svc.ListForRent(context.Background(), domain.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, props, "cached empty result stays non-nil")
}

func TestCreate_RentDefaultsToOneUnit(t *testing.T) {
	svc, _, pub := newTestService(t)
	agent := uuid.New()

	p, err := svc.Create(context.Background(), agent, domain.ListingRent, validInput())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAvailable, p.Status)
	require.NotNil(t, p.Units)
	assert.Equal(t, 1, *p.Units)
	assert.Equal(t, 1, *p.AvailableUnits)
	assert.Equal(t, agent, p.AgentID)
	assert.Equal(t, []string{events.TypePropertyCreated}, pub.types)
}

func TestCreate_SaleIgnoresUnitsAndResolvesType(t *testing.T) {
	svc, _, _ := newTestService(t)
	in := validInput()
	units := 4
	in.Units = &units
	in.Type = "one bedroom"

	p, err := svc.Create(context.Background(), uuid.New(), domain.ListingSale, in)
	require.NoError(t, err)
	assert.Nil(t, p.Units)
	require.NotNil(t, p.UnitTypeID)
	assert.Equal(t, 3, *p.UnitTypeID)
	assert.Equal(t, "One Bedroom", p.Type)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	bad := []domain.CreateInput{
		{Name: "", Price: 100, Location: "Westlands"},
		{Name: "Flat", Price: 0, Location: "Westlands"},
		{Name: "Flat", Price: 100, Location: "  "},
		{Name: "Flat", Price: 100, Location: "Westlands", Image: "not a url"},
	}
	for _, in := range bad {
		_, err := svc.Create(ctx, uuid.New(), domain.ListingRent, in)
		assert.ErrorIs(t, err, domain.ErrInvalidListing, "%+v", in)
	}

	in := validInput()
	zero := 0
	in.Units = &zero
	_, err := svc.Create(ctx, uuid.New(), domain.ListingRent, in)
	assert.ErrorIs(t, err, domain.ErrInvalidListing)

	in = validInput()
	missing := 99
	in.UnitTypeID = &missing
	_, err = svc.Create(ctx, uuid.New(), domain.ListingRent, in)
	assert.ErrorIs(t, err, domain.ErrUnitTypeNotFound)

	_, err = svc.Create(ctx, uuid.New(), "lease", validInput())
	assert.ErrorIs(t, err, domain.ErrInvalidListing)
}

func TestCreate_InvalidatesListingCache(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ListForRent(ctx, domain.ListFilter{})
	require.NoError(t, err)
	_, err = svc.ListForRent(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second read is served from cache")

	_, err = svc.Create(ctx, uuid.New(), domain.ListingRent, validInput())
	require.NoError(t, err)

	props, err := svc.ListForRent(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, props, 1, "new listing is visible immediately")
}

// slowListRepo lets a write commit after the listing query has read its rows.
type slowListRepo struct {
	*fakeRepo
	afterRead func()
}

func (r *slowListRepo) List(ctx context.Context, flt domain.ListFilter) ([]domain.Property, error) {
	props, err := r.fakeRepo.List(ctx, flt)
	if r.afterRead != nil {
		hook := r.afterRead
		r.afterRead = nil
		hook()
	}
	return props, err
}

func TestListForRent_CreateDuringQueryIsNotHiddenByCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := &slowListRepo{fakeRepo: newFakeRepo()}
	svc := NewPropertyService(repo, repository.NewListingCache(client, time.Minute), &recordingPublisher{})
	ctx := context.Background()

	repo.afterRead = func() {
		_, err := svc.Create(ctx, uuid.New(), domain.ListingRent, validInput())
		require.NoError(t, err)
	}

	first, err := svc.ListForRent(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, first, "query read its rows before the create")

	second, err := svc.ListForRent(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, second, 1, "rows read before the invalidation must not be served afterwards")
}

func TestListForSale_OnlyAvailableSaleListings(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	agent := uuid.New()

	_, err := svc.Create(ctx, agent, domain.ListingSale, validInput())
	require.NoError(t, err)
	sold, err := svc.Create(ctx, agent, domain.ListingSale, validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, agent, domain.ListingRent, validInput())
	require.NoError(t, err)
	repo.props[sold.ID].Status = domain.StatusSold

	props, err := svc.ListForSale(ctx, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, domain.ListingSale, props[0].ListingType)
	assert.Equal(t, domain.StatusAvailable, props[0].Status)

	mine, err := svc.ListByAgent(ctx, agent)
	require.NoError(t, err)
	assert.Len(t, mine, 3, "agents see every status")
}

func TestGetOfType(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, uuid.New(), domain.ListingRent, validInput())
	require.NoError(t, err)

	got, err := svc.GetOfType(ctx, p.ID, domain.ListingRent)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.GetOfType(ctx, p.ID, domain.ListingSale)
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
}

func TestDelete_OwnerOnly(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	p, err := svc.Create(ctx, owner, domain.ListingRent, validInput())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New(), p.ID), domain.ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, owner, p.ID))
	assert.ErrorIs(t, svc.Delete(ctx, owner, p.ID), domain.ErrPropertyNotFound)
	assert.Contains(t, pub.types, events.TypePropertyDeleted)
}
