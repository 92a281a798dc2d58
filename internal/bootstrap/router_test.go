package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "github.com/EstateEmpire/estateempire-backend/internal/auth/domain"
	propdomain "github.com/EstateEmpire/estateempire-backend/internal/properties/domain"
	txdomain "github.com/EstateEmpire/estateempire-backend/internal/transactions/domain"
)

type stubAuth struct{ role authdomain.Role }

func (stubAuth) Signup(context.Context, authdomain.SignupInput) (*authdomain.User, error) {
	return &authdomain.User{}, nil
}
func (stubAuth) VerifyEmail(context.Context, string, string) error { return nil }
func (stubAuth) ResendCode(context.Context, string) error          { return nil }
func (stubAuth) Login(context.Context, string, string) (*authdomain.Session, error) {
	return &authdomain.Session{}, nil
}
func (stubAuth) Logout(context.Context, *authdomain.Claims) error { return nil }
func (stubAuth) Me(context.Context, uuid.UUID) (*authdomain.User, error) {
	return &authdomain.User{}, nil
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*authdomain.Claims, error) {
	if token != "good" {
		return nil, authdomain.ErrTokenInvalid
	}
	return &authdomain.Claims{UserID: uuid.New(), Role: s.role}, nil
}

type stubProperties struct{}

func (stubProperties) ListForRent(context.Context, propdomain.ListFilter) ([]propdomain.Property, error) {
	return []propdomain.Property{}, nil
}
func (stubProperties) ListForSale(context.Context, propdomain.ListFilter) ([]propdomain.Property, error) {
	return []propdomain.Property{}, nil
}
func (stubProperties) Get(context.Context, int64) (*propdomain.Property, error) {
	return &propdomain.Property{}, nil
}
func (stubProperties) GetOfType(context.Context, int64, propdomain.ListingType) (*propdomain.Property, error) {
	return &propdomain.Property{}, nil
}
func (stubProperties) Create(context.Context, uuid.UUID, propdomain.ListingType, propdomain.CreateInput) (*propdomain.Property, error) {
	return &propdomain.Property{}, nil
}
func (stubProperties) Delete(context.Context, uuid.UUID, int64) error { return nil }
func (stubProperties) ListByAgent(context.Context, uuid.UUID) ([]propdomain.Property, error) {
	return []propdomain.Property{}, nil
}
func (stubProperties) UnitTypes(context.Context) ([]propdomain.UnitType, error) { return nil, nil }

type stubTransactions struct{}

func (stubTransactions) Rent(context.Context, uuid.UUID, txdomain.RentInput) (*txdomain.Rental, error) {
	return &txdomain.Rental{}, nil
}
func (stubTransactions) Purchase(context.Context, uuid.UUID, txdomain.PurchaseInput) (*txdomain.Purchase, error) {
	return &txdomain.Purchase{}, nil
}
func (stubTransactions) Rentals(context.Context, uuid.UUID) ([]txdomain.Rental, error) {
	return []txdomain.Rental{}, nil
}
func (stubTransactions) Purchases(context.Context, uuid.UUID) ([]txdomain.Purchase, error) {
	return []txdomain.Purchase{}, nil
}
func (stubTransactions) AgentPayments(context.Context, uuid.UUID) ([]txdomain.Payment, error) {
	return []txdomain.Payment{}, nil
}

func newTestRouter(role authdomain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return BuildRouter(RouterDeps{
		ServiceName:    "estateempire-backend",
		Version:        "test",
		AllowedOrigins: []string{"http://localhost:5173"},
		Auth:           stubAuth{role: role},
		Properties:     stubProperties{},
		Transactions:   stubTransactions{},
	})
}

func request(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBuildRouter_PublicRoutes(t *testing.T) {
	r := newTestRouter(authdomain.RoleClient)

	for _, path := range []string{"/health", "/healthz", "/properties/for-rent", "/properties/for-sale", "/properties/5", "/unit_types"} {
		w := request(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"), path)
	}
}

func TestBuildRouter_UniformUnauthorized(t *testing.T) {
	r := newTestRouter(authdomain.RoleClient)

	for _, token := range []string{"", "bad"} {
		for _, path := range []string{"/me", "/rentals", "/purchases", "/rental-payments", "/properties"} {
			w := request(r, http.MethodGet, path, token)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s token=%q", path, token)
		}
	}
}

func TestBuildRouter_RoleGuards(t *testing.T) {
	client := newTestRouter(authdomain.RoleClient)
	assert.Equal(t, http.StatusForbidden, request(client, http.MethodGet, "/rental-payments", "good").Code)
	assert.Equal(t, http.StatusForbidden, request(client, http.MethodDelete, "/properties/1", "good").Code)
	assert.Equal(t, http.StatusOK, request(client, http.MethodGet, "/rentals", "good").Code)

	agent := newTestRouter(authdomain.RoleAgent)
	assert.Equal(t, http.StatusOK, request(agent, http.MethodGet, "/rental-payments", "good").Code)
	assert.Equal(t, http.StatusNoContent, request(agent, http.MethodDelete, "/properties/1", "good").Code)
	assert.Equal(t, http.StatusForbidden, request(agent, http.MethodPost, "/rentals", "good").Code)
}

func TestBuildRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(authdomain.RoleClient)

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
