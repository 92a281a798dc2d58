package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/EstateEmpire/estateempire-backend/internal/auth/domain"
	"github.com/EstateEmpire/estateempire-backend/internal/auth/repository"
)

const testSecret = "test-secret-that-is-at-least-32-bytes!"

type harness struct {
	svc    *AuthService
	users  *fakeUsers
	codes  *fakeCodes
	mailer *fakeMailer
	mr     *miniredis.Miniredis
}

func newHarness(t *testing.T, limits RateLimits) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	tokens, err := NewTokenService(testSecret, "estateempire", time.Hour)
	require.NoError(t, err)

	h := &harness{
		users:  newFakeUsers(),
		codes:  &fakeCodes{},
		mailer: &fakeMailer{sent: map[string]string{}},
		mr:     mr,
	}
	h.svc = NewAuthService(Deps{
		Users:       h.users,
		Codes:       h.codes,
		Revocations: repository.NewRevocationRepository(client),
		Tokens:      tokens,
		Limiter:     NewRateLimiterService(repository.NewRateLimitRepository(client), limits),
		Mailer:      h.mailer,
	}, Config{CodeTTL: 10 * time.Minute, CodeLength: 6, MaxCodeAttempts: 3, BcryptCost: bcrypt.MinCost})
	return h
}

func (h *harness) signupVerified(t *testing.T, email string, role domain.Role) {
	t.Helper()
	ctx := context.Background()
	_, err := h.svc.Signup(ctx, domain.SignupInput{Email: email, Password: "password123", AccountType: role})
	require.NoError(t, err)
	require.NoError(t, h.svc.VerifyEmail(ctx, email, h.mailer.last(email)))
}

func TestSignup_CreatesUnverifiedUserAndEmailsCode(t *testing.T) {
	h := newHarness(t, RateLimits{})

	user, err := h.svc.Signup(context.Background(), domain.SignupInput{
		Email: "  Jane@Example.COM ", Password: "password123", AccountType: domain.RoleClient,
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", user.Email)
	assert.False(t, user.EmailVerified)
	assert.NotEqual(t, "password123", user.PasswordHash)

	code := h.mailer.last("jane@example.com")
	assert.Len(t, code, 6)
	assert.Regexp(t, `^\d{6}$`, code)
}

func TestSignup_Validation(t *testing.T) {
	h := newHarness(t, RateLimits{})
	ctx := context.Background()

	cases := []domain.SignupInput{
		{Email: "not-an-email", Password: "password123", AccountType: domain.RoleClient},
		{Email: "a@b.co", Password: "short", AccountType: domain.RoleClient},
		{Email: "a@b.co", Password: "password123", AccountType: "admin"},
	}
	for _, in := range cases {
		_, err := h.svc.Signup(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	h := newHarness(t, RateLimits{})
	ctx := context.Background()
	in := domain.SignupInput{Email: "dup@example.com", Password: "password123", AccountType: domain.RoleAgent}

	_, err := h.svc.Signup(ctx, in)
	require.NoError(t, err)

	in.Email = "DUP@example.com"
	_, err = h.svc.Signup(ctx, in)
	assert.ErrorIs(t, err, domain.ErrEmailInUse)
}

func TestSignup_MailFailureStillCreatesAccount(t *testing.T) {
	h := newHarness(t, RateLimits{})
	h.mailer.err = errors.New("sendgrid down")

	user, err := h.svc.Signup(context.Background(), domain.SignupInput{
		Email: "a@b.co", Password: "password123", AccountType: domain.RoleClient,
	})
	require.NoError(t, err)
	assert.NotNil(t, user)
}

func TestVerifyEmail_Flow(t *testing.T) {
	h := newHarness(t, RateLimits{})
	ctx := context.Background()

	_, err := h.svc.Signup(ctx, domain.SignupInput{Email: "v@example.com", Password: "password123", AccountType: domain.RoleClient})
	require.NoError(t, err)

	assert.ErrorIs(t, h.svc.VerifyEmail(ctx, "v@example.com", "000000x"), domain.ErrInvalidCode)

	require.NoError(t, h.svc.VerifyEmail(ctx, "v@example.com", h.mailer.last("v@example.com")))
	u, err := h.users.GetByEmail(ctx, "v@example.com")
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)

	assert.NoError(t, h.svc.VerifyEmail(ctx, "v@example.com", "anything"), "verifying twice is a no-op")
	assert.ErrorIs(t, h.svc.VerifyEmail(ctx, "nobody@example.com", "123456"), domain.ErrInvalidCode)
}

func TestVerifyEmail_TooManyAttempts(t *testing.T) {
	h := newHarness(t, RateLimits{})
	ctx := context.Background()

	_, err := h.svc.Signup(ctx, domain.SignupInput{Email: "x@example.com", Password: "password123", AccountType: domain.RoleClient})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, h.svc.VerifyEmail(ctx, "x@example.com", "wrong"), domain.ErrInvalidCode)
	}
	err = h.svc.VerifyEmail(ctx, "x@example.com", h.mailer.last("x@example.com"))
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts)
}

func TestVerifyEmail_Expired(t *testing.T) {
	h := newHarness(t, RateLimits{})
	ctx := context.Background()

	_, err := h.svc.Signup(ctx, domain.SignupInput{Email: "e@example.com", Password: "password123", AccountType: domain.RoleClient})
	require.NoError(t, err)

	h.svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	err = h.svc.VerifyEmail(ctx, "e@example.com", h.mailer.last("e@example.com"))
	assert.ErrorIs(t, err, domain.ErrCodeExpired)

	removed, err := h.svc.CleanupExpiredCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestResendCode(t *testing.T) {
	h := newHarness(t, RateLimits{EmailPerHour: 2})
	ctx := context.Background()

	assert.NoError(t, h.svc.ResendCode(ctx, "ghost@example.com"), "unknown addresses are not revealed")

	_, err := h.svc.Signup(ctx, domain.SignupInput{Email: "r@example.com", Password: "password123", AccountType: domain.RoleClient})
	require.NoError(t, err)
	require.NoError(t, h.svc.ResendCode(ctx, "r@example.com"))
	require.NoError(t, h.svc.VerifyEmail(ctx, "r@example.com", h.mailer.last("r@example.com")))

	assert.NoError(t, h.svc.ResendCode(ctx, "r@example.com"), "verified accounts are a no-op")
}

func TestResendCode_RateLimited(t *testing.T) {
	h := newHarness(t, RateLimits{EmailPerHour: 1})
	ctx := context.Background()

	_, err := h.svc.Signup(ctx, domain.SignupInput{Email: "rl@example.com", Password: "password123", AccountType: domain.RoleClient})
	require.NoError(t, err)

	assert.ErrorIs(t, h.svc.ResendCode(ctx, "rl@example.com"), domain.ErrRateLimited)
}

func TestLogin(t *testing.T) {
	h := newHarness(t, RateLimits{})
	ctx := context.Background()
	h.signupVerified(t, "agent@example.com", domain.RoleAgent)

	sess, err := h.svc.Login(ctx, "Agent@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "agent@example.com", sess.Email)
	assert.Equal(t, domain.RoleAgent, sess.Role)
	assert.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 2*time.Second)

	claims, err := h.svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, claims.Role)

	u, err := h.svc.Me(ctx, claims.UserID)
	require.NoError(t, err)
	assert.NotNil(t, u.LastLoginAt)
}

func TestLogin_Failures(t *testing.T) {
	h := newHarness(t, RateLimits{})
	ctx := context.Background()
	h.signupVerified(t, "c@example.com", domain.RoleClient)

	_, err := h.svc.Login(ctx, "c@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = h.svc.Login(ctx, "missing@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = h.svc.Login(ctx, "bad", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.svc.Signup(ctx, domain.SignupInput{Email: "u@example.com", Password: "password123", AccountType: domain.RoleClient})
	require.NoError(t, err)
	_, err = h.svc.Login(ctx, "u@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrEmailNotVerified)
}

func TestLogin_RateLimited(t *testing.T) {
	h := newHarness(t, RateLimits{LoginPerMinute: 2})
	ctx := context.Background()
	h.signupVerified(t, "l@example.com", domain.RoleClient)

	for i := 0; i < 2; i++ {
		_, err := h.svc.Login(ctx, "l@example.com", "nope-nope")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	_, err := h.svc.Login(ctx, "l@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	h.mr.FastForward(time.Minute + time.Second)
	_, err = h.svc.Login(ctx, "l@example.com", "password123")
	assert.NoError(t, err)
}

func TestLogin_SuccessClearsFailedAttempts(t *testing.T) {
	h := newHarness(t, RateLimits{LoginPerMinute: 3})
	ctx := context.Background()
	h.signupVerified(t, "r@example.com", domain.RoleClient)

	for i := 0; i < 2; i++ {
		_, err := h.svc.Login(ctx, "r@example.com", "nope-nope")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	_, err := h.svc.Login(ctx, "r@example.com", "password123")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := h.svc.Login(ctx, "r@example.com", "nope-nope")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "attempt %d after a successful login", i+1)
	}
}

func TestLogin_UnknownEmailStillComparesAHash(t *testing.T) {
	h := newHarness(t, RateLimits{})
	var compared [][]byte
	h.svc.compareHash = func(hash, password []byte) error {
		compared = append(compared, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, err := h.svc.Login(context.Background(), "ghost@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.Len(t, compared, 1)
	cost, err := bcrypt.Cost(compared[0])
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost, "dummy hash uses the configured cost")
}

func TestLogout_RevokesToken(t *testing.T) {
	h := newHarness(t, RateLimits{})
	ctx := context.Background()
	h.signupVerified(t, "o@example.com", domain.RoleClient)

	sess, err := h.svc.Login(ctx, "o@example.com", "password123")
	require.NoError(t, err)
	claims, err := h.svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)

	require.NoError(t, h.svc.Logout(ctx, claims))

	_, err = h.svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	other, err := h.svc.Login(ctx, "o@example.com", "password123")
	require.NoError(t, err)
	_, err = h.svc.Authenticate(ctx, other.Token)
	assert.NoError(t, err, "other sessions stay valid")
}
