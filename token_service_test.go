package users_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdentity = users.Identity(identityStub{
	id:       "ID_1234567890",
	username: "jdoe",
	email:    "jdoe@example.com",
	role:     string(users.RoleManager),
})

type identityStub struct {
	id, username, email, role string
}

func (s identityStub) ID() string       { return s.id }
func (s identityStub) Username() string { return s.username }
func (s identityStub) Email() string    { return s.email }
func (s identityStub) Role() string     { return s.role }

func newTestTokenService(clock *fakeClock) *users.TokenService {
	ts := users.NewTokenService([]byte("test-signing-key"), time.Hour, "test-issuer", "test-audience", testLogger{})
	if clock != nil {
		ts.WithClock(clock.Now)
	}
	return ts
}

type configStub struct {
	strict bool
}

func (c configStub) GetSigningKey() string             { return "test-signing-key" }
func (c configStub) GetTokenExpiration() time.Duration { return time.Hour }
func (c configStub) GetIssuer() string                 { return "test-issuer" }
func (c configStub) GetAudience() string               { return "test-audience" }
func (c configStub) GetStrictSubjectCheck() bool       { return c.strict }

func TestNewTokenServiceFromConfig(t *testing.T) {
	service := users.NewTokenServiceFromConfig(configStub{strict: true}, testLogger{})

	token, err := service.Generate(testIdentity, []string{"user:read"})
	require.NoError(t, err)

	// interchangeable with a service built from the same explicit values
	assert.True(t, newTestTokenService(nil).IsValid("jdoe", token))

	t.Run("loose mode from config", func(t *testing.T) {
		loose := users.NewTokenServiceFromConfig(configStub{strict: false}, testLogger{})

		token, err := loose.Generate(testIdentity, nil)
		require.NoError(t, err)
		assert.True(t, loose.IsValid("anyone", token))
	})
}

func TestTokenService_Generate(t *testing.T) {
	service := newTestTokenService(nil)

	t.Run("generates a token with the identity's subject", func(t *testing.T) {
		token, err := service.Generate(testIdentity, []string{"user:read"})
		require.NoError(t, err)
		require.NotEmpty(t, token)

		subject, err := service.Subject(token)
		require.NoError(t, err)
		assert.Equal(t, "jdoe", subject)
	})

	t.Run("preserves authority order", func(t *testing.T) {
		authorities := []string{"user:read", "user:update", "user:create"}

		token, err := service.Generate(testIdentity, authorities)
		require.NoError(t, err)

		got, err := service.Authorities(token)
		require.NoError(t, err)
		assert.Equal(t, authorities, got)
	})

	t.Run("rejects a nil identity", func(t *testing.T) {
		_, err := service.Generate(nil, nil)
		assert.Error(t, err)
	})
}

func TestTokenService_Expiry(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	service := newTestTokenService(clock)

	token, err := service.Generate(testIdentity, []string{"user:read"})
	require.NoError(t, err)

	t.Run("fresh token validates", func(t *testing.T) {
		assert.True(t, service.IsValid("jdoe", token))
	})

	t.Run("token just before expiry validates", func(t *testing.T) {
		clock.Advance(59 * time.Minute)
		assert.True(t, service.IsValid("jdoe", token))
	})

	t.Run("expired token fails validation", func(t *testing.T) {
		clock.Advance(2 * time.Minute)
		assert.False(t, service.IsValid("jdoe", token))

		_, err := service.Validate(token)
		assert.ErrorIs(t, err, users.ErrTokenExpired)
	})

	t.Run("expired token still yields subject and authorities", func(t *testing.T) {
		subject, err := service.Subject(token)
		require.NoError(t, err)
		assert.Equal(t, "jdoe", subject)

		authorities, err := service.Authorities(token)
		require.NoError(t, err)
		assert.Equal(t, []string{"user:read"}, authorities)
	})
}

func TestTokenService_Verification(t *testing.T) {
	service := newTestTokenService(nil)

	t.Run("rejects a token signed with a different key", func(t *testing.T) {
		other := users.NewTokenService([]byte("other-key"), time.Hour, "test-issuer", "test-audience", testLogger{})

		token, err := other.Generate(testIdentity, nil)
		require.NoError(t, err)

		_, err = service.Subject(token)
		assert.ErrorIs(t, err, users.ErrTokenSignatureInvalid)
		assert.False(t, service.IsValid("jdoe", token))
	})

	t.Run("rejects a token from a different issuer", func(t *testing.T) {
		other := users.NewTokenService([]byte("test-signing-key"), time.Hour, "other-issuer", "test-audience", testLogger{})

		token, err := other.Generate(testIdentity, nil)
		require.NoError(t, err)

		_, err = service.Subject(token)
		assert.ErrorIs(t, err, users.ErrTokenSignatureInvalid)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.Subject("not-a-token")
		assert.ErrorIs(t, err, users.ErrTokenMalformed)
	})

	t.Run("classifies verification errors", func(t *testing.T) {
		assert.True(t, users.IsTokenVerificationError(users.ErrTokenMalformed))
		assert.True(t, users.IsTokenVerificationError(users.ErrTokenSignatureInvalid))
		assert.True(t, users.IsTokenExpiredError(users.ErrTokenExpired))
		assert.False(t, users.IsTokenExpiredError(nil))
	})
}

func TestTokenService_IsValid(t *testing.T) {
	service := newTestTokenService(nil)

	token, err := service.Generate(testIdentity, []string{"user:read"})
	require.NoError(t, err)

	t.Run("rejects a blank subject", func(t *testing.T) {
		assert.False(t, service.IsValid("", token))
		assert.False(t, service.IsValid("   ", token))
	})

	t.Run("strict matching rejects a foreign subject", func(t *testing.T) {
		assert.False(t, service.IsValid("someone-else", token))
	})

	t.Run("loose matching accepts any non blank subject", func(t *testing.T) {
		loose := newTestTokenService(nil).WithSubjectMatching(false)

		looseToken, err := loose.Generate(testIdentity, nil)
		require.NoError(t, err)

		assert.True(t, loose.IsValid("someone-else", looseToken))
		assert.False(t, loose.IsValid("", looseToken))
	})
}
