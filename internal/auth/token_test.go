package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haripriya/clinic-backend/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(clock *fakeClock) *TokenManager {
	return NewTokenManager(TokenConfig{
		Secret: testSecret,
		TTL:    24 * time.Hour,
		Issuer: "clinic-test",
		Now:    clock.Now,
	})
}

func testPrincipal() domain.Principal {
	return domain.Principal{
		UserID:   42,
		FullName: "Alice Admin",
		Email:    "a@x.com",
		Role:     domain.RoleAdmin,
		Active:   true,
	}
}

func TestTokenManager_IssueValidate(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	token, exp, err := m.Issue(testPrincipal())
	require.NoError(t, err)
	assert.True(t, exp.Equal(clock.t.Add(24*time.Hour)), "unexpected expiry %s", exp)

	clock.t = clock.t.Add(23 * time.Hour)
	claims, err := m.Validate(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "Alice Admin", claims.Name)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "clinic-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestTokenManager_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	token, _, err := m.Issue(testPrincipal())
	require.NoError(t, err)

	for _, after := range []time.Duration{24*time.Hour + time.Second, 48 * time.Hour, 365 * 24 * time.Hour} {
		clock.t = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Add(after)
		_, err = m.Validate(token)
		assert.ErrorIs(t, err, ErrTokenExpired, "after %s", after)
		assert.Equal(t, "expired", Kind(err))
	}
}

func TestTokenManager_TamperedSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestManager(clock)

	token, _, err := m.Issue(testPrincipal())
	require.NoError(t, err)

	sigStart := strings.LastIndex(token, ".") + 1
	for _, i := range []int{sigStart, sigStart + 5, len(token) - 3} {
		b := []byte(token)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := m.Validate(string(b))
		assert.ErrorIs(t, err, ErrTokenSignatureInvalid, "flipped byte %d", i)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	other := NewTokenManager(TokenConfig{Secret: "another-secret-another-secret-xx", Issuer: "clinic-test", Now: clock.Now})

	token, _, err := other.Issue(testPrincipal())
	require.NoError(t, err)

	_, err = newTestManager(clock).Validate(token)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestTokenManager_Malformed(t *testing.T) {
	m := newTestManager(&fakeClock{t: time.Now()})

	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c", "###.###.###"} {
		_, err := m.Validate(token)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", token)
	}
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestManager(clock)

	claims := Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "clinic-test",
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(clock.t),
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = m.Validate(signed)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Validate(unsigned)
	assert.Error(t, err)
}

func TestTokenManager_WrongIssuerAndSubject(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestManager(clock)

	sign := func(c Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}
	base := jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "42",
		IssuedAt:  jwt.NewNumericDate(clock.t),
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	}

	_, err := m.Validate(sign(Claims{RegisteredClaims: base}))
	assert.ErrorIs(t, err, ErrTokenInvalid)

	base.Issuer = "clinic-test"
	base.Subject = "alice"
	_, err = m.Validate(sign(Claims{RegisteredClaims: base}))
	assert.ErrorIs(t, err, ErrTokenMalformed)

	base.Subject = "42"
	base.ExpiresAt = nil
	_, err = m.Validate(sign(Claims{RegisteredClaims: base}))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_IssueRequiresUserID(t *testing.T) {
	m := newTestManager(&fakeClock{t: time.Now()})
	_, _, err := m.Issue(domain.Principal{Email: "a@x.com"})
	assert.Error(t, err)
}

func TestTokenManager_Defaults(t *testing.T) {
	m := NewTokenManager(TokenConfig{Secret: testSecret})
	assert.Equal(t, 24*time.Hour, m.TTL())
	assert.Equal(t, defaultIssuer, m.issuer)
}
