package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"power_monitor/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSigningKey = "test-signing-key"

func newTestOperatorAuth(repo *fakeOperatorRepo) *OperatorAuth {
	return NewOperatorAuth(repo, AuthConfig{Enabled: true, SigningKey: testSigningKey, TokenTTL: time.Hour})
}

func TestOperatorAuth_RegisterSignInAuthenticate(t *testing.T) {
	repo := newFakeOperatorRepo()
	auth := newTestOperatorAuth(repo)
	ctx := context.Background()

	op, err := auth.Register(ctx, "  shift-lead ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, models.Operator{ID: 1, Username: "shift-lead"}, op)

	stored, _ := repo.ByUsername(ctx, "shift-lead")
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))

	token, err := auth.SignIn(ctx, "shift-lead", "correct horse")
	require.NoError(t, err)

	who, err := auth.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, models.Operator{ID: 1, Username: "shift-lead"}, who)
}

func TestOperatorAuth_RegisterValidation(t *testing.T) {
	repo := newFakeOperatorRepo()
	auth := newTestOperatorAuth(repo)
	ctx := context.Background()

	_, err := auth.Register(ctx, "   ", "long enough")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = auth.Register(ctx, "maint", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = auth.Register(ctx, "maint", "long enough")
	require.NoError(t, err)
	_, err = auth.Register(ctx, "maint", "another one")
	assert.ErrorIs(t, err, ErrOperatorExists)

	repo.err = errors.New("database is locked")
	_, err = auth.Register(ctx, "night-shift", "long enough")
	assert.EqualError(t, err, "database is locked")
}

func TestOperatorAuth_SignInRejects(t *testing.T) {
	repo := newFakeOperatorRepo()
	auth := newTestOperatorAuth(repo)
	ctx := context.Background()
	_, err := auth.Register(ctx, "maint", "long enough")
	require.NoError(t, err)

	_, err = auth.SignIn(ctx, "maint", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.SignIn(ctx, "nobody", "long enough")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown operators look like bad passwords")

	repo.err = errors.New("disk I/O error")
	_, err = auth.SignIn(ctx, "maint", "long enough")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestOperatorAuth_TokenExpiresWithClock(t *testing.T) {
	auth := newTestOperatorAuth(newFakeOperatorRepo())
	now := time.Date(2025, 3, 9, 22, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return now }

	token, err := auth.issue(models.Operator{ID: 3, Username: "night-shift"})
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = auth.Authenticate(token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = auth.Authenticate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestOperatorAuth_AuthenticateRejectsForeignTokens(t *testing.T) {
	auth := newTestOperatorAuth(newFakeOperatorRepo())
	now := time.Now()
	valid := operatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "3",
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Username: "night-shift",
	}
	sign := func(method jwt.SigningMethod, claims operatorClaims, key string) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return s
	}

	otherIssuer := valid
	otherIssuer.Issuer = "someone-else"
	noExpiry := valid
	noExpiry.ExpiresAt = nil
	badSubject := valid
	badSubject.Subject = "operator-3"

	cases := map[string]string{
		"garbage":      "not-a-jwt",
		"other key":    sign(jwt.SigningMethodHS256, valid, "other-key"),
		"other alg":    sign(jwt.SigningMethodHS512, valid, testSigningKey),
		"other issuer": sign(jwt.SigningMethodHS256, otherIssuer, testSigningKey),
		"no expiry":    sign(jwt.SigningMethodHS256, noExpiry, testSigningKey),
		"bad subject":  sign(jwt.SigningMethodHS256, badSubject, testSigningKey),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Authenticate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	who, err := auth.Authenticate(sign(jwt.SigningMethodHS256, valid, testSigningKey))
	require.NoError(t, err)
	assert.Equal(t, 3, who.ID)
}

func TestOperatorAuth_Disabled(t *testing.T) {
	auth := NewOperatorAuth(newFakeOperatorRepo(), AuthConfig{})
	assert.False(t, auth.Enabled())

	_, err := auth.Register(context.Background(), "maint", "long enough")
	assert.ErrorIs(t, err, ErrAuthDisabled)
	_, err = auth.SignIn(context.Background(), "maint", "long enough")
	assert.ErrorIs(t, err, ErrAuthDisabled)
}
