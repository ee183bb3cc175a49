package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	h := NewHMAC("s3cret", "community-backend", time.Hour)

	tok, err := h.Issue("65f0c0ffee0000000000beef", false)
	require.NoError(t, err)

	uid, err := h.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee0000000000beef", uid)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := NewHMAC("one", "x", time.Hour).Issue("u1", false)
	require.NoError(t, err)

	_, err = NewHMAC("two", "x", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	h := NewHMAC("s3cret", "x", time.Minute)
	h.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := h.Issue("u1", false)
	require.NoError(t, err)

	h.now = time.Now
	_, err = h.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UID: "u1"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = NewHMAC("s3cret", "x", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyFallsBackToSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "u-sub", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	uid, err := NewHMAC("s3cret", "x", time.Hour).Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-sub", uid)
}

func TestVerifyEmpty(t *testing.T) {
	_, err := NewHMAC("s3cret", "x", time.Hour).Verify("  ")
	assert.ErrorIs(t, err, ErrMissingToken)
}
