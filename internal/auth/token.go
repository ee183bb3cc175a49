// Package auth issues and verifies the bearer tokens carried by API requests.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Verifier turns a bearer credential into a principal id.
type Verifier interface {
	Verify(token string) (string, error)
}

type Claims struct {
	UID   string `json:"uid,omitempty"`
	Admin bool   `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

// HMAC signs and verifies HS256 tokens with a shared secret.
type HMAC struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewHMAC(secret, issuer string, ttl time.Duration) *HMAC {
	return &HMAC{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for uid. The admin claim is informational;
// moderation always rechecks the stored user record.
func (h *HMAC) Issue(uid string, admin bool) (string, error) {
	now := h.now()
	claims := Claims{
		UID:   uid,
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    h.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

func (h *HMAC) Verify(tokenStr string) (string, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return "", ErrMissingToken
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims,
		func(t *jwt.Token) (any, error) { return h.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(h.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	uid := claims.UID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return "", ErrInvalidToken
	}
	return uid, nil
}
