package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"community-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newApp(v auth.Verifier) *fiber.App {
	app := fiber.New()
	app.Use(JWTUidOnly(v))
	app.Get("/open", func(c *fiber.Ctx) error {
		return c.SendString("viewer=" + ViewerID(c).Hex())
	})
	app.Get("/closed", RequireAuth(), func(c *fiber.Ctx) error {
		uid, err := UIDFromLocals(c)
		if err != nil {
			return err
		}
		return c.SendString(uid)
	})
	return app
}

func TestJWTMiddleware(t *testing.T) {
	h := auth.NewHMAC("secret", "test", time.Hour)
	app := newApp(h)
	uid := bson.NewObjectID().Hex()
	tok, err := h.Issue(uid, false)
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"anonymous open route", "/open", "", http.StatusOK},
		{"anonymous closed route", "/closed", "", http.StatusUnauthorized},
		{"valid token", "/closed", "Bearer " + tok, http.StatusOK},
		{"lower-case scheme", "/closed", "bearer " + tok, http.StatusOK},
		{"garbage token", "/open", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "/closed", "Basic abc", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestTokenForNonObjectIDIsUnauthorizedOnClosedRoutes(t *testing.T) {
	h := auth.NewHMAC("secret", "test", time.Hour)
	tok, err := h.Issue("firebase-uid-123", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/closed", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := newApp(h).Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
