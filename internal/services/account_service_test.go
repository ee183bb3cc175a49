package services

import (
	"context"
	"testing"

	"community-backend/internal/apperr"
	"community-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.accts.Register(ctx, RegisterInput{Email: " New@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "new", u.DisplayName)
	assert.NotEqual(t, "correct horse", u.PasswordHash)

	tok, logged, err := f.accts.Login(ctx, "NEW@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	uid, err := f.accts.Tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), uid)

	notis := f.notificationsFor(f.admin)
	require.Len(t, notis, 1)
	assert.Equal(t, models.NotiNewUser, notis[0].Type)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accts.Register(ctx, RegisterInput{Email: "nope", Password: "long enough"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.accts.Register(ctx, RegisterInput{Email: "a@b.co", Password: "short"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.accts.Register(ctx, RegisterInput{Email: "reader@example.com", Password: "long enough"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accts.Register(ctx, RegisterInput{Email: "x@example.com", Password: "password1"})
	require.NoError(t, err)

	_, _, errWrong := f.accts.Login(ctx, "x@example.com", "password2")
	_, _, errMissing := f.accts.Login(ctx, "ghost@example.com", "password1")
	_, _, errNoHash := f.accts.Login(ctx, "reader@example.com", "")

	for _, err := range []error{errWrong, errMissing, errNoHash} {
		assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
		assert.Equal(t, "invalid email or password", apperr.PublicMessage(err))
	}
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	u, err := f.accts.Me(context.Background(), f.reader)
	require.NoError(t, err)
	assert.Equal(t, "Mehmet", u.DisplayName)
}
