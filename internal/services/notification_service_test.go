package services

import (
	"context"
	"testing"

	"community-backend/internal/apperr"
	"community-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestBuildTitleMessage(t *testing.T) {
	_, msg, err := BuildTitleMessage(models.NotiPostRejected, models.NotiParams{PostTitle: "Hi", Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, `"Hi" was rejected: spam`, msg)

	_, _, err = BuildTitleMessage(models.NotiPostRejected, models.NotiParams{PostTitle: "Hi"})
	assert.Error(t, err)
	_, _, err = BuildTitleMessage("bogus", models.NotiParams{})
	assert.Error(t, err)

	_, msg, err = BuildTitleMessage(models.NotiLike, models.NotiParams{PostTitle: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, `Someone liked your post "Hi".`, msg)
}

func TestNotificationInbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.approved(t, "one")
	f.approved(t, "two")

	list, err := f.notis.List(ctx, f.author, true, 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	n, _ := f.notis.UnreadCount(ctx, f.author)
	assert.Equal(t, int64(2), n)

	read, err := f.notis.MarkRead(ctx, list[0].ID.Hex(), f.author)
	require.NoError(t, err)
	assert.True(t, read.Read)
	require.NotNil(t, read.ReadAt)

	_, err = f.notis.MarkRead(ctx, list[1].ID.Hex(), f.reader)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	changed, err := f.notis.MarkAllRead(ctx, f.author)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)
	n, _ = f.notis.UnreadCount(ctx, f.author)
	assert.Zero(t, n)

	require.NoError(t, f.notis.Delete(ctx, list[0].ID.Hex(), f.author))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.notis.Delete(ctx, list[0].ID.Hex(), f.author)))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.notis.Delete(ctx, bson.NewObjectID().Hex(), f.author)))

	all, _ := f.notis.List(ctx, f.author, false, 20, 0)
	assert.Len(t, all, 1)
}

func TestNotifyManySkipsEmptyAudience(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.notis.NotifyMany(context.Background(), nil, models.NotiNewUser, models.NotiParams{}))
	assert.Empty(t, f.store.Notifications().All())
}
