package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"community-backend/internal/apperr"
	"community-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikePostOnceAndNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.approved(t, "likeable")

	r, err := f.engage.LikePost(ctx, p.ID.Hex(), f.reader)
	require.NoError(t, err)
	assert.False(t, r.AlreadyLiked)
	assert.Equal(t, int64(1), r.LikeCount)

	r, err = f.engage.LikePost(ctx, p.ID.Hex(), f.reader)
	require.NoError(t, err)
	assert.True(t, r.AlreadyLiked)
	assert.Equal(t, int64(1), r.LikeCount)

	stored, _ := f.store.Posts().FindByID(ctx, p.ID)
	assert.Equal(t, int64(1), stored.LikeCount)
	assert.True(t, f.engage.IsPostLiked(ctx, p.ID, f.reader))

	var likes int
	for _, n := range f.notificationsFor(f.author) {
		if n.Type == models.NotiLike {
			likes++
			assert.Contains(t, n.Message, "Mehmet")
		}
	}
	assert.Equal(t, 1, likes)
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.approved(t, "my own")

	_, err := f.engage.LikePost(ctx, p.ID.Hex(), f.author)
	require.NoError(t, err)

	for _, n := range f.notificationsFor(f.author) {
		assert.NotEqual(t, models.NotiLike, n.Type)
	}
}

func TestCannotEngageWithPendingPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.submit(t, "pending")

	_, err := f.engage.LikePost(ctx, p.ID.Hex(), f.reader)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.engage.AddComment(ctx, p.ID.Hex(), f.reader, "hi", "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAddCommentAndReply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.approved(t, "discuss")

	c, err := f.engage.AddComment(ctx, p.ID.Hex(), f.reader, "  nice post  ", "")
	require.NoError(t, err)
	assert.Equal(t, "nice post", c.Text)
	assert.Nil(t, c.ParentID)

	reply, err := f.engage.AddComment(ctx, p.ID.Hex(), f.author, "thanks", c.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, c.ID, *reply.ParentID)

	stored, _ := f.store.Posts().FindByID(ctx, p.ID)
	assert.Equal(t, int64(2), stored.CommentCount)

	types := func(ns []models.Notification) []models.NotiType {
		var out []models.NotiType
		for _, n := range ns {
			if n.Type != models.NotiPostApproved {
				out = append(out, n.Type)
			}
		}
		return out
	}
	assert.Equal(t, []models.NotiType{models.NotiComment}, types(f.notificationsFor(f.author)))
	assert.Equal(t, []models.NotiType{models.NotiCommentReplied}, types(f.notificationsFor(f.reader)))
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.approved(t, "discuss")
	other := f.approved(t, "elsewhere")
	c, err := f.engage.AddComment(ctx, other.ID.Hex(), f.reader, "over here", "")
	require.NoError(t, err)

	_, err = f.engage.AddComment(ctx, p.ID.Hex(), f.reader, " ", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.engage.AddComment(ctx, p.ID.Hex(), f.reader, strings.Repeat("x", MaxCommentRunes+1), "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.engage.AddComment(ctx, p.ID.Hex(), f.reader, "reply", c.ID.Hex())
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListCommentsPagesAndMasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.approved(t, "thread")

	base := fixedNow
	for i, text := range []string{"first", "second", "you bastard", "fourth"} {
		at := base.Add(time.Duration(i) * time.Minute)
		f.engage.Now = func() time.Time { return at }
		_, err := f.engage.AddComment(ctx, p.ID.Hex(), f.reader, text, "")
		require.NoError(t, err)
	}

	page1, err := f.engage.ListComments(ctx, p.ID.Hex(), "", 2)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.Equal(t, "fourth", page1.Items[0].Text)
	assert.Equal(t, "you *******", page1.Items[1].Text)
	require.NotNil(t, page1.NextCursor)

	page2, err := f.engage.ListComments(ctx, p.ID.Hex(), *page1.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, "second", page2.Items[0].Text)
	assert.Equal(t, "first", page2.Items[1].Text)
	assert.Nil(t, page2.NextCursor)

	_, err = f.engage.ListComments(ctx, p.ID.Hex(), "not-a-cursor!", 2)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLikeCommentNotifiesCommenter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.approved(t, "thread")
	c, err := f.engage.AddComment(ctx, p.ID.Hex(), f.reader, "good point", "")
	require.NoError(t, err)

	r, err := f.engage.LikeComment(ctx, c.ID.Hex(), f.author)
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.LikeCount)
	r, err = f.engage.LikeComment(ctx, c.ID.Hex(), f.author)
	require.NoError(t, err)
	assert.True(t, r.AlreadyLiked)

	notis := f.notificationsFor(f.reader)
	require.Len(t, notis, 1)
	assert.Equal(t, models.NotiCommentLiked, notis[0].Type)

	_, err = f.engage.LikeComment(ctx, "zzz", f.author)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
