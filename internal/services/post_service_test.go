package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"community-backend/internal/apperr"
	"community-backend/internal/models"
	"community-backend/internal/quota"
	"community-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestSubmitCreatesPendingPostAndConsumesQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.posts.Submit(ctx, f.author, SubmitInput{Content: "  Hello #Go world\nsecond line  "})
	require.NoError(t, err)

	p := res.Post
	assert.Equal(t, models.PostPending, p.Status)
	assert.Equal(t, f.author, p.AuthorID)
	assert.Equal(t, "Hello #Go world", p.Title)
	assert.Equal(t, []string{"go"}, p.Tags)
	assert.Equal(t, 1, res.Usage.PostsToday)
	assert.Equal(t, 1, res.Usage.RemainingPosts)
	assert.True(t, res.Usage.CanPost)

	u, err := f.quota.CheckDailyLimit(ctx, f.author.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, u.PostsToday)
}

func TestSubmitRejectsEmptyContentWhateverTheQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.submit(t, "one")
	f.submit(t, "two")

	_, err := f.posts.Submit(ctx, f.author, SubmitInput{Content: "   "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 2, f.store.Posts().Count())
}

func TestSubmitRejectsOverlongContent(t *testing.T) {
	f := newFixture(t)

	_, err := f.posts.Submit(context.Background(), f.author, SubmitInput{Content: strings.Repeat("a", MaxContentRunes+1)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Zero(t, f.store.Posts().Count())
}

func TestSubmitOverLimitCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.submit(t, "first")
	f.submit(t, "second")
	before := f.ledger.Entries()

	res, err := f.posts.Submit(ctx, f.author, SubmitInput{Content: "third"})
	assert.Equal(t, apperr.KindQuotaExceeded, apperr.KindOf(err))
	require.NotNil(t, res)
	assert.Nil(t, res.Post)
	assert.Equal(t, 0, res.Usage.RemainingPosts)
	assert.Equal(t, 2, res.Usage.PostsToday)
	assert.False(t, res.Usage.CanPost)

	assert.Equal(t, 2, f.store.Posts().Count())
	assert.Equal(t, before, f.ledger.Entries())
}

func TestSubmitReleasesSlotWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.FailWith = errors.New("disk full")
	_, err := f.posts.Submit(ctx, f.author, SubmitInput{Content: "lost"})
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	f.store.FailWith = nil
	u, err := f.quota.CheckDailyLimit(ctx, f.author.Hex())
	require.NoError(t, err)
	assert.Equal(t, 0, u.PostsToday)
}

func TestConcurrentSubmitsNeverExceedLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.posts.Submit(ctx, f.author, SubmitInput{Content: "burst"}); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, created)
	assert.Equal(t, 2, f.store.Posts().Count())
}

func TestApproveNotifiesAuthorOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.submit(t, "please approve")

	got, err := f.posts.Approve(ctx, p.ID.Hex(), f.admin)
	require.NoError(t, err)
	assert.Equal(t, models.PostApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, f.admin, *got.ApprovedBy)

	_, err = f.posts.Approve(ctx, p.ID.Hex(), f.admin)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	notis := f.notificationsFor(f.author)
	require.Len(t, notis, 1)
	assert.Equal(t, models.NotiPostApproved, notis[0].Type)
}

func TestNonAdminCannotModerate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.submit(t, "waiting")

	_, err := f.posts.Approve(ctx, p.ID.Hex(), f.reader)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
	_, err = f.posts.Reject(ctx, p.ID.Hex(), f.author, "self reject")
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	stored, err := f.store.Posts().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostPending, stored.Status)
	assert.Empty(t, f.store.Notifications().All())
}

func TestAdminCheckComesBeforeValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.posts.Reject(context.Background(), "", f.reader, "")
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.submit(t, "meh")

	_, err := f.posts.Reject(ctx, p.ID.Hex(), f.admin, "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	stored, _ := f.store.Posts().FindByID(ctx, p.ID)
	assert.Equal(t, models.PostPending, stored.Status)
}

func TestRejectRecordsReasonAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.submit(t, "spam spam")

	got, err := f.posts.Reject(ctx, p.ID.Hex(), f.admin, "  off topic ")
	require.NoError(t, err)
	assert.Equal(t, models.PostRejected, got.Status)
	assert.Equal(t, "off topic", got.RejectionReason)

	notis := f.notificationsFor(f.author)
	require.Len(t, notis, 1)
	assert.Equal(t, models.NotiPostRejected, notis[0].Type)
	assert.Contains(t, notis[0].Message, "off topic")
	require.NotNil(t, notis[0].PostID)
	assert.Equal(t, p.ID, *notis[0].PostID)

	_, err = f.posts.Approve(ctx, p.ID.Hex(), f.admin)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestModerationUnknownPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.posts.Approve(ctx, "xyz", f.admin)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.posts.Approve(ctx, bson.NewObjectID().Hex(), f.admin)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.posts.Approve(ctx, "", f.admin)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestConcurrentApproveHasOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.submit(t, "race")

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.posts.Approve(ctx, p.ID.Hex(), f.admin)
			mu.Lock()
			defer mu.Unlock()
			switch apperr.KindOf(err) {
			case apperr.KindConflict:
				conflicts++
			default:
				if err == nil {
					wins++
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 7, conflicts)
	assert.Len(t, f.notificationsFor(f.author), 1)
}

func TestVisibilityOfUnpublishedPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.submit(t, "draft")

	_, err := f.posts.Get(ctx, p.ID.Hex(), f.reader)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.posts.Get(ctx, p.ID.Hex(), bson.NilObjectID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	got, err := f.posts.Get(ctx, p.ID.Hex(), f.author)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	_, err = f.posts.Get(ctx, p.ID.Hex(), f.admin)
	assert.NoError(t, err)

	mine, err := f.posts.ListByAuthor(ctx, f.author.Hex(), f.author, 20, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := f.posts.ListByAuthor(ctx, f.author.Hex(), f.reader, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestFeedAndReviewQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.approved(t, "visible")
	f.submit(t, "waiting")

	feed, err := f.posts.ListFeed(ctx, 20, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "visible", feed[0].Content)

	queue, err := f.posts.ListForReview(ctx, f.admin, "", 20, 0)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "waiting", queue[0].Content)

	_, err = f.posts.ListForReview(ctx, f.admin, "archived", 20, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.posts.ListForReview(ctx, f.reader, "", 20, 0)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestRecordViewOnlyCountsApprovedPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pub := f.approved(t, "read me")
	draft := f.submit(t, "not yet")

	require.NoError(t, f.posts.RecordView(ctx, pub.ID.Hex()))
	require.NoError(t, f.posts.RecordView(ctx, pub.ID.Hex()))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.posts.RecordView(ctx, draft.ID.Hex())))

	stored, _ := f.store.Posts().FindByID(ctx, pub.ID)
	assert.Equal(t, int64(2), stored.ViewCount)
}

// failingInserts fails every single-notification insert.
type failingInserts struct {
	repository.NotificationRepository
	err error
}

func (r failingInserts) Insert(context.Context, *models.Notification) error { return r.err }

func TestModerationRevertsWhenNotificationFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.submit(t, "to be moderated")

	repo := f.notis.Repo
	f.notis.Repo = failingInserts{NotificationRepository: repo, err: errors.New("write timeout")}

	_, err := f.posts.Reject(ctx, p.ID.Hex(), f.admin, "spam")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	got, err := f.store.Posts().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostPending, got.Status)
	assert.Nil(t, got.RejectedAt)
	assert.Nil(t, got.RejectedBy)
	assert.Empty(t, got.RejectionReason)

	_, err = f.posts.Approve(ctx, p.ID.Hex(), f.admin)
	require.Error(t, err)
	got, err = f.store.Posts().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostPending, got.Status)
	assert.Nil(t, got.ApprovedAt)
	assert.Empty(t, f.notificationsFor(f.author))

	f.notis.Repo = repo
	rejected, err := f.posts.Reject(ctx, p.ID.Hex(), f.admin, "spam")
	require.NoError(t, err)
	assert.Equal(t, models.PostRejected, rejected.Status)

	notes := f.notificationsFor(f.author)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotiPostRejected, notes[0].Type)
}

func TestRevertOnlyUndoesMatchingTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.submit(t, "raced")
	posts := f.store.Posts()

	mine := models.Transition{To: models.PostApproved, At: fixedNow, By: f.admin}
	ok, err := posts.Transition(ctx, p.ID, models.PostPending, mine)
	require.NoError(t, err)
	require.True(t, ok)

	other := models.Transition{To: models.PostApproved, At: fixedNow.Add(time.Second), By: f.reader}
	ok, err = posts.Revert(ctx, p.ID, other)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = posts.Revert(ctx, p.ID, mine)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostPending, got.Status)
	assert.Nil(t, got.ApprovedBy)
}

func TestCheckDailyLimitNormalizesUserID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.submit(t, "one")
	f.submit(t, "two")

	for _, id := range []string{f.author.Hex(), " " + f.author.Hex() + "\t", strings.ToUpper(f.author.Hex())} {
		u, err := f.posts.CheckDailyLimit(ctx, id)
		require.NoError(t, err, id)
		assert.False(t, u.CanPost, id)
		assert.Equal(t, 0, u.RemainingPosts, id)
		assert.Equal(t, 2, u.PostsToday, id)
	}

	_, err := f.posts.CheckDailyLimit(ctx, "not-an-id")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

// unreadableLedger fails reads but still consumes atomically.
type unreadableLedger struct {
	*quota.MemoryLedger
}

func (unreadableLedger) Usage(context.Context, string, quota.Day) (int, error) {
	return 0, errors.New("read replica unavailable")
}

func TestSubmitOnlyNeedsTheAtomicConsume(t *testing.T) {
	f := newFixture(t)
	loc, err := quota.LoadLocation(quota.DefaultTimezone)
	require.NoError(t, err)
	f.posts.Quota = quota.NewService(unreadableLedger{f.ledger}, quota.DefaultDailyLimit, loc).
		WithClock(func() time.Time { return fixedNow })

	res, err := f.posts.Submit(context.Background(), f.author, SubmitInput{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Usage.PostsToday)
	assert.Equal(t, 1, res.Usage.RemainingPosts)
}
