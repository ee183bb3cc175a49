//go:build integration

package bootstrap_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"community-backend/bootstrap"
	"community-backend/internal/models"
	"community-backend/internal/quota"
	"community-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// setupMongo starts a single-node replica set so transactions work.
func setupMongo(t *testing.T) (*mongo.Client, *mongo.Database) {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate mongo container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetDirect(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	db := client.Database("community_test")
	require.NoError(t, bootstrap.EnsureIndexes(ctx, db))
	return client, db
}

func TestMongoIntegration(t *testing.T) {
	client, db := setupMongo(t)
	ctx := context.Background()

	t.Run("ledger never exceeds the limit", func(t *testing.T) {
		ledger := quota.NewMongoLedger(db)
		day := quota.DayOf(time.Now(), time.UTC)

		var wg sync.WaitGroup
		var mu sync.Mutex
		granted := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, ok, err := ledger.Consume(ctx, "u-race", day, 2, time.Now())
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					granted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 2, granted)

		n, err := ledger.Usage(ctx, "u-race", day)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, ledger.Release(ctx, "u-race", day))
		n, _ = ledger.Usage(ctx, "u-race", day)
		assert.Equal(t, 1, n)
	})

	t.Run("transition is compare and swap", func(t *testing.T) {
		posts := repository.NewPostRepository(db)
		p := &models.Post{ID: bson.NewObjectID(), AuthorID: bson.NewObjectID(), Content: "x", Status: models.PostPending, CreatedAt: time.Now().UTC()}
		require.NoError(t, posts.Insert(ctx, p))

		tr := models.Transition{To: models.PostApproved, At: time.Now().UTC(), By: bson.NewObjectID()}
		ok, err := posts.Transition(ctx, p.ID, models.PostPending, tr)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = posts.Transition(ctx, p.ID, models.PostPending, tr)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := posts.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PostApproved, got.Status)
		require.NotNil(t, got.ApprovedBy)

		_, err = posts.FindByID(ctx, bson.NewObjectID())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("revert only undoes the matching transition", func(t *testing.T) {
		posts := repository.NewPostRepository(db)
		p := &models.Post{ID: bson.NewObjectID(), AuthorID: bson.NewObjectID(), Content: "x", Status: models.PostPending, CreatedAt: time.Now().UTC()}
		require.NoError(t, posts.Insert(ctx, p))

		tr := models.Transition{To: models.PostRejected, At: time.Now().UTC().Truncate(time.Millisecond), By: bson.NewObjectID(), Reason: "spam"}
		ok, err := posts.Transition(ctx, p.ID, models.PostPending, tr)
		require.NoError(t, err)
		require.True(t, ok)

		stale := tr
		stale.By = bson.NewObjectID()
		ok, err = posts.Revert(ctx, p.ID, stale)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = posts.Revert(ctx, p.ID, tr)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := posts.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PostPending, got.Status)
		assert.Nil(t, got.RejectedBy)
		assert.Empty(t, got.RejectionReason)
	})

	t.Run("duplicate like is detected", func(t *testing.T) {
		likes := repository.NewLikeRepository(db)
		l := models.Like{UserID: bson.NewObjectID(), PostID: bson.NewObjectID(), CreatedAt: time.Now().UTC()}
		first, second := l, l

		dup, err := likes.Insert(ctx, &first)
		require.NoError(t, err)
		assert.False(t, dup)
		dup, err = likes.Insert(ctx, &second)
		require.NoError(t, err)
		assert.True(t, dup)
	})

	t.Run("transaction rolls back", func(t *testing.T) {
		notis := repository.NewNotificationRepository(db)
		tx := &repository.MongoTx{Client: client, Enabled: true}
		uid := bson.NewObjectID()

		err := tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := notis.Insert(ctx, &models.Notification{UserID: uid, Type: models.NotiLike, CreatedAt: time.Now().UTC()}); err != nil {
				return err
			}
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		n, err := notis.CountUnread(ctx, uid)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("email is unique", func(t *testing.T) {
		users := repository.NewUserRepository(db)
		require.NoError(t, users.Insert(ctx, &models.User{Email: "dup@example.com"}))
		assert.ErrorIs(t, users.Insert(ctx, &models.User{Email: "DUP@example.com"}), repository.ErrDuplicate)
	})
}
