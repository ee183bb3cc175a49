package services

import (
	"context"
	"testing"
	"time"

	"community-backend/internal/auth"
	"community-backend/internal/models"
	"community-backend/internal/moderation"
	"community-backend/internal/quota"
	"community-backend/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

// 2025-03-10 14:00 Istanbul
var fixedNow = time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)

type fixture struct {
	store  *memory.Store
	ledger *quota.MemoryLedger
	quota  *quota.Service
	notis  *NotificationService
	posts  *PostService
	engage *EngagementService
	accts  *AccountService

	admin  bson.ObjectID
	author bson.ObjectID
	reader bson.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := func() time.Time { return fixedNow }
	loc, err := quota.LoadLocation(quota.DefaultTimezone)
	require.NoError(t, err)

	f := &fixture{store: memory.New(), ledger: quota.NewMemoryLedger()}
	f.quota = quota.NewService(f.ledger, quota.DefaultDailyLimit, loc).WithClock(now)
	f.notis = &NotificationService{Repo: f.store.Notifications(), Now: now}
	f.posts = &PostService{
		Posts:         f.store.Posts(),
		Notifications: f.notis,
		Quota:         f.quota,
		Gate:          moderation.NewUserGate(f.store.Users()),
		Tx:            memory.Tx{},
		Now:           now,
	}
	f.engage = &EngagementService{
		Posts:         f.store.Posts(),
		Comments:      f.store.Comments(),
		Likes:         f.store.Likes(),
		Users:         f.store.Users(),
		Notifications: f.notis,
		Tx:            memory.Tx{},
		Now:           now,
	}
	f.accts = &AccountService{
		Users:         f.store.Users(),
		Notifications: f.notis,
		Tokens:        auth.NewHMAC("test-secret", "community-test", time.Hour),
		Cost:          bcrypt.MinCost,
		Now:           now,
	}

	f.admin = f.addUser(t, "admin@example.com", "Ada", true)
	f.author = f.addUser(t, "author@example.com", "Ayse", false)
	f.reader = f.addUser(t, "reader@example.com", "Mehmet", false)
	return f
}

func (f *fixture) addUser(t *testing.T, email, name string, admin bool) bson.ObjectID {
	t.Helper()
	u := &models.User{ID: bson.NewObjectID(), Email: email, DisplayName: name, IsAdmin: admin, CreatedAt: fixedNow}
	require.NoError(t, f.store.Users().Insert(context.Background(), u))
	return u.ID
}

func (f *fixture) submit(t *testing.T, content string) *models.Post {
	t.Helper()
	res, err := f.posts.Submit(context.Background(), f.author, SubmitInput{Content: content})
	require.NoError(t, err)
	return res.Post
}

func (f *fixture) approved(t *testing.T, content string) *models.Post {
	t.Helper()
	p := f.submit(t, content)
	p, err := f.posts.Approve(context.Background(), p.ID.Hex(), f.admin)
	require.NoError(t, err)
	return p
}

func (f *fixture) notificationsFor(id bson.ObjectID) []models.Notification {
	var out []models.Notification
	for _, n := range f.store.Notifications().All() {
		if n.UserID == id {
			out = append(out, n)
		}
	}
	return out
}
