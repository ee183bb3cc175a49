// Package memory implements the repository interfaces in process. It backs
// service and handler tests and has the same not-found and duplicate
// semantics as the MongoDB implementations.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"community-backend/internal/models"
	"community-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Store holds every collection behind one lock.
type Store struct {
	mu            sync.Mutex
	posts         map[bson.ObjectID]models.Post
	users         map[bson.ObjectID]models.User
	notifications map[bson.ObjectID]models.Notification
	likes         map[string]models.Like
	comments      map[bson.ObjectID]models.Comment

	// FailWith, when set, is returned by every write. Used to simulate store outages.
	FailWith error
}

func New() *Store {
	return &Store{
		posts:         make(map[bson.ObjectID]models.Post),
		users:         make(map[bson.ObjectID]models.User),
		notifications: make(map[bson.ObjectID]models.Notification),
		likes:         make(map[string]models.Like),
		comments:      make(map[bson.ObjectID]models.Comment),
	}
}

func (s *Store) Posts() *Posts                 { return &Posts{s} }
func (s *Store) Users() *Users                 { return &Users{s} }
func (s *Store) Notifications() *Notifications { return &Notifications{s} }
func (s *Store) Likes() *Likes                 { return &Likes{s} }
func (s *Store) Comments() *Comments           { return &Comments{s} }

// Tx runs fn directly; the in-memory store has no rollback.
type Tx struct{}

func (Tx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newestFirst[T any](items []T, created func(T) time.Time, id func(T) bson.ObjectID) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		a, b := id(items[i]), id(items[j])
		return strings.Compare(a.Hex(), b.Hex()) > 0
	})
}

func page[T any](items []T, offset, limit int64) []T {
	if offset > 0 {
		if offset >= int64(len(items)) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && int64(len(items)) > limit {
		items = items[:limit]
	}
	return items
}

// ---- posts ----

type Posts struct{ s *Store }

var _ repository.PostRepository = (*Posts)(nil)

func (r *Posts) Insert(_ context.Context, p *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	r.s.posts[p.ID] = *p
	return nil
}

func (r *Posts) FindByID(_ context.Context, id bson.ObjectID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *Posts) Find(_ context.Context, f repository.PostFilter) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Post{}
	for _, p := range r.s.posts {
		if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, p.Status) {
			continue
		}
		out = append(out, p)
	}
	newestFirst(out, func(p models.Post) time.Time { return p.CreatedAt }, func(p models.Post) bson.ObjectID { return p.ID })
	return page(out, f.Offset, f.Limit), nil
}

func hasStatus(list []models.PostStatus, s models.PostStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (r *Posts) Transition(_ context.Context, id bson.ObjectID, from models.PostStatus, t models.Transition) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return false, r.s.FailWith
	}
	p, ok := r.s.posts[id]
	if !ok || p.Status != from {
		return false, nil
	}
	at, by := t.At, t.By
	p.Status = t.To
	p.UpdatedAt = at
	switch t.To {
	case models.PostApproved:
		p.ApprovedAt, p.ApprovedBy = &at, &by
	case models.PostRejected:
		p.RejectedAt, p.RejectedBy = &at, &by
		p.RejectionReason = t.Reason
	}
	r.s.posts[id] = p
	return true, nil
}

func (r *Posts) Revert(_ context.Context, id bson.ObjectID, t models.Transition) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok || p.Status != t.To || !p.UpdatedAt.Equal(t.At) {
		return false, nil
	}
	by := p.ApprovedBy
	if t.To == models.PostRejected {
		by = p.RejectedBy
	}
	if by == nil || *by != t.By {
		return false, nil
	}
	p.Status = models.PostPending
	p.ApprovedAt, p.ApprovedBy = nil, nil
	p.RejectedAt, p.RejectedBy = nil, nil
	p.RejectionReason = ""
	r.s.posts[id] = p
	return true, nil
}

func (r *Posts) IncCounter(_ context.Context, id bson.ObjectID, c models.Counter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	p, ok := r.s.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	switch c {
	case models.CounterLikes:
		p.LikeCount++
	case models.CounterComments:
		p.CommentCount++
	case models.CounterViews:
		p.ViewCount++
	}
	r.s.posts[id] = p
	return nil
}

// Count returns how many posts are stored.
func (r *Posts) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.posts)
}

// ---- users ----

type Users struct{ s *Store }

var _ repository.UserRepository = (*Users)(nil)

func (r *Users) Insert(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.s.users {
		if u.Email != "" && existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) AdminIDs(_ context.Context) ([]bson.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []bson.ObjectID
	for id, u := range r.s.users {
		if u.IsAdmin {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ---- notifications ----

type Notifications struct{ s *Store }

var _ repository.NotificationRepository = (*Notifications)(nil)

func (r *Notifications) Insert(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if n.ID.IsZero() {
		n.ID = bson.NewObjectID()
	}
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *Notifications) InsertMany(ctx context.Context, ns []models.Notification) error {
	for i := range ns {
		if err := r.Insert(ctx, &ns[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Notifications) ListByUser(_ context.Context, userID bson.ObjectID, f repository.NotificationFilter) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID != userID || (f.UnreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	newestFirst(out, func(n models.Notification) time.Time { return n.CreatedAt }, func(n models.Notification) bson.ObjectID { return n.ID })
	return page(out, f.Offset, f.Limit), nil
}

func (r *Notifications) CountUnread(_ context.Context, userID bson.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, v := range r.s.notifications {
		if v.UserID == userID && !v.Read {
			n++
		}
	}
	return n, nil
}

func (r *Notifications) MarkRead(_ context.Context, id, userID bson.ObjectID, at time.Time) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	n.Read = true
	n.ReadAt = &at
	r.s.notifications[id] = n
	return &n, nil
}

func (r *Notifications) MarkAllRead(_ context.Context, userID bson.ObjectID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var changed int64
	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			n.ReadAt = &at
			r.s.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (r *Notifications) Delete(_ context.Context, id, userID bson.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

// All returns every stored notification, for assertions.
func (r *Notifications) All() []models.Notification {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Notification, 0, len(r.s.notifications))
	for _, n := range r.s.notifications {
		out = append(out, n)
	}
	return out
}

// ---- likes ----

type Likes struct{ s *Store }

var _ repository.LikeRepository = (*Likes)(nil)

func likeKey(userID, postID bson.ObjectID, commentID *bson.ObjectID) string {
	k := userID.Hex() + "|" + postID.Hex()
	if commentID != nil {
		k += "|" + commentID.Hex()
	}
	return k
}

func (r *Likes) Insert(_ context.Context, l *models.Like) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return false, r.s.FailWith
	}
	k := likeKey(l.UserID, l.PostID, l.CommentID)
	if _, ok := r.s.likes[k]; ok {
		return true, nil
	}
	if l.ID.IsZero() {
		l.ID = bson.NewObjectID()
	}
	r.s.likes[k] = *l
	return false, nil
}

func (r *Likes) IsLiked(_ context.Context, userID, postID bson.ObjectID, commentID *bson.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.likes[likeKey(userID, postID, commentID)]
	return ok, nil
}

// ---- comments ----

type Comments struct{ s *Store }

var _ repository.CommentRepository = (*Comments)(nil)

func (r *Comments) Insert(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	r.s.comments[c.ID] = *c
	return nil
}

func (r *Comments) FindByID(_ context.Context, id bson.ObjectID) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *Comments) ListByPost(_ context.Context, postID bson.ObjectID, after *repository.CommentCursor, limit int64) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range r.s.comments {
		if c.PostID != postID {
			continue
		}
		if after != nil {
			older := c.CreatedAt.Before(after.CreatedAt) ||
				(c.CreatedAt.Equal(after.CreatedAt) && c.ID.Hex() < after.ID.Hex())
			if !older {
				continue
			}
		}
		out = append(out, c)
	}
	newestFirst(out, func(c models.Comment) time.Time { return c.CreatedAt }, func(c models.Comment) bson.ObjectID { return c.ID })
	return page(out, 0, limit), nil
}

func (r *Comments) IncLikeCount(_ context.Context, id bson.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.LikeCount++
	r.s.comments[id] = c
	return nil
}
