// Package repository is the document-store boundary. Services depend on the
// interfaces here; the MongoDB types implement them and repository/memory
// provides in-process doubles.
package repository

import (
	"context"
	"errors"
	"time"

	"community-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

const (
	ColPosts         = "posts"
	ColUsers         = "users"
	ColNotifications = "notifications"
	ColLikes         = "likes"
	ColComments      = "comments"
)

type PostFilter struct {
	AuthorID *bson.ObjectID
	Statuses []models.PostStatus
	Limit    int64
	Offset   int64
}

type PostRepository interface {
	Insert(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Post, error)
	// Find returns matching posts newest first.
	Find(ctx context.Context, f PostFilter) ([]models.Post, error)
	// Transition moves a post out of status from. It reports false, without
	// writing, when the post does not exist or is not in status from.
	Transition(ctx context.Context, id bson.ObjectID, from models.PostStatus, t models.Transition) (bool, error)
	// Revert puts a post back to pending if t is still its latest
	// transition, clearing the moderation fields t set.
	Revert(ctx context.Context, id bson.ObjectID, t models.Transition) (bool, error)
	IncCounter(ctx context.Context, id bson.ObjectID, c models.Counter) error
}

type UserRepository interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	AdminIDs(ctx context.Context) ([]bson.ObjectID, error)
}

type NotificationFilter struct {
	UnreadOnly bool
	Limit      int64
	Offset     int64
}

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	InsertMany(ctx context.Context, ns []models.Notification) error
	ListByUser(ctx context.Context, userID bson.ObjectID, f NotificationFilter) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID bson.ObjectID) (int64, error)
	// MarkRead returns ErrNotFound unless the notification belongs to userID.
	MarkRead(ctx context.Context, id, userID bson.ObjectID, at time.Time) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID bson.ObjectID, at time.Time) (int64, error)
	Delete(ctx context.Context, id, userID bson.ObjectID) error
}

type LikeRepository interface {
	// Insert reports dup=true when the user already liked the target.
	Insert(ctx context.Context, l *models.Like) (dup bool, err error)
	IsLiked(ctx context.Context, userID, postID bson.ObjectID, commentID *bson.ObjectID) (bool, error)
}

type CommentRepository interface {
	Insert(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Comment, error)
	// ListByPost pages newest first. after is the decoded cursor, zero for the first page.
	ListByPost(ctx context.Context, postID bson.ObjectID, after *CommentCursor, limit int64) ([]models.Comment, error)
	IncLikeCount(ctx context.Context, id bson.ObjectID) error
}

type CommentCursor struct {
	CreatedAt time.Time
	ID        bson.ObjectID
}

// TxRunner runs fn so that every store write made with the ctx it receives
// commits or aborts together.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
