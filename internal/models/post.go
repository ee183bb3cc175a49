package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type PostStatus string

const (
	PostPending  PostStatus = "pending"
	PostApproved PostStatus = "approved"
	PostRejected PostStatus = "rejected"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostPending, PostApproved, PostRejected:
		return true
	}
	return false
}

// Terminal reports whether no further moderation transition is possible.
func (s PostStatus) Terminal() bool {
	return s == PostApproved || s == PostRejected
}

type Post struct {
	ID              bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	AuthorID        bson.ObjectID  `json:"authorId" bson:"author_id"`
	Title           string         `json:"title" bson:"title"`
	Summary         string         `json:"summary" bson:"summary"`
	Content         string         `json:"content" bson:"content"`
	Tags            []string       `json:"tags,omitempty" bson:"tags,omitempty"`
	Status          PostStatus     `json:"status" bson:"status"`
	CreatedAt       time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updated_at"`
	ApprovedAt      *time.Time     `json:"approvedAt,omitempty" bson:"approved_at,omitempty"`
	ApprovedBy      *bson.ObjectID `json:"approvedBy,omitempty" bson:"approved_by,omitempty"`
	RejectedAt      *time.Time     `json:"rejectedAt,omitempty" bson:"rejected_at,omitempty"`
	RejectedBy      *bson.ObjectID `json:"rejectedBy,omitempty" bson:"rejected_by,omitempty"`
	RejectionReason string         `json:"rejectionReason,omitempty" bson:"rejection_reason,omitempty"`
	LikeCount       int64          `json:"likeCount" bson:"like_count"`
	CommentCount    int64          `json:"commentCount" bson:"comment_count"`
	ViewCount       int64          `json:"viewCount" bson:"view_count"`
}

// Counter names a monotonic post counter field.
type Counter string

const (
	CounterLikes    Counter = "like_count"
	CounterComments Counter = "comment_count"
	CounterViews    Counter = "view_count"
)

// Transition is the set of fields written when a post leaves pending.
type Transition struct {
	To     PostStatus
	At     time.Time
	By     bson.ObjectID
	Reason string
}
