package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type NotiType string

const (
	NotiPostApproved   NotiType = "post_approved"
	NotiPostRejected   NotiType = "post_rejected"
	NotiLike           NotiType = "like"
	NotiComment        NotiType = "comment"
	NotiCommentReplied NotiType = "comment_replied"
	NotiCommentLiked   NotiType = "comment_liked"
	NotiNewUser        NotiType = "new_user"
)

type Notification struct {
	ID         bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     bson.ObjectID  `bson:"user_id" json:"userId"`
	Type       NotiType       `bson:"type" json:"type"`
	Title      string         `bson:"title" json:"title"`
	Message    string         `bson:"message" json:"message"`
	Read       bool           `bson:"read" json:"read"`
	ReadAt     *time.Time     `bson:"read_at,omitempty" json:"readAt,omitempty"`
	CreatedAt  time.Time      `bson:"created_at" json:"createdAt"`
	PostID     *bson.ObjectID `bson:"post_id,omitempty" json:"postId,omitempty"`
	CommentID  *bson.ObjectID `bson:"comment_id,omitempty" json:"commentId,omitempty"`
	FromUserID *bson.ObjectID `bson:"from_user_id,omitempty" json:"fromUserId,omitempty"`
}

// NotiParams carries what a notification text is built from.
type NotiParams struct {
	PostTitle  string
	Reason     string
	ActorName  string
	Excerpt    string
	PostID     *bson.ObjectID
	CommentID  *bson.ObjectID
	FromUserID *bson.ObjectID
}
