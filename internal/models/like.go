package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Like targets a post, or a comment on that post when CommentID is set.
type Like struct {
	ID        bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID    bson.ObjectID  `json:"userId" bson:"user_id"`
	PostID    bson.ObjectID  `json:"postId" bson:"post_id"`
	CommentID *bson.ObjectID `json:"commentId" bson:"comment_id"`
	CreatedAt time.Time      `json:"createdAt" bson:"created_at"`
}
