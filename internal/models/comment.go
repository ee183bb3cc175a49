package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Comment struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	PostID    bson.ObjectID  `bson:"post_id" json:"postId"`
	UserID    bson.ObjectID  `bson:"user_id" json:"userId"`
	ParentID  *bson.ObjectID `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	Text      string         `bson:"text" json:"text"`
	LikeCount int64          `bson:"like_count" json:"likeCount"`
	CreatedAt time.Time      `bson:"created_at" json:"createdAt"`
}
