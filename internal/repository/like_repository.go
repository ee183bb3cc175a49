package repository

import (
	"context"

	"community-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoLikeRepository relies on the unique (user_id, post_id, comment_id) index
// to reject repeat likes.
type MongoLikeRepository struct {
	Col *mongo.Collection
}

func NewLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{Col: db.Collection(ColLikes)}
}

func (r *MongoLikeRepository) Insert(ctx context.Context, l *models.Like) (bool, error) {
	if l.ID.IsZero() {
		l.ID = bson.NewObjectID()
	}
	_, err := r.Col.InsertOne(ctx, l)
	if err == nil {
		return false, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	return false, err
}

func (r *MongoLikeRepository) IsLiked(ctx context.Context, userID, postID bson.ObjectID, commentID *bson.ObjectID) (bool, error) {
	filter := bson.M{"user_id": userID, "post_id": postID, "comment_id": nil}
	if commentID != nil {
		filter["comment_id"] = *commentID
	}
	n, err := r.Col.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
