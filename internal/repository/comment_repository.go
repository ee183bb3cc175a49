package repository

import (
	"context"
	"errors"

	"community-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoCommentRepository struct {
	Col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{Col: db.Collection(ColComments)}
}

func (r *MongoCommentRepository) Insert(ctx context.Context, c *models.Comment) error {
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	_, err := r.Col.InsertOne(ctx, c)
	return err
}

func (r *MongoCommentRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Comment, error) {
	var c models.Comment
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoCommentRepository) ListByPost(ctx context.Context, postID bson.ObjectID, after *CommentCursor, limit int64) ([]models.Comment, error) {
	filter := bson.M{"post_id": postID}
	if after != nil {
		filter["$or"] = []bson.M{
			{"created_at": bson.M{"$lt": after.CreatedAt}},
			{"created_at": after.CreatedAt, "_id": bson.M{"$lt": after.ID}},
		}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoCommentRepository) IncLikeCount(ctx context.Context, id bson.ObjectID) error {
	res, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"like_count": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
