package repository

import (
	"context"
	"errors"

	"community-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoPostRepository struct {
	Col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{Col: db.Collection(ColPosts)}
}

func (r *MongoPostRepository) Insert(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	_, err := r.Col.InsertOne(ctx, p)
	return err
}

func (r *MongoPostRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoPostRepository) Find(ctx context.Context, f PostFilter) ([]models.Post, error) {
	filter := bson.M{}
	if f.AuthorID != nil {
		filter["author_id"] = *f.AuthorID
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	if f.Offset > 0 {
		opts.SetSkip(f.Offset)
	}

	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Transition is a compare-and-swap on status: the filter only matches while
// the post is still in from, so concurrent moderators cannot both succeed.
func (r *MongoPostRepository) Transition(ctx context.Context, id bson.ObjectID, from models.PostStatus, t models.Transition) (bool, error) {
	set := bson.M{
		"status":     t.To,
		"updated_at": t.At,
	}
	switch t.To {
	case models.PostApproved:
		set["approved_at"] = t.At
		set["approved_by"] = t.By
	case models.PostRejected:
		set["rejected_at"] = t.At
		set["rejected_by"] = t.By
		set["rejection_reason"] = t.Reason
	}

	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoPostRepository) Revert(ctx context.Context, id bson.ObjectID, t models.Transition) (bool, error) {
	filter := bson.M{"_id": id, "status": t.To, "updated_at": t.At}
	switch t.To {
	case models.PostApproved:
		filter["approved_by"] = t.By
	case models.PostRejected:
		filter["rejected_by"] = t.By
	}
	res, err := r.Col.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"status": models.PostPending},
		"$unset": bson.M{
			"approved_at":      "",
			"approved_by":      "",
			"rejected_at":      "",
			"rejected_by":      "",
			"rejection_reason": "",
		},
	})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoPostRepository) IncCounter(ctx context.Context, id bson.ObjectID, c models.Counter) error {
	res, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{string(c): 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
