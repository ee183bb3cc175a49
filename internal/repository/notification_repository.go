package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"community-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoNotificationRepository struct {
	Col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{Col: db.Collection(ColNotifications)}
}

func (r *MongoNotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = bson.NewObjectID()
	}
	_, err := r.Col.InsertOne(ctx, n)
	return err
}

// InsertMany writes a fan-out batch with one unordered bulk write.
func (r *MongoNotificationRepository) InsertMany(ctx context.Context, ns []models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(ns))
	for i := range ns {
		if ns[i].UserID.IsZero() {
			return fmt.Errorf("insert notifications: zero user id at %d", i)
		}
		if ns[i].ID.IsZero() {
			ns[i].ID = bson.NewObjectID()
		}
		writes = append(writes, mongo.NewInsertOneModel().SetDocument(ns[i]))
	}
	_, err := r.Col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *MongoNotificationRepository) ListByUser(ctx context.Context, userID bson.ObjectID, f NotificationFilter) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID}
	if f.UnreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
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

	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoNotificationRepository) CountUnread(ctx context.Context, userID bson.ObjectID) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}

func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id, userID bson.ObjectID, at time.Time) (*models.Notification, error) {
	filter := bson.M{"_id": id, "user_id": userID}
	update := bson.M{"$set": bson.M{"read": true, "read_at": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	if err := r.Col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, userID bson.ObjectID, at time.Time) (int64, error) {
	res, err := r.Col.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": at}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoNotificationRepository) Delete(ctx context.Context, id, userID bson.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
