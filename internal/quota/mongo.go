package quota

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const CollectionName = "post_quota"

// consumeAttempts bounds retries when two first-of-day upserts race on the
// unique (user_id, day) index.
const consumeAttempts = 3

// MongoLedger needs the unique (user_id, day) index from bootstrap.EnsureIndexes.
type MongoLedger struct {
	col *mongo.Collection
}

func NewMongoLedger(db *mongo.Database) *MongoLedger {
	return &MongoLedger{col: db.Collection(CollectionName)}
}

func (l *MongoLedger) Usage(ctx context.Context, userID string, day Day) (int, error) {
	var e Entry
	err := l.col.FindOne(ctx, bson.M{"user_id": userID, "day": day.Key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return e.PostCount, nil
}

// Consume upserts with post_count < limit in the filter. When the row is full
// the filter misses, the upsert collides with the unique index and the
// duplicate key error means the limit is reached.
func (l *MongoLedger) Consume(ctx context.Context, userID string, day Day, limit int, at time.Time) (int, bool, error) {
	if limit <= 0 {
		return limit, false, nil
	}
	filter := bson.M{
		"user_id":    userID,
		"day":        day.Key,
		"post_count": bson.M{"$lt": limit},
	}
	update := bson.M{
		"$inc":         bson.M{"post_count": 1},
		"$set":         bson.M{"last_post_at": at},
		"$setOnInsert": bson.M{"day_start": day.Start},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	for attempt := 0; attempt < consumeAttempts; attempt++ {
		var e Entry
		err := l.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&e)
		if err == nil {
			return e.PostCount, true, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return 0, false, err
		}
		// Either the row is full or a concurrent first insert won; re-read to tell.
		n, uerr := l.Usage(ctx, userID, day)
		if uerr != nil {
			return 0, false, uerr
		}
		if n >= limit {
			return limit, false, nil
		}
	}
	return limit, false, nil
}

func (l *MongoLedger) Release(ctx context.Context, userID string, day Day) error {
	_, err := l.col.UpdateOne(ctx,
		bson.M{"user_id": userID, "day": day.Key, "post_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"post_count": -1}},
	)
	return err
}
