package quota

import (
	"context"
	"time"
)

// Ledger stores per-user, per-day post counts.
//
// Consume must be atomic: it increments the count for (userID, day) only when
// the stored count is below limit. It returns the count after the increment and
// true, or the limit and false when the ceiling was already reached.
type Ledger interface {
	Usage(ctx context.Context, userID string, day Day) (int, error)
	Consume(ctx context.Context, userID string, day Day, limit int, at time.Time) (int, bool, error)
	Release(ctx context.Context, userID string, day Day) error
}

// Entry is the stored shape of a ledger row.
type Entry struct {
	UserID     string    `bson:"user_id" json:"userId" dynamodbav:"user_id"`
	Day        string    `bson:"day" json:"day" dynamodbav:"day"`
	DayStart   time.Time `bson:"day_start" json:"dayStart" dynamodbav:"day_start"`
	PostCount  int       `bson:"post_count" json:"postCount" dynamodbav:"post_count"`
	LastPostAt time.Time `bson:"last_post_at" json:"lastPostAt" dynamodbav:"last_post_at"`
}
