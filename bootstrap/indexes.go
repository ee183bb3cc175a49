package bootstrap

import (
	"context"
	"fmt"

	"community-backend/internal/quota"
	"community-backend/internal/repository"

	"github.com/gofiber/fiber/v2/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Indexes lists every index the application relies on, per collection.
// The unique ones back correctness: one quota row per user and day, one like
// per user and target, one account per email.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		quota.CollectionName: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "day", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_user_day"),
			},
		},
		repository.ColLikes: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "post_id", Value: 1},
					{Key: "comment_id", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("uniq_user_post_comment"),
			},
		},
		repository.ColUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_email"),
			},
			{
				Keys:    bson.D{{Key: "is_admin", Value: 1}},
				Options: options.Index().SetName("is_admin"),
			},
		},
		repository.ColPosts: {
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("status_created"),
			},
			{
				Keys:    bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("author_created"),
			},
		},
		repository.ColComments: {
			{
				Keys:    bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
				Options: options.Index().SetName("post_created"),
			},
		},
		repository.ColNotifications: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("user_read_created"),
			},
		},
	}
}

// EnsureIndexes creates the indexes from Indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for col, models := range Indexes() {
		names, err := db.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", col, err)
		}
		log.Debugf("indexes on %s: %v", col, names)
	}
	return nil
}
