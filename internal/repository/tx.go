package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoTx runs functions inside a session transaction. Transactions need a
// replica set; with Enabled false fn runs directly against the client.
type MongoTx struct {
	Client  *mongo.Client
	Enabled bool
}

func (t *MongoTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.Enabled {
		return fn(ctx)
	}
	sess, err := t.Client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc context.Context) (any, error) {
		return nil, fn(sc)
	})
	return err
}
