package quota

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// BackendConfig selects and configures a Ledger implementation.
type BackendConfig struct {
	Type        string // "mongodb", "postgresql", "dynamodb", "memory"
	Mongo       *mongo.Database
	PostgresURI string
	Dynamo      DynamoConfig
}

// NewLedger creates the ledger named by cfg.Type. The returned close func
// releases any connection the ledger owns and is never nil.
func NewLedger(ctx context.Context, cfg BackendConfig) (Ledger, func(), error) {
	noop := func() {}
	switch cfg.Type {
	case "mongodb", "":
		if cfg.Mongo == nil {
			return nil, noop, fmt.Errorf("mongodb quota backend needs a database")
		}
		return NewMongoLedger(cfg.Mongo), noop, nil
	case "postgresql", "postgres":
		l, err := NewPostgresLedger(ctx, cfg.PostgresURI)
		if err != nil {
			return nil, noop, err
		}
		return l, l.Close, nil
	case "dynamodb":
		l, err := NewDynamoLedger(cfg.Dynamo)
		if err != nil {
			return nil, noop, err
		}
		return l, noop, nil
	case "memory":
		return NewMemoryLedger(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported quota backend: %s", cfg.Type)
	}
}
