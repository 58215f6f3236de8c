package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTransactor runs callbacks inside a MongoDB multi-document transaction.
// Transactions need a replica set or a sharded cluster.
type MongoTransactor struct {
	Client *mongo.Client
}

func NewMongoTransactor(client *mongo.Client) *MongoTransactor {
	return &MongoTransactor{Client: client}
}

// WithTransaction commits every write fn makes through its ctx, or none of them.
// Transient conflicts with other transactions are retried by the driver.
func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.Client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	if _, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	return nil
}
