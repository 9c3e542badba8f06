package journal

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/sectorlock/pkg/cache"
	"github.com/matzehuels/sectorlock/pkg/errors"
)

// Default MongoDB location of the journal.
const (
	DefaultDatabase   = "sectorlock"
	DefaultCollection = "journal"
)

// MongoConfig configures a MongoSink.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string

	// Timeout bounds server selection. Defaults to 5s.
	Timeout time.Duration
}

// MongoSink inserts one document per event.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSink connects to MongoDB and pings the primary, retrying with
// backoff while the server is unreachable.
func NewMongoSink(ctx context.Context, cfg MongoConfig) (*MongoSink, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(cfg.Timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}

	return &MongoSink{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// NewMongoSinkWithCollection writes into an existing collection. Close
// leaves the collection's client connected.
func NewMongoSinkWithCollection(coll *mongo.Collection) *MongoSink {
	return &MongoSink{coll: coll}
}

func (s *MongoSink) Record(ctx context.Context, ev Event) error {
	if _, err := s.coll.InsertOne(ctx, ev); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "insert %s event for session %s", ev.Kind, ev.SessionID)
	}
	return nil
}

func (s *MongoSink) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
