package runlog

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/cobotgen/pkg/config"
	"github.com/matzehuels/cobotgen/pkg/errors"
)

// MongoExporter mirrors the run log into a MongoDB collection so datasets
// from many runs can be queried together.
type MongoExporter struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoExporter connects to the configured MongoDB deployment.
func NewMongoExporter(ctx context.Context, cfg config.MongoConfig) (*MongoExporter, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeExport, err, "ping mongodb")
	}
	return &MongoExporter{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Export inserts all records in one batch, preserving order.
func (e *MongoExporter) Export(ctx context.Context, records []ImageRecord) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]any, len(records))
	for i, rec := range records {
		docs[i] = rec
	}
	if _, err := e.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "insert %d records", len(records))
	}
	return nil
}

// Close disconnects from MongoDB.
func (e *MongoExporter) Close(ctx context.Context) error {
	return e.client.Disconnect(ctx)
}
