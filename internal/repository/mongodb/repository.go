package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stockboard/internal/domain/models"
)

const (
	defaultHistoryLimit = 30
	// MaxHistoryLimit bounds a single history query.
	MaxHistoryLimit = 500
)

// Repository defines the interface for metrics history storage.
type Repository interface {
	SaveMetricsSnapshot(ctx context.Context, snapshot models.MetricsSnapshot) error
	ListMetricsSnapshots(ctx context.Context, limit int) ([]models.MetricsSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "metrics_snapshots",
	}, nil
}

// SaveMetricsSnapshot stores one dashboard reading.
func (r *MongoDBRepository) SaveMetricsSnapshot(ctx context.Context, snapshot models.MetricsSnapshot) error {
	_, err := r.collection().InsertOne(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to insert metrics snapshot: %w", err)
	}
	return nil
}

// ListMetricsSnapshots returns the most recent readings, newest first.
func (r *MongoDBRepository) ListMetricsSnapshots(ctx context.Context, limit int) ([]models.MetricsSnapshot, error) {
	limit = ClampHistoryLimit(limit)

	opts := options.Find().
		SetSort(bson.D{{Key: "taken_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var snapshots []models.MetricsSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode metrics snapshots: %w", err)
	}
	if snapshots == nil {
		snapshots = []models.MetricsSnapshot{}
	}
	return snapshots, nil
}

// ClampHistoryLimit maps non-positive limits to the default and caps the rest at MaxHistoryLimit.
func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}
