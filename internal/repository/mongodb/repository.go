package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InferenceLog is one audit entry per prediction call: sizing, timing and
// outcome, never the provenance record itself.
type InferenceLog struct {
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	Source     string    `bson:"source" json:"source"` // "manual" or "file"
	Rows       int       `bson:"rows" json:"rows"`
	DurationMs float64   `bson:"duration_ms" json:"duration_ms"`
	Status     string    `bson:"status" json:"status"`
	Error      string    `bson:"error,omitempty" json:"error,omitempty"`
}

// AuditRepository defines the interface for inference audit storage.
type AuditRepository interface {
	SaveInferenceLog(ctx context.Context, entry InferenceLog) error
}

// MongoDBRepository implements AuditRepository on MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB audit repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "inference_logs",
	}, nil
}

// SaveInferenceLog stores one audit entry.
func (r *MongoDBRepository) SaveInferenceLog(ctx context.Context, entry InferenceLog) error {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	_, err := collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert inference log: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
