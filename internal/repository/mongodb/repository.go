package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/repository"
)

const runsCollection = "smoke_runs"

// RunRepository stores smoke run summaries in MongoDB.
type RunRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewRunRepository connects to MongoDB and verifies the connection.
func NewRunRepository(ctx context.Context, uri string, dbName string) (*RunRepository, error) {
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

	return &RunRepository{
		client: client,
		coll:   client.Database(dbName).Collection(runsCollection),
	}, nil
}

func newWithCollection(coll *mongo.Collection) *RunRepository {
	return &RunRepository{client: coll.Database().Client(), coll: coll}
}

// EnsureIndexes creates the timestamp index used for newest-first lookups and a unique run id index.
func (r *RunRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "run_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create run indexes: %w", err)
	}
	return nil
}

// SaveRun inserts a run summary.
func (r *RunRepository) SaveRun(ctx context.Context, summary models.Summary) error {
	if _, err := r.coll.InsertOne(ctx, summary); err != nil {
		return fmt.Errorf("failed to insert smoke run: %w", err)
	}
	return nil
}

// LatestRun returns the newest run with its results.
func (r *RunRepository) LatestRun(ctx context.Context) (models.Summary, error) {
	var summary models.Summary
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	err := r.coll.FindOne(ctx, bson.D{}, opts).Decode(&summary)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Summary{}, repository.ErrNoRuns
	}
	if err != nil {
		return models.Summary{}, fmt.Errorf("find latest smoke run: %w", err)
	}
	return summary, nil
}

// ListRuns returns recent runs, newest first, with results projected out.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]models.Summary, error) {
	if limit <= 0 {
		limit = repository.DefaultListLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.D{{Key: "results", Value: 0}})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list smoke runs: %w", err)
	}
	defer cursor.Close(ctx)

	runs := make([]models.Summary, 0, limit)
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("decode smoke runs: %w", err)
	}
	return runs, nil
}

// Close closes the MongoDB connection.
func (r *RunRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
