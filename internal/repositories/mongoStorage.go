package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pokedoro/internal/database"
	"pokedoro/internal/metrics"
	"pokedoro/internal/models"
)

const storageCollection = "storage"

// MongoStorage keeps the values of one browser session in MongoDB. The
// session cookie only carries the session id.
type MongoStorage struct {
	collection *mongo.Collection
	sessionID  string
}

func NewMongoStorage(db database.Service, sessionID string) *MongoStorage {
	return &MongoStorage{collection: db.Database().Collection(storageCollection), sessionID: sessionID}
}

// EnsureStorageIndexes creates the unique (session_id, key) index.
func EnsureStorageIndexes(ctx context.Context, db database.Service) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Database().Collection(storageCollection).Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create storage index: %w", err)
	}
	return nil
}

func (s *MongoStorage) Get(ctx context.Context, key string) (string, error) {
	queryType := "get"
	repository := "storage"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		metrics.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var entry models.StorageEntry
	err := s.collection.FindOne(ctx, bson.M{"session_id": s.sessionID, "key": key}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrKeyNotFound
		}
		status = "error"
		metrics.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("session_id", s.sessionID).Str("key", key).Msg("Failed to read storage entry")
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return entry.Value, nil
}

func (s *MongoStorage) Set(ctx context.Context, key, value string) error {
	queryType := "set"
	repository := "storage"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		metrics.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"session_id": s.sessionID, "key": key}
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}}
	_, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		status = "error"
		metrics.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("session_id", s.sessionID).Str("key", key).Msg("Failed to write storage entry")
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}
