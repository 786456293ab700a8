// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"time"

	"stichting-asha/internal/config"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	CollectionUsers          = "users"
	CollectionEvents         = "events"
	CollectionSeries         = "series"
	CollectionProjects       = "projects"
	CollectionVolunteers     = "volunteers"
	CollectionNotices        = "notices"
	CollectionActivities     = "activities"
	CollectionPasswordResets = "password_resets"
	CollectionNewsletter     = "newsletter_posts"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	log      logrus.FieldLogger
}

func NewMongoDB(cfg *config.Config, log logrus.FieldLogger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeoutDuration())
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(50).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.WithField("database", cfg.DatabaseName).Info("connected to MongoDB")

	return &MongoDB{
		Client:   client,
		Database: client.Database(cfg.DatabaseName),
		log:      log,
	}, nil
}

// Ping is used by the readiness probe.
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	m.log.Info("disconnected from MongoDB")
	return nil
}

// CreateIndexes creates the indexes of every collection.
// Keys use bson.D so that compound index order is preserved.
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		CollectionEvents: {
			{
				// listing order
				Keys: bson.D{
					{Key: "date", Value: 1},
					{Key: "time", Value: 1},
				},
			},
			{
				Keys: bson.D{{Key: "seriesId", Value: 1}},
			},
		},
		CollectionSeries: {
			{
				Keys: bson.D{{Key: "startDate", Value: 1}},
			},
		},
		CollectionProjects: {
			{
				Keys: bson.D{{Key: "projectDate", Value: -1}},
			},
		},
		CollectionVolunteers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "status", Value: 1},
					{Key: "createdAt", Value: -1},
				},
			},
		},
		CollectionNotices: {
			{
				Keys: bson.D{
					{Key: "isActive", Value: 1},
					{Key: "expirationDate", Value: 1},
					{Key: "createdAt", Value: -1},
				},
			},
		},
		CollectionActivities: {
			{
				Keys: bson.D{{Key: "createdAt", Value: -1}},
			},
		},
		CollectionPasswordResets: {
			{
				Keys:    bson.D{{Key: "token", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				// expired tickets are removed by the server a day later
				Keys:    bson.D{{Key: "expires", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(24 * 60 * 60),
			},
		},
		CollectionNewsletter: {
			{
				Keys: bson.D{{Key: "createdAt", Value: -1}},
			},
		},
	}

	for name, models := range indexes {
		if _, err := m.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", name, err)
		}
	}

	m.log.Info("indexes created for all collections")
	return nil
}
