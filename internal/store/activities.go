package store

import (
	"context"

	"stichting-asha/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActivityStore struct {
	coll *mongo.Collection
}

func NewActivityStore(coll *mongo.Collection) *ActivityStore {
	return &ActivityStore{coll: coll}
}

func (s *ActivityStore) Insert(ctx context.Context, activity *models.Activity) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.InsertOne(ctx, activity)
	if err != nil {
		return translate("insert activity", err)
	}
	activity.ID = insertedID(result)
	return nil
}

// Recent returns at most limit activities, newest first.
func (s *ActivityStore) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate("list activities", err)
	}
	return decodeAll[models.Activity](ctx, cursor, "decode activities")
}
