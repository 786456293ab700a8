package store

import (
	"context"

	"stichting-asha/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SeriesStore struct {
	coll *mongo.Collection
}

func NewSeriesStore(coll *mongo.Collection) *SeriesStore {
	return &SeriesStore{coll: coll}
}

func (s *SeriesStore) Get(ctx context.Context, id string) (*models.Series, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var series models.Series
	if err := s.coll.FindOne(ctx, stringIDFilter(id)).Decode(&series); err != nil {
		return nil, translate("get series", err)
	}
	return &series, nil
}

func (s *SeriesStore) Insert(ctx context.Context, series *models.Series) error {
	if series.ID == "" {
		series.ID = primitive.NewObjectID().Hex()
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.coll.InsertOne(ctx, series)
	return translate("insert series", err)
}

func (s *SeriesStore) Replace(ctx context.Context, series *models.Series) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.ReplaceOne(ctx, stringIDFilter(series.ID), series)
	if err != nil {
		return translate("replace series", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SeriesStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.DeleteOne(ctx, stringIDFilter(id))
	if err != nil {
		return translate("delete series", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
