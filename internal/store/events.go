package store

import (
	"context"

	"stichting-asha/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventStore struct {
	coll *mongo.Collection
}

func NewEventStore(coll *mongo.Collection) *EventStore {
	return &EventStore{coll: coll}
}

var eventOrder = bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}

// List returns every event ordered by date, then time.
func (s *EventStore) List(ctx context.Context) ([]models.Event, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(eventOrder))
	if err != nil {
		return nil, translate("list events", err)
	}
	return decodeAll[models.Event](ctx, cursor, "decode events")
}

func (s *EventStore) ListBySeries(ctx context.Context, seriesID string) ([]models.Event, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{"seriesId": seriesID}, options.Find().SetSort(eventOrder))
	if err != nil {
		return nil, translate("list series events", err)
	}
	return decodeAll[models.Event](ctx, cursor, "decode series events")
}

func (s *EventStore) Get(ctx context.Context, id string) (*models.Event, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var event models.Event
	if err := s.coll.FindOne(ctx, stringIDFilter(id)).Decode(&event); err != nil {
		return nil, translate("get event", err)
	}
	return &event, nil
}

// Insert assigns a fresh id when the event has none.
func (s *EventStore) Insert(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = primitive.NewObjectID().Hex()
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.coll.InsertOne(ctx, event)
	return translate("insert event", err)
}

func (s *EventStore) InsertMany(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]interface{}, len(events))
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = primitive.NewObjectID().Hex()
		}
		docs[i] = events[i]
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.coll.InsertMany(ctx, docs)
	return translate("insert events", err)
}

// Replace overwrites the whole document. The stored _id is kept as is so
// legacy ObjectID ids survive the write.
func (s *EventStore) Replace(ctx context.Context, event *models.Event) error {
	doc := *event
	doc.ID = ""

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.ReplaceOne(ctx, stringIDFilter(event.ID), doc)
	if err != nil {
		return translate("replace event", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *EventStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.DeleteOne(ctx, stringIDFilter(id))
	if err != nil {
		return translate("delete event", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSeries copies the shared fields onto every occurrence of a series.
func (s *EventStore) UpdateSeries(ctx context.Context, seriesID string, fields models.SharedFields) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": fields}
	result, err := s.coll.UpdateMany(ctx, bson.M{"seriesId": seriesID}, update)
	if err != nil {
		return 0, translate("update series events", err)
	}
	return result.ModifiedCount, nil
}

func (s *EventStore) DeleteSeries(ctx context.Context, seriesID string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.DeleteMany(ctx, bson.M{"seriesId": seriesID})
	if err != nil {
		return 0, translate("delete series events", err)
	}
	return result.DeletedCount, nil
}

// AssignSeries links existing events to a series. Used when legacy
// groups are migrated.
func (s *EventStore) AssignSeries(ctx context.Context, ids []string, seriesID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in := bson.A{}
	for _, id := range ids {
		in = append(in, id)
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			in = append(in, oid)
		}
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": in}},
		bson.M{"$set": bson.M{"seriesId": seriesID}},
	)
	if err != nil {
		return 0, translate("assign series", err)
	}
	return result.ModifiedCount, nil
}
