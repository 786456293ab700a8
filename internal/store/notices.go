package store

import (
	"context"
	"time"

	"stichting-asha/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NoticeStore struct {
	coll *mongo.Collection
}

func NewNoticeStore(coll *mongo.Collection) *NoticeStore {
	return &NoticeStore{coll: coll}
}

func (s *NoticeStore) List(ctx context.Context) ([]models.Notice, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate("list notices", err)
	}
	return decodeAll[models.Notice](ctx, cursor, "decode notices")
}

// Active returns active notices that have not expired at now, newest first.
func (s *NoticeStore) Active(ctx context.Context, now time.Time) ([]models.Notice, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"isActive":       true,
		"expirationDate": bson.M{"$gt": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate("list active notices", err)
	}
	return decodeAll[models.Notice](ctx, cursor, "decode notices")
}

func (s *NoticeStore) Get(ctx context.Context, id string) (*models.Notice, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var notice models.Notice
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&notice); err != nil {
		return nil, translate("get notice", err)
	}
	return &notice, nil
}

func (s *NoticeStore) Insert(ctx context.Context, notice *models.Notice) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.InsertOne(ctx, notice)
	if err != nil {
		return translate("insert notice", err)
	}
	notice.ID = insertedID(result)
	return nil
}

func (s *NoticeStore) Replace(ctx context.Context, notice *models.Notice) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.ReplaceOne(ctx, bson.M{"_id": notice.ID}, notice)
	if err != nil {
		return translate("replace notice", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NoticeStore) Delete(ctx context.Context, id string) error {
	return deleteByObjectID(ctx, s.coll, id, "delete notice")
}
