package store

import (
	"context"

	"stichting-asha/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sort keys accepted by NewsletterStore.List.
var newsletterSortFields = map[string]bool{
	"createdAt": true,
	"title":     true,
}

type NewsletterStore struct {
	coll *mongo.Collection
}

func NewNewsletterStore(coll *mongo.Collection) *NewsletterStore {
	return &NewsletterStore{coll: coll}
}

// List sorts by field, falling back to createdAt for unknown fields.
func (s *NewsletterStore) List(ctx context.Context, field string, ascending bool) ([]models.NewsletterPost, error) {
	if !newsletterSortFields[field] {
		field = "createdAt"
	}
	order := -1
	if ascending {
		order = 1
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: field, Value: order}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate("list newsletter posts", err)
	}
	return decodeAll[models.NewsletterPost](ctx, cursor, "decode newsletter posts")
}

func (s *NewsletterStore) Get(ctx context.Context, id string) (*models.NewsletterPost, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var post models.NewsletterPost
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&post); err != nil {
		return nil, translate("get newsletter post", err)
	}
	return &post, nil
}

func (s *NewsletterStore) Insert(ctx context.Context, post *models.NewsletterPost) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.InsertOne(ctx, post)
	if err != nil {
		return translate("insert newsletter post", err)
	}
	post.ID = insertedID(result)
	return nil
}

func (s *NewsletterStore) Replace(ctx context.Context, post *models.NewsletterPost) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	if err != nil {
		return translate("replace newsletter post", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NewsletterStore) Delete(ctx context.Context, id string) error {
	return deleteByObjectID(ctx, s.coll, id, "delete newsletter post")
}
