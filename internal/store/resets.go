package store

import (
	"context"
	"time"

	"stichting-asha/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResetStore struct {
	coll *mongo.Collection
}

func NewResetStore(coll *mongo.Collection) *ResetStore {
	return &ResetStore{coll: coll}
}

func (s *ResetStore) Insert(ctx context.Context, reset *models.PasswordReset) error {
	reset.Email = NormalizeEmail(reset.Email)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.InsertOne(ctx, reset)
	if err != nil {
		return translate("insert password reset", err)
	}
	reset.ID = insertedID(result)
	return nil
}

// FindValid returns the unused ticket for token that expires after now.
// Used, expired and unknown tokens all yield ErrNotFound.
func (s *ResetStore) FindValid(ctx context.Context, token string, now time.Time) (*models.PasswordReset, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"token":   token,
		"used":    false,
		"expires": bson.M{"$gt": now},
	}
	var reset models.PasswordReset
	if err := s.coll.FindOne(ctx, filter).Decode(&reset); err != nil {
		return nil, translate("find password reset", err)
	}
	return &reset, nil
}

// Claim marks the usable ticket for token as used and returns it. Only one
// caller can claim a ticket; everyone else gets ErrNotFound.
func (s *ResetStore) Claim(ctx context.Context, token string, now time.Time) (*models.PasswordReset, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"token":   token,
		"used":    false,
		"expires": bson.M{"$gt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var reset models.PasswordReset
	err := s.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"used": true}}, opts).Decode(&reset)
	if err != nil {
		return nil, translate("claim password reset", err)
	}
	return &reset, nil
}

// Release makes a claimed ticket usable again after a failed reset.
func (s *ResetStore) Release(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"used": false}})
	return translate("release password reset", err)
}
