package store

import (
	"context"
	"strings"
	"time"

	"stichting-asha/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(coll *mongo.Collection) *UserStore {
	return &UserStore{coll: coll}
}

// NormalizeEmail is applied to every e-mail used as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&user); err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate("list users", err)
	}
	return decodeAll[models.User](ctx, cursor, "decode users")
}

func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		return translate("insert user", err)
	}
	user.ID = insertedID(result)
	return nil
}

// UpdatePassword stores a new hash for the user with the given e-mail.
func (s *UserStore) UpdatePassword(ctx context.Context, email, hash string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.UpdateOne(ctx,
		bson.M{"email": NormalizeEmail(email)},
		bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now()}},
	)
	if err != nil {
		return translate("update password", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// BackfillRoles gives every user without a known role the fallback role.
func (s *UserStore) BackfillRoles(ctx context.Context, fallback models.Role) (int64, error) {
	known := bson.A{}
	for _, r := range models.AllRoles() {
		known = append(known, string(r))
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.UpdateMany(ctx,
		bson.M{"$or": bson.A{
			bson.M{"role": bson.M{"$exists": false}},
			bson.M{"role": bson.M{"$nin": known}},
		}},
		bson.M{"$set": bson.M{"role": fallback, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, translate("backfill roles", err)
	}
	return result.ModifiedCount, nil
}
