// Package store holds the MongoDB repositories. Every write touches a
// single collection and nothing runs inside a transaction.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

const opTimeout = 10 * time.Second

// withTimeout bounds a single store round trip.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// objectID parses a hex id. Malformed ids cannot exist in the store and
// are reported as ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

// stringIDFilter matches a string _id. Rows written before ids became
// strings carry an ObjectID, so a 24-hex id matches both forms.
func stringIDFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

// translate maps driver errors onto the package sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor, op string) ([]T, error) {
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, translate(op, err)
	}
	return out, nil
}

func insertedID(result *mongo.InsertOneResult) primitive.ObjectID {
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		return oid
	}
	return primitive.NilObjectID
}

func deleteByObjectID(ctx context.Context, coll *mongo.Collection, id, op string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translate(op, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
