package store

import (
	"context"
	"time"

	"stichting-asha/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type VolunteerStore struct {
	coll *mongo.Collection
}

func NewVolunteerStore(coll *mongo.Collection) *VolunteerStore {
	return &VolunteerStore{coll: coll}
}

// List leaves out attachment payloads; file metadata is kept. An empty
// status or "all" returns every application.
func (s *VolunteerStore) List(ctx context.Context, status string) ([]models.Volunteer, error) {
	filter := bson.M{}
	if status != "" && status != "all" {
		filter["status"] = status
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"cv.data": 0, "motivationLetter.data": 0})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate("list volunteers", err)
	}
	return decodeAll[models.Volunteer](ctx, cursor, "decode volunteers")
}

func (s *VolunteerStore) Get(ctx context.Context, id string) (*models.Volunteer, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var volunteer models.Volunteer
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&volunteer); err != nil {
		return nil, translate("get volunteer", err)
	}
	return &volunteer, nil
}

// Insert fails with ErrDuplicate when the e-mail address already applied.
func (s *VolunteerStore) Insert(ctx context.Context, volunteer *models.Volunteer) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.InsertOne(ctx, volunteer)
	if err != nil {
		return translate("insert volunteer", err)
	}
	volunteer.ID = insertedID(result)
	return nil
}

func (s *VolunteerStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := s.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate("count volunteers", err)
	}
	return n > 0, nil
}

func (s *VolunteerStore) SetStatus(ctx context.Context, id string, status models.VolunteerStatus) (*models.Volunteer, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"cv.data": 0, "motivationLetter.data": 0})

	var volunteer models.Volunteer
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&volunteer); err != nil {
		return nil, translate("update volunteer status", err)
	}
	return &volunteer, nil
}

func (s *VolunteerStore) Delete(ctx context.Context, id string) error {
	return deleteByObjectID(ctx, s.coll, id, "delete volunteer")
}
