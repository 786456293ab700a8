package store

import (
	"context"

	"stichting-asha/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectStore struct {
	coll *mongo.Collection
}

func NewProjectStore(coll *mongo.Collection) *ProjectStore {
	return &ProjectStore{coll: coll}
}

// List returns projects newest projectDate first.
func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "projectDate", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate("list projects", err)
	}
	return decodeAll[models.Project](ctx, cursor, "decode projects")
}

func (s *ProjectStore) Get(ctx context.Context, id string) (*models.Project, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var project models.Project
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&project); err != nil {
		return nil, translate("get project", err)
	}
	return &project, nil
}

func (s *ProjectStore) Insert(ctx context.Context, project *models.Project) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.InsertOne(ctx, project)
	if err != nil {
		return translate("insert project", err)
	}
	project.ID = insertedID(result)
	return nil
}

func (s *ProjectStore) Replace(ctx context.Context, project *models.Project) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.coll.ReplaceOne(ctx, bson.M{"_id": project.ID}, project)
	if err != nil {
		return translate("replace project", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	return deleteByObjectID(ctx, s.coll, id, "delete project")
}
