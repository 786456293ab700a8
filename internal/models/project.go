package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Project struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	LongDescription string             `bson:"longDescription,omitempty" json:"longDescription,omitempty"`
	Image           *Attachment        `bson:"image,omitempty" json:"image,omitempty"`
	Document        *Attachment        `bson:"document,omitempty" json:"document,omitempty"`
	ProjectDate     time.Time          `bson:"projectDate" json:"projectDate"`
	Author          string             `bson:"author" json:"author"`
	Tags            []string           `bson:"tags" json:"tags"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
