package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityType string

const (
	ActivityCreate ActivityType = "create"
	ActivityUpdate ActivityType = "update"
	ActivityDelete ActivityType = "delete"
)

// Entity names as shown on the dashboard.
const (
	EntityEvent      = "evenement"
	EntitySeries     = "reeks"
	EntityProject    = "project"
	EntityVolunteer  = "vrijwilliger"
	EntityNotice     = "mededeling"
	EntityNewsletter = "nieuwsbrief"
	EntityUser       = "gebruiker"
)

// Activity is an append-only audit entry. Recording is best effort.
type Activity struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Type            ActivityType       `bson:"type" json:"type"`
	EntityType      string             `bson:"entityType" json:"entityType"`
	EntityID        string             `bson:"entityId" json:"entityId"`
	EntityName      string             `bson:"entityName" json:"entityName"`
	PerformedBy     string             `bson:"performedBy" json:"performedBy"`
	PerformedByName string             `bson:"performedByName" json:"performedByName"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// Message renders the Dutch dashboard line for the activity.
func (a *Activity) Message() string {
	switch a.Type {
	case ActivityCreate:
		return a.PerformedByName + " heeft een nieuwe " + a.EntityType + " aangemaakt: " + a.EntityName
	case ActivityUpdate:
		return a.PerformedByName + " heeft " + a.EntityType + " bijgewerkt: " + a.EntityName
	case ActivityDelete:
		return a.PerformedByName + " heeft " + a.EntityType + " verwijderd: " + a.EntityName
	}
	return a.PerformedByName + " heeft een actie uitgevoerd op " + a.EntityType + ": " + a.EntityName
}
