package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notice is a homepage banner.
type Notice struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title          string             `bson:"title" json:"title"`
	Message        string             `bson:"message" json:"message"`
	Roles          []string           `bson:"roles" json:"roles"`
	ExpirationDate time.Time          `bson:"expirationDate" json:"expirationDate"`
	Author         string             `bson:"author" json:"author"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (n *Notice) IsExpired(now time.Time) bool {
	return !now.Before(n.ExpirationDate)
}

// VisibleTo reports whether the banner should be shown to a viewer with
// the given role at time now. An empty role means an anonymous visitor;
// notices without roles are public.
func (n *Notice) VisibleTo(role Role, now time.Time) bool {
	if !n.IsActive || n.IsExpired(now) {
		return false
	}
	if len(n.Roles) == 0 {
		return true
	}
	for _, r := range n.Roles {
		if Role(r) == role {
			return true
		}
	}
	return false
}
