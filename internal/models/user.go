package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DisplayName falls back to the e-mail address.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// PasswordReset is a single-use reset ticket.
type PasswordReset struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Token     string             `bson:"token" json:"-"`
	Used      bool               `bson:"used" json:"used"`
	Expires   time.Time          `bson:"expires" json:"expires"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Usable is true for an unused ticket that has not yet expired.
func (p *PasswordReset) Usable(now time.Time) bool {
	return !p.Used && p.Expires.After(now)
}
