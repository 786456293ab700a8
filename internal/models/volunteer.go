package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VolunteerStatus string

const (
	VolunteerPending  VolunteerStatus = "pending"
	VolunteerApproved VolunteerStatus = "approved"
	VolunteerDenied   VolunteerStatus = "denied"
)

func (s VolunteerStatus) IsValid() bool {
	switch s {
	case VolunteerPending, VolunteerApproved, VolunteerDenied:
		return true
	}
	return false
}

// Admin decisions on an application.
const (
	VolunteerActionApprove = "approve"
	VolunteerActionReject  = "reject"
)

// StatusForAction maps an admin action to the resulting status.
func StatusForAction(action string) (VolunteerStatus, bool) {
	switch action {
	case VolunteerActionApprove:
		return VolunteerApproved, true
	case VolunteerActionReject:
		return VolunteerDenied, true
	}
	return "", false
}

type Volunteer struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	FirstName        string             `bson:"firstName" json:"firstName"`
	LastName         string             `bson:"lastName" json:"lastName"`
	Email            string             `bson:"email" json:"email"`
	PhoneNumber      string             `bson:"phoneNumber" json:"phoneNumber"`
	Message          string             `bson:"message" json:"message"`
	CV               *Attachment        `bson:"cv,omitempty" json:"cv,omitempty"`
	MotivationLetter *Attachment        `bson:"motivationLetter,omitempty" json:"motivationLetter,omitempty"`
	Status           VolunteerStatus    `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (v *Volunteer) FullName() string {
	return v.FirstName + " " + v.LastName
}

// File returns the attachment named by the file sub-route.
func (v *Volunteer) File(kind string) *Attachment {
	switch kind {
	case "cv":
		return v.CV
	case "motivationLetter":
		return v.MotivationLetter
	}
	return nil
}
