// internal/models/series.go
package models

import "time"

// Series owns the occurrences of a recurring agenda item. Occurrences are
// ordinary events whose SeriesID points back here.
type Series struct {
	ID          string    `bson:"_id,omitempty" json:"_id,omitempty"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Type        EventType `bson:"type" json:"type"`
	StartTime   string    `bson:"startTime" json:"startTime"`
	EndTime     string    `bson:"endTime" json:"endTime"`
	Location    string    `bson:"location" json:"location"`
	Zaal        string    `bson:"zaal" json:"zaal"`
	Author      string    `bson:"author" json:"author"`
	StartDate   string    `bson:"startDate" json:"startDate"`

	RecurringDays      []int `bson:"recurringDays,omitempty" json:"recurringDays,omitempty"`
	RecurringWeeks     *int  `bson:"recurringWeeks,omitempty" json:"recurringWeeks,omitempty"`
	RecurringDayOfWeek *int  `bson:"recurringDayOfWeek,omitempty" json:"recurringDayOfWeek,omitempty"`
	Count              int   `bson:"count,omitempty" json:"count,omitempty"`

	// RRule is the RFC 5545 rule the occurrences were expanded from.
	RRule string `bson:"rrule" json:"rrule"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SharedFields are copied onto every occurrence when the series changes.
type SharedFields struct {
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	StartTime   string    `bson:"startTime"`
	EndTime     string    `bson:"endTime"`
	Time        string    `bson:"time"`
	Location    string    `bson:"location"`
	Zaal        string    `bson:"zaal"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (s *Series) Shared() SharedFields {
	return SharedFields{
		Title:       s.Title,
		Description: s.Description,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Time:        s.StartTime,
		Location:    s.Location,
		Zaal:        s.Zaal,
		UpdatedAt:   s.UpdatedAt,
	}
}
