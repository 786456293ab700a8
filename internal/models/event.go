// internal/models/event.go
package models

import (
	"strings"
	"time"
)

// EventType is the recurrence kind of an agenda item.
type EventType string

const (
	EventTypeEenmalig  EventType = "eenmalig"  // one-off
	EventTypeStandaard EventType = "standaard" // same weekday, fixed number of weeks
	EventTypeDagelijks EventType = "dagelijks" // selected days of one week
	EventTypeWekelijks EventType = "wekelijks" // weekly for N weeks
)

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeEenmalig, EventTypeStandaard, EventTypeDagelijks, EventTypeWekelijks:
		return true
	}
	return false
}

// IsRecurring is false only for eenmalig.
func (t EventType) IsRecurring() bool {
	return t.IsValid() && t != EventTypeEenmalig
}

// Event is one flat agenda row. Recurring series are stored as several
// events that share a series id or an id prefix.
type Event struct {
	ID          string    `bson:"_id,omitempty" json:"_id,omitempty"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Type        EventType `bson:"type" json:"type"`
	StartTime   string    `bson:"startTime" json:"startTime"`
	EndTime     string    `bson:"endTime" json:"endTime"`
	Time        string    `bson:"time" json:"time"`
	Author      string    `bson:"author" json:"author"`
	Location    string    `bson:"location" json:"location"`
	Zaal        string    `bson:"zaal" json:"zaal"`
	Date        string    `bson:"date" json:"date"` // YYYY-MM-DD

	RecurringDays      []int  `bson:"recurringDays,omitempty" json:"recurringDays,omitempty"`
	RecurringWeeks     *int   `bson:"recurringWeeks,omitempty" json:"recurringWeeks,omitempty"`
	RecurringDayOfWeek *int   `bson:"recurringDayOfWeek,omitempty" json:"recurringDayOfWeek,omitempty"`
	RecurringID        string `bson:"recurringId,omitempty" json:"recurringId,omitempty"`
	SeriesID           string `bson:"seriesId,omitempty" json:"seriesId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// BaseID is the part of the id before the first underscore. Occurrences
// written as "<base>_<n>" share it with their first member.
func (e *Event) BaseID() string {
	if i := strings.Index(e.ID, "_"); i >= 0 {
		return e.ID[:i]
	}
	return e.ID
}

// CompositeKey identifies a legacy recurring row that has no usable id.
func (e *Event) CompositeKey() string {
	return strings.Join([]string{
		e.Title,
		string(e.Type),
		e.StartTime,
		e.EndTime,
		e.Zaal,
		e.Author,
	}, "-")
}

// DisplayName is used in activity entries.
func (e *Event) DisplayName() string {
	if e.Title == "" {
		return e.ID
	}
	return e.Title
}
