package agenda

import (
	"errors"
	"fmt"
	"time"

	"stichting-asha/internal/models"

	"github.com/teambition/rrule-go"
)

const (
	// DefaultStandaardCount is the number of weeks a standaard series
	// runs when no count is given.
	DefaultStandaardCount = 4
	// MaxOccurrences bounds a single series.
	MaxOccurrences = 52
)

var (
	ErrNotRecurring  = errors.New("type is not recurring")
	ErrNoDays        = errors.New("no recurring days selected")
	ErrInvalidDay    = errors.New("weekday out of range")
	ErrInvalidCount  = errors.New("occurrence count out of range")
	ErrInvalidStart  = errors.New("invalid start date")
	ErrNoOccurrences = errors.New("schedule has no occurrences")
)

// rruleWeekdays is indexed like time.Weekday.
var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Schedule describes how a series repeats.
type Schedule struct {
	Type               models.EventType
	StartDate          string // YYYY-MM-DD
	RecurringDays      []int
	RecurringWeeks     *int
	RecurringDayOfWeek *int
	Count              int
}

// ScheduleOf extracts the schedule of a series.
func ScheduleOf(s *models.Series) Schedule {
	return Schedule{
		Type:               s.Type,
		StartDate:          s.StartDate,
		RecurringDays:      s.RecurringDays,
		RecurringWeeks:     s.RecurringWeeks,
		RecurringDayOfWeek: s.RecurringDayOfWeek,
		Count:              s.Count,
	}
}

// Rule builds the RFC 5545 rule for the schedule:
//
//	standaard  weekly on the chosen weekday, Count times (default 4)
//	dagelijks  the chosen days of the start week, from the start date on
//	wekelijks  weekly on the chosen weekday for RecurringWeeks weeks
//
// The chosen weekday defaults to the weekday of the start date.
func (s Schedule) Rule() (*rrule.RRule, error) {
	start, err := time.Parse("2006-01-02", s.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStart, s.StartDate)
	}

	opt := rrule.ROption{Dtstart: start}

	switch s.Type {
	case models.EventTypeStandaard:
		count := s.Count
		if count == 0 {
			count = DefaultStandaardCount
		}
		if count < 1 || count > MaxOccurrences {
			return nil, ErrInvalidCount
		}
		day, err := s.dayOfWeek(start)
		if err != nil {
			return nil, err
		}
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{day}
		opt.Count = count

	case models.EventTypeWekelijks:
		if s.RecurringWeeks == nil || *s.RecurringWeeks < 1 || *s.RecurringWeeks > MaxOccurrences {
			return nil, ErrInvalidCount
		}
		day, err := s.dayOfWeek(start)
		if err != nil {
			return nil, err
		}
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{day}
		opt.Count = *s.RecurringWeeks

	case models.EventTypeDagelijks:
		if len(s.RecurringDays) == 0 {
			return nil, ErrNoDays
		}
		days := make([]rrule.Weekday, 0, len(s.RecurringDays))
		for _, d := range s.RecurringDays {
			if d < 0 || d > 6 {
				return nil, ErrInvalidDay
			}
			days = append(days, rruleWeekdays[d])
		}
		// the week runs Sunday to Saturday
		endOfWeek := start.AddDate(0, 0, 6-int(start.Weekday()))
		opt.Freq = rrule.DAILY
		opt.Byweekday = days
		opt.Until = endOfWeek.Add(24*time.Hour - time.Second)

	default:
		return nil, ErrNotRecurring
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("build rrule: %w", err)
	}
	return rule, nil
}

func (s Schedule) dayOfWeek(start time.Time) (rrule.Weekday, error) {
	if s.RecurringDayOfWeek == nil {
		return rruleWeekdays[start.Weekday()], nil
	}
	d := *s.RecurringDayOfWeek
	if d < 0 || d > 6 {
		return rrule.Weekday{}, ErrInvalidDay
	}
	return rruleWeekdays[d], nil
}

// Dates expands the schedule into YYYY-MM-DD dates and returns the rule
// text alongside.
func (s Schedule) Dates() ([]string, string, error) {
	rule, err := s.Rule()
	if err != nil {
		return nil, "", err
	}

	occurrences := rule.All()
	if len(occurrences) == 0 {
		return nil, "", ErrNoOccurrences
	}

	dates := make([]string, len(occurrences))
	for i, t := range occurrences {
		dates[i] = t.Format("2006-01-02")
	}
	return dates, rule.String(), nil
}

// OccurrenceID names the n-th occurrence (1-based) of a series. The
// underscore form keeps older clients able to group by id prefix.
func OccurrenceID(seriesID string, n int) string {
	return fmt.Sprintf("%s_%d", seriesID, n)
}

// Materialize expands a series into its occurrence events. The series
// must already have an id and its RRule is set from the expansion.
func Materialize(series *models.Series, now time.Time) ([]models.Event, error) {
	dates, rule, err := ScheduleOf(series).Dates()
	if err != nil {
		return nil, err
	}
	series.RRule = rule

	events := make([]models.Event, len(dates))
	for i, date := range dates {
		events[i] = models.Event{
			ID:                 OccurrenceID(series.ID, i+1),
			Title:              series.Title,
			Description:        series.Description,
			Type:               series.Type,
			StartTime:          series.StartTime,
			EndTime:            series.EndTime,
			Time:               series.StartTime,
			Author:             series.Author,
			Location:           series.Location,
			Zaal:               series.Zaal,
			Date:               date,
			RecurringDays:      series.RecurringDays,
			RecurringWeeks:     series.RecurringWeeks,
			RecurringDayOfWeek: series.RecurringDayOfWeek,
			RecurringID:        series.ID,
			SeriesID:           series.ID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
	}
	return events, nil
}
