package agenda

import (
	"fmt"
	"strings"

	"stichting-asha/internal/models"
)

// Weekdays indexed like time.Weekday, Sunday first.
var Weekdays = [7]string{"Zondag", "Maandag", "Dinsdag", "Woensdag", "Donderdag", "Vrijdag", "Zaterdag"}

func weekdayName(d int) (string, bool) {
	if d < 0 || d >= len(Weekdays) {
		return "", false
	}
	return Weekdays[d], true
}

// RecurringDescription renders the Dutch pattern line for a recurring
// event. One-off events have none.
func RecurringDescription(e *models.Event) string {
	switch e.Type {
	case models.EventTypeStandaard:
		if e.RecurringDayOfWeek != nil {
			if day, ok := weekdayName(*e.RecurringDayOfWeek); ok {
				return "Elke " + strings.ToLower(day)
			}
		}
		return "Standaard herhaling"

	case models.EventTypeDagelijks:
		var days []string
		for _, d := range e.RecurringDays {
			if day, ok := weekdayName(d); ok {
				days = append(days, day)
			}
		}
		if len(days) > 0 {
			return "Deze week: " + strings.Join(days, ", ")
		}
		return "Dagelijks"

	case models.EventTypeWekelijks:
		if e.RecurringDayOfWeek != nil && e.RecurringWeeks != nil && *e.RecurringWeeks > 0 {
			if day, ok := weekdayName(*e.RecurringDayOfWeek); ok {
				return fmt.Sprintf("%d weken op %s", *e.RecurringWeeks, strings.ToLower(day))
			}
		}
		return "Wekelijks"
	}
	return ""
}
