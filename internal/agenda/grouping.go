// Package agenda reconstructs recurring groups from flat event rows and
// holds the date logic shared by the API and the admin CLI.
package agenda

import (
	"stichting-asha/internal/models"
)

// Group is a set of events shown as one agenda entry. Group-level fields
// come from the first member.
type Group struct {
	ID string `json:"id"`
	models.Event
	EventCount  int            `json:"eventCount"`
	Events      []models.Event `json:"events"`
	Description string         `json:"recurringDescription,omitempty"`
}

// GroupKey is the key an event is grouped under. One-off events are keyed
// by their own id. Recurring events use the series id, then the id prefix
// before the first underscore, then the composite field key.
func GroupKey(e *models.Event) string {
	if e.Type == models.EventTypeEenmalig {
		return e.ID
	}
	if e.SeriesID != "" {
		return e.SeriesID
	}
	if base := e.BaseID(); base != "" {
		return base
	}
	return e.CompositeKey()
}

// GroupEvents groups events in order of first appearance.
func GroupEvents(events []models.Event) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0, len(events))

	for _, e := range events {
		key := GroupKey(&e)
		// one-off events never absorb other rows, even when a recurring
		// row shares their id prefix
		if e.Type != models.EventTypeEenmalig {
			if i, ok := index[key]; ok {
				groups[i].EventCount++
				groups[i].Events = append(groups[i].Events, e)
				continue
			}
			index[key] = len(groups)
		}

		groups = append(groups, Group{
			ID:         key,
			Event:      e,
			EventCount: 1,
			Events:     []models.Event{e},
		})
	}

	for i := range groups {
		groups[i].Description = RecurringDescription(&groups[i].Event)
	}
	return groups
}

// DeleteTargets lists the ids to delete for a whole group: its own id for a
// one-off event, else one id per distinct base id among the members.
// Members sharing a base id are not deleted individually.
func DeleteTargets(g *Group) []string {
	if g.Type == models.EventTypeEenmalig {
		if g.Event.ID != "" {
			return []string{g.Event.ID}
		}
		return []string{g.ID}
	}

	seen := make(map[string]bool)
	var targets []string
	for i := range g.Events {
		if g.Events[i].ID == "" {
			continue
		}
		base := g.Events[i].BaseID()
		if !seen[base] {
			seen[base] = true
			targets = append(targets, base)
		}
	}
	return targets
}

// EditTarget is the id an edit of the group is sent to: the base id of the
// first member only.
func EditTarget(g *Group) string {
	if g.Type == models.EventTypeEenmalig {
		if g.Event.ID != "" {
			return g.Event.ID
		}
		return g.ID
	}
	if len(g.Events) == 0 {
		return ""
	}
	return g.Events[0].BaseID()
}
