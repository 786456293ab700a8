package commands

import (
	"fmt"
	"time"

	"stichting-asha/internal/agenda"
	"stichting-asha/internal/database"
	"stichting-asha/internal/models"
	"stichting-asha/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MigrateRolesCmd creates the migrate-roles command
func MigrateRolesCmd(app *AppContext) *cobra.Command {
	var fallback string

	cmd := &cobra.Command{
		Use:   "migrate-roles",
		Short: "Give users without a known role a fallback role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := models.RoleFromString(fallback)
			if !ok {
				return fmt.Errorf("unknown role %q", fallback)
			}

			db, err := app.Database()
			if err != nil {
				return err
			}
			ctx, cancel := app.timeout(time.Minute)
			defer cancel()

			n, err := store.NewUserStore(db.Collection(database.CollectionUsers)).BackfillRoles(ctx, role)
			if err != nil {
				return fmt.Errorf("failed to migrate roles: %w", err)
			}
			fmt.Printf("%d gebruikers gemigreerd naar rol %s\n", n, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&fallback, "role", string(models.RoleUser), "Role assigned to users without a known role")
	return cmd
}

// seriesPlan is one legacy group that becomes a series.
type seriesPlan struct {
	Series   models.Series
	EventIDs []string
}

// planSeries turns the recurring groups that have no series yet into
// series documents. Groups already owned by a series are left alone.
func planSeries(groups []agenda.Group, newID func() string, now time.Time) []seriesPlan {
	var plans []seriesPlan
	for _, g := range groups {
		if !g.Type.IsRecurring() || ownedBySeries(g.Events) {
			continue
		}

		first := g.Events[0]
		series := models.Series{
			ID:                 newID(),
			Title:              first.Title,
			Description:        first.Description,
			Type:               first.Type,
			StartTime:          first.StartTime,
			EndTime:            first.EndTime,
			Location:           first.Location,
			Zaal:               first.Zaal,
			Author:             first.Author,
			StartDate:          first.Date,
			RecurringDays:      first.RecurringDays,
			RecurringWeeks:     first.RecurringWeeks,
			RecurringDayOfWeek: first.RecurringDayOfWeek,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if series.StartTime == "" {
			series.StartTime = first.Time
		}

		ids := make([]string, 0, len(g.Events))
		for _, e := range g.Events {
			if e.Date != "" && (series.StartDate == "" || e.Date < series.StartDate) {
				series.StartDate = e.Date
			}
			if e.ID != "" {
				ids = append(ids, e.ID)
			}
		}
		if series.Type == models.EventTypeStandaard {
			series.Count = len(g.Events)
		}
		// Legacy rows do not always fit a schedule; the rule stays empty then.
		if rule, err := agenda.ScheduleOf(&series).Rule(); err == nil {
			series.RRule = rule.String()
		}

		plans = append(plans, seriesPlan{Series: series, EventIDs: ids})
	}
	return plans
}

func ownedBySeries(events []models.Event) bool {
	for _, e := range events {
		if e.SeriesID != "" {
			return true
		}
	}
	return false
}

// MigrateSeriesCmd creates the migrate-series command
func MigrateSeriesCmd(app *AppContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate-series",
		Short: "Create series for recurring events that were stored without one",
		Long: `Groups the stored events the way the agenda does and creates a series
document for every recurring group that has none. The events keep their ids
and are linked to the new series.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.Database()
			if err != nil {
				return err
			}
			events := store.NewEventStore(db.Collection(database.CollectionEvents))
			seriesStore := store.NewSeriesStore(db.Collection(database.CollectionSeries))

			ctx, cancel := app.timeout(5 * time.Minute)
			defer cancel()

			all, err := events.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}

			plans := planSeries(agenda.GroupEvents(all), func() string {
				return primitive.NewObjectID().Hex()
			}, time.Now())

			fmt.Printf("%d reeksen te migreren\n", len(plans))
			for _, p := range plans {
				log := app.Logger.WithFields(logrus.Fields{
					"series": p.Series.ID,
					"title":  p.Series.Title,
					"events": len(p.EventIDs),
				})
				if dryRun {
					fmt.Printf("- %s (%s, %d afspraken vanaf %s)\n", p.Series.Title, p.Series.Type, len(p.EventIDs), p.Series.StartDate)
					continue
				}

				s := p.Series
				if err := seriesStore.Insert(ctx, &s); err != nil {
					return fmt.Errorf("failed to create series %q: %w", s.Title, err)
				}
				n, err := events.AssignSeries(ctx, p.EventIDs, s.ID)
				if err != nil {
					return fmt.Errorf("failed to link events to series %q: %w", s.Title, err)
				}
				log.WithField("linked", n).Info("series created")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print what would be migrated")
	return cmd
}
