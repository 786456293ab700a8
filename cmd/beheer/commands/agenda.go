package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"stichting-asha/internal/agenda"
	"stichting-asha/pkg/client"

	"github.com/spf13/cobra"
)

// AgendaCmd creates the agenda command and its subcommands
func AgendaCmd(app *AppContext) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Inspect and clean up the agenda through the API",
	}
	cmd.PersistentFlags().StringVar(&email, "email", os.Getenv("ASHA_EMAIL"), "Account used for changes (default $ASHA_EMAIL)")

	login := func() (*client.Client, error) {
		if email == "" {
			return nil, fmt.Errorf("--email is required for changes")
		}
		password, err := readSecret(fmt.Sprintf("Wachtwoord voor %s: ", email))
		if err != nil {
			return nil, err
		}

		c := client.New(app.APIURL)
		ctx, cancel := app.timeout(30 * time.Second)
		defer cancel()
		if _, err := c.Login(ctx, email, password); err != nil {
			return nil, err
		}
		return c, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the agenda grouped as the website shows it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.timeout(30 * time.Second)
			defer cancel()

			groups, err := client.New(app.APIURL).ListGroups(ctx)
			if err != nil {
				return err
			}
			printGroups(os.Stdout, groups)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-group <id>",
		Short: "Delete a one-off event or every occurrence of a recurring group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := login()
			if err != nil {
				return err
			}
			ctx, cancel := app.timeout(time.Minute)
			defer cancel()

			groups, err := c.ListGroups(ctx)
			if err != nil {
				return err
			}
			g := findGroup(groups, args[0])
			if g == nil {
				return fmt.Errorf("no agenda group with id %s", args[0])
			}

			if err := c.DeleteGroup(ctx, g); err != nil {
				return err
			}
			fmt.Printf("%s verwijderd (%d afspraken)\n", g.Title, g.EventCount)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-series <id>",
		Short: "Delete a series and all of its occurrences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := login()
			if err != nil {
				return err
			}
			ctx, cancel := app.timeout(time.Minute)
			defer cancel()

			if err := c.DeleteSeries(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Reeks %s verwijderd\n", args[0])
			return nil
		},
	})

	return cmd
}

func findGroup(groups []agenda.Group, id string) *agenda.Group {
	for i := range groups {
		if groups[i].ID == id {
			return &groups[i]
		}
	}
	return nil
}

func printGroups(w io.Writer, groups []agenda.Group) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATUM\tTIJD\tTITEL\tAANTAL\tHERHALING")
	for _, g := range groups {
		dates := make([]string, 0, len(g.Events))
		for _, e := range g.Events {
			dates = append(dates, e.Date)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			g.ID,
			strings.Join(dates, ","),
			g.StartTime,
			g.Title,
			g.EventCount,
			g.Description,
		)
	}
	tw.Flush()
}
