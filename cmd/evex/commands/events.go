package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"evex/pkg/fetch"
	"evex/pkg/filter"
	"evex/pkg/models"
	"evex/pkg/services"

	"github.com/spf13/cobra"
)

func newEventsCommand(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"e"},
		Short:   "Browse and register for events",
	}

	cmd.AddCommand(
		newEventsListCommand(app),
		newEventsRegisterCommand(app),
		newEventsCancelCommand(app),
	)

	return cmd
}

func newEventsListCommand(app *cli) *cobra.Command {
	var f struct {
		search, category, university, status string
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events, filtered like the events page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.entry.API.Events.List(cmd.Context(), models.EventQuery{})
			if err != nil {
				return errors.New(fetch.Or(err, "Failed to load events. Please try again."))
			}
			shown := filter.Events(events, filter.EventFilter{
				Search:     f.search,
				Category:   filter.ParseID(f.category),
				University: filter.ParseID(f.university),
				Status:     filter.ParseStatus(f.status),
			})
			printEvents(cmd.OutOrStdout(), shown)
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.search, "search", "s", "", "match title or description")
	cmd.Flags().StringVar(&f.category, "category", filter.All, "category id")
	cmd.Flags().StringVar(&f.university, "university", filter.All, "host university id")
	cmd.Flags().StringVar(&f.status, "status", filter.All, "event status")
	return cmd
}

func printEvents(w io.Writer, events []models.Event) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tWHEN\tSEATS\tACTION")
	for _, e := range events {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d/%d\t%s\n",
			e.ID, e.Title, e.DateTime.Local().Format("2006-01-02 15:04"),
			e.RegisteredCount, e.ParticipantLimit, filter.RegisterLabel(e))
	}
	tw.Flush()
}

func eventID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id %q", arg)
	}
	return id, nil
}

func newEventsRegisterCommand(app *cli) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "register <id>",
		Short: "Register for an event, or join its waitlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := eventID(args[0])
			if err != nil {
				return err
			}
			if err := signedIn(cmd, app); err != nil {
				return err
			}

			res, err := app.entry.API.Events.Register(cmd.Context(), id, force)
			var clash *services.ClashError
			if errors.As(err, &clash) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s You have %d event(s) at the same time:\n", fetch.Message(err), len(clash.Events))
				for _, c := range clash.Events {
					fmt.Fprintf(out, "  - %s, %s at %s\n", c.Title, c.DateTime.Local().Format("Mon Jan 2 15:04"), c.VenueName)
				}
				return errors.New("not registered, rerun with --force to register anyway")
			}
			if err != nil {
				return errors.New(fetch.Or(err, "Unable to register for this event."))
			}

			msg := res.Message
			if msg == "" {
				msg = "Registration successful!"
			}
			if res.WaitlistPosition != nil {
				msg = fmt.Sprintf("%s (waitlist position %d)", msg, *res.WaitlistPosition)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "register despite a time clash")
	return cmd
}

func newEventsCancelCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a registration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := eventID(args[0])
			if err != nil {
				return err
			}
			if err := signedIn(cmd, app); err != nil {
				return err
			}
			if err := app.entry.API.Events.Cancel(cmd.Context(), id); err != nil {
				return errors.New(fetch.Or(err, "Failed to cancel registration. Please try again."))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registration cancelled.")
			return nil
		},
	}
}

func newMyEventsCommand(app *cli) *cobra.Command {
	var (
		search, status string
		page           int
	)

	cmd := &cobra.Command{
		Use:   "my-events",
		Short: "List your registrations, six per page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := signedIn(cmd, app); err != nil {
				return err
			}
			regs, err := app.entry.API.Profile.Registrations(cmd.Context())
			if err != nil {
				return errors.New(fetch.Or(err, "Failed to load events. Please try again."))
			}
			p := filter.Paginate(filter.Registrations(filter.Active(regs), search, filter.ParseStatus(status)), page, filter.ItemsPerPage)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEVENT\tSTATUS\tREGISTERED")
			for _, r := range p.Items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Title(), r.Status, r.RegisteredAt.Local().Format("2006-01-02"))
			}
			tw.Flush()
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d, %d total\n", p.Page, p.TotalPages, p.Total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "match event title")
	cmd.Flags().StringVar(&status, "status", filter.All, "registered, waitlisted or attended")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}
