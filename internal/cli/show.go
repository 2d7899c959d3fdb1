package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/opptrack/internal/audit"
	"github.com/roach88/opptrack/internal/ident"
	"github.com/roach88/opptrack/internal/model"
)

// OpportunityDetail is the show command's output.
type OpportunityDetail struct {
	Opportunity model.Opportunity `json:"opportunity"`
	Events      []model.Event     `json:"events"`
}

func formatTime(t time.Time) string {
	return ident.FormatTime(t)
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <uid>",
		Short: "Show an opportunity and its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
}

func runShow(opts *RootOptions, uid string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	e, err := openEnv(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	opp, err := e.store.GetOpportunityByUID(ctx, uid)
	if err != nil {
		return out.Fail(ExitFailure, CodeStorage, "failed to read opportunity", err)
	}
	if opp == nil {
		return out.Fail(ExitFailure, CodeNotFound, fmt.Sprintf("opportunity %s not found", uid), nil)
	}
	events, err := e.store.ListEvents(ctx, uid)
	if err != nil {
		return out.Fail(ExitFailure, CodeStorage, "failed to read events", err)
	}

	detail := OpportunityDetail{Opportunity: *opp, Events: events}
	return out.Render(detail, func(w io.Writer) {
		writeOpportunity(w, detail.Opportunity)
		if detail.Opportunity.Subject != nil {
			fmt.Fprintf(w, "  subject:  %s\n", *detail.Opportunity.Subject)
		}
		fmt.Fprintln(w)
		writeEvents(w, detail.Events)
	})
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "events <uid>",
		Short: "List an opportunity's events in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(rootOpts, args[0], cmd)
		},
	}
}

func runEvents(opts *RootOptions, uid string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	e, err := openEnv(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	events, err := e.store.ListEvents(ctx, uid)
	if err != nil {
		return out.Fail(ExitFailure, CodeStorage, "failed to read events", err)
	}
	return out.Render(events, func(w io.Writer) { writeEvents(w, events) })
}

func writeEvents(w io.Writer, events []model.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events.")
		return
	}
	for _, evt := range events {
		state := ""
		if evt.LifecycleState != nil {
			state = " [" + string(*evt.LifecycleState) + "]"
		}
		fmt.Fprintf(w, "%s  %-28s%s  %s\n", formatTime(evt.OccurredAt), evt.Type, state, evt.EventUID)
	}
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	var opportunity string
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List audit entries",
		Long: `List audit entries in occurrence order.

Examples:
  opptrack audit
  opptrack audit --opportunity 6f1c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(rootOpts, opportunity, cmd)
		},
	}
	cmd.Flags().StringVar(&opportunity, "opportunity", "", "only entries for this opportunity uid")
	return cmd
}

func runAudit(opts *RootOptions, opportunity string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	e, err := openEnv(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	entries, err := e.audit.List(ctx, audit.ListFilter{OpportunityUID: opportunity})
	if err != nil {
		return out.Fail(ExitFailure, CodeStorage, "failed to read audit log", err)
	}

	return out.Render(entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No audit entries.")
			return
		}
		for _, entry := range entries {
			fmt.Fprintf(w, "%s  %-28s %-14s %s\n",
				formatTime(entry.OccurredAt), entry.Action, model.Deref(entry.Actor), model.Deref(entry.OpportunityUID))
		}
	})
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all opportunities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	e, err := openEnv(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	opps, err := e.store.ListOpportunities(ctx)
	if err != nil {
		return out.Fail(ExitFailure, CodeStorage, "failed to list opportunities", err)
	}

	return out.Render(opps, func(w io.Writer) {
		if len(opps) == 0 {
			fmt.Fprintln(w, "No opportunities.")
			return
		}
		for _, opp := range opps {
			fmt.Fprintf(w, "%s  %-24s %-24s %s\n",
				opp.UID, opp.Company, opp.LifecycleState, model.Deref(opp.RoleHint))
		}
	})
}
