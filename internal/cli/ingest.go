package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/opptrack/internal/ingest"
	"github.com/roach88/opptrack/internal/model"
	"github.com/roach88/opptrack/internal/schedule"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [file|-]",
		Short: "Ingest one raw recruiter message",
		Long: `Ingest one raw recruiter message from a file or stdin.

The message is a header block ("Key: value" lines) followed by a blank
line and the body. A proposed interview time in the body such as
"Thu Oct 23, 2:00 PM PT" moves the opportunity to phone_screen_scheduled.

Exit codes:
  0 - message ingested (including replays that record nothing new)
  1 - ingestion failed part-way; re-run to complete it
  2 - command error (empty message, unreadable file, bad config)

Examples:
  opptrack ingest message.eml
  cat message.eml | opptrack ingest
  opptrack ingest message.eml --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runIngest(rootOpts, path, cmd)
		},
	}
}

func readMessage(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func runIngest(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	raw, err := readMessage(path, cmd.InOrStdin())
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "failed to read message", err)
	}

	e, err := openEnv(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	reg := prometheus.NewRegistry()
	metrics := ingest.NewMetrics(reg)
	in := ingest.New(e.store, e.audit,
		ingest.WithLogger(e.logger),
		ingest.WithMetrics(metrics),
		ingest.WithActor(e.cfg.Actor),
		ingest.WithExtractor(schedule.New(e.cfg.Offsets())),
	)

	result, err := in.Ingest(ctx, raw)
	if opts.Verbose {
		writeMetricsSummary(out, reg)
	}
	if err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			return out.Fail(ExitCommandError, CodeInvalidInput, "invalid message", err)
		}
		msg := "ingestion failed"
		if step := ingest.FailedStep(err); step != "" {
			msg = fmt.Sprintf("ingestion failed at %s", step)
		}
		return out.Fail(ExitFailure, CodeIngest, msg, err)
	}

	return out.Render(result, func(w io.Writer) {
		writeOpportunity(w, result.Opportunity)
		if result.Schedule != nil {
			fmt.Fprintf(w, "  schedule: %s (%s)\n", result.Schedule.ISO, result.Schedule.Display)
		}
		if len(result.Events) == 0 && len(result.AuditEntries) == 0 {
			fmt.Fprintln(w, "  already ingested; nothing new recorded")
			return
		}
		fmt.Fprintf(w, "  recorded: %d event(s), %d audit entr%s\n",
			len(result.Events), len(result.AuditEntries), plural(len(result.AuditEntries), "y", "ies"))
		for _, evt := range result.Events {
			fmt.Fprintf(w, "    + %s\n", evt.Type)
		}
	})
}

// writeMetricsSummary prints every non-zero counter gathered from reg.
func writeMetricsSummary(out *OutputFormatter, reg prometheus.Gatherer) {
	families, err := reg.Gather()
	if err != nil {
		out.VerboseLog("metrics unavailable: %v", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue()
			if v == 0 {
				continue
			}
			label := ""
			for _, lp := range m.GetLabel() {
				label += fmt.Sprintf("{%s=%q}", lp.GetName(), lp.GetValue())
			}
			out.VerboseLog("%s%s %g", mf.GetName(), label, v)
		}
	}
}

func writeOpportunity(w io.Writer, opp model.Opportunity) {
	fmt.Fprintf(w, "Opportunity %s (%s)\n", opp.UID, opp.Company)
	fmt.Fprintf(w, "  state:    %s\n", opp.LifecycleState)
	if opp.RoleHint != nil {
		fmt.Fprintf(w, "  role:     %s\n", *opp.RoleHint)
	}
	if opp.ContactEmail != nil {
		contact := *opp.ContactEmail
		if opp.ContactName != nil {
			contact = fmt.Sprintf("%s <%s>", *opp.ContactName, contact)
		}
		fmt.Fprintf(w, "  contact:  %s\n", contact)
	}
	fmt.Fprintf(w, "  first:    %s\n", formatTime(opp.FirstSeenAt))
	if opp.LastEventAt != nil {
		fmt.Fprintf(w, "  last:     %s\n", formatTime(*opp.LastEventAt))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
