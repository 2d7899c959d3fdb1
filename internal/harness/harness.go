package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/opptrack/internal/audit"
	"github.com/roach88/opptrack/internal/ingest"
	"github.com/roach88/opptrack/internal/logging"
	"github.com/roach88/opptrack/internal/schedule"
	"github.com/roach88/opptrack/internal/store"
	"github.com/roach88/opptrack/internal/testutil"
)

// ClockStep is how far the scenario clock moves per reading.
const ClockStep = time.Second

// Harness holds the stores and ingester for one scenario run.
type Harness struct {
	store    *store.Store
	audit    *audit.Log
	clock    *testutil.StepClock
	ingester *ingest.Ingester
}

// New opens fresh in-memory stores wired to an ingester configured from
// scenario. Close releases them.
func New(ctx context.Context, scenario *Scenario) (*Harness, error) {
	start, err := scenario.StartTime()
	if err != nil {
		return nil, err
	}
	clock := testutil.NewStepClock(start, ClockStep)

	st, err := store.Open(ctx, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	log, err := audit.Open(ctx, ":memory:", audit.WithNow(clock.Now))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create in-memory audit log: %w", err)
	}

	opts := []ingest.Option{
		ingest.WithClock(clock),
		ingest.WithLogger(logging.Discard()),
		ingest.WithExtractor(schedule.New(schedule.WithOverrides(schedule.DefaultOffsets, scenario.Timezones))),
	}
	if scenario.Actor != "" {
		opts = append(opts, ingest.WithActor(scenario.Actor))
	}

	return &Harness{
		store:    st,
		audit:    log,
		clock:    clock,
		ingester: ingest.New(st, log, opts...),
	}, nil
}

// Close releases both stores.
func (h *Harness) Close() error {
	auditErr := h.audit.Close()
	if err := h.store.Close(); err != nil {
		return err
	}
	return auditErr
}

// Run executes a scenario in fresh stores and evaluates its assertions.
// The returned error covers setup and ingestion failures; failed assertions
// are reported in Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	h, err := New(ctx, scenario)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	trace, err := h.replay(ctx, scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Trace = *trace
	for _, msg := range EvaluateAssertions(trace, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// replay ingests the scenario message replays+1 times and reads back the
// stored outcome.
func (h *Harness) replay(ctx context.Context, scenario *Scenario) (*Trace, error) {
	trace := &Trace{Ingests: make([]IngestRecord, 0, scenario.Replays+1)}

	var last *ingest.Result
	for i := 0; i <= scenario.Replays; i++ {
		res, err := h.ingester.Ingest(ctx, scenario.Message)
		if err != nil {
			return nil, fmt.Errorf("ingest #%d: %w", i+1, err)
		}
		trace.Ingests = append(trace.Ingests, IngestRecord{
			Events:       len(res.Events),
			AuditEntries: len(res.AuditEntries),
		})
		last = res
	}

	trace.Opportunity = last.Opportunity
	trace.Schedule = last.Schedule

	events, err := h.store.ListEvents(ctx, last.Opportunity.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	trace.Events = events

	entries, err := h.audit.List(ctx, audit.ListFilter{OpportunityUID: last.Opportunity.UID})
	if err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}
	trace.Audit = entries

	return trace, nil
}
