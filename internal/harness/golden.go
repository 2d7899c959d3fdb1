package harness

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/opptrack/internal/ident"
	"github.com/roach88/opptrack/internal/model"
)

// GoldenDir is where golden snapshots live, relative to the test package.
const GoldenDir = "testdata/golden"

// Snapshot returns the canonical form of a trace: everything except uids,
// which differ per run, and audit creation times. Audit entries are ordered
// by occurrence then action since their keys are uid-derived.
func Snapshot(name string, trace *Trace) map[string]any {
	opp := trace.Opportunity
	oppMap := map[string]any{
		"company":         opp.Company,
		"lifecycle_state": string(opp.LifecycleState),
		"first_seen_at":   ident.FormatTime(opp.FirstSeenAt),
		"source":          opp.Source,
	}
	for k, v := range map[string]*string{
		"role_hint":     opp.RoleHint,
		"contact_email": opp.ContactEmail,
		"contact_name":  opp.ContactName,
		"subject":       opp.Subject,
	} {
		if v != nil {
			oppMap[k] = *v
		}
	}
	if opp.LastEventAt != nil {
		oppMap["last_event_at"] = ident.FormatTime(*opp.LastEventAt)
	}

	events := make([]any, len(trace.Events))
	for i, e := range trace.Events {
		em := map[string]any{
			"type":        e.Type,
			"occurred_at": ident.FormatTime(e.OccurredAt),
		}
		if e.LifecycleState != nil {
			em["lifecycle_state"] = string(*e.LifecycleState)
		}
		if len(e.Payload) > 0 {
			em["payload"] = e.Payload
		}
		events[i] = em
	}

	entries := slices.Clone(trace.Audit)
	slices.SortStableFunc(entries, func(a, b model.AuditEntry) int {
		if c := a.OccurredAt.Compare(b.OccurredAt); c != 0 {
			return c
		}
		return strings.Compare(a.Action, b.Action)
	})
	audit := make([]any, len(entries))
	for i, entry := range entries {
		am := map[string]any{
			"action":      entry.Action,
			"occurred_at": ident.FormatTime(entry.OccurredAt),
		}
		if entry.Actor != nil {
			am["actor"] = *entry.Actor
		}
		audit[i] = am
	}

	ingests := make([]any, len(trace.Ingests))
	for i, rec := range trace.Ingests {
		ingests[i] = map[string]any{
			"events":        rec.Events,
			"audit_entries": rec.AuditEntries,
		}
	}

	snap := map[string]any{
		"scenario_name": name,
		"opportunity":   oppMap,
		"events":        events,
		"audit":         audit,
		"ingests":       ingests,
	}
	if trace.Schedule != nil {
		snap["schedule"] = map[string]any{
			"iso":      trace.Schedule.ISO,
			"display":  trace.Schedule.Display,
			"timezone": trace.Schedule.Timezone,
		}
	}
	return snap
}

// MarshalSnapshot renders Snapshot as canonical JSON.
func MarshalSnapshot(name string, trace *Trace) ([]byte, error) {
	return ident.MarshalCanonical(Snapshot(name, trace))
}

// RunWithGolden runs scenario and compares its snapshot with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := Run(ctx, scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, &result.Trace)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
