package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/opptrack/internal/ident"
	"github.com/roach88/opptrack/internal/model"
)

var opportunityFields = map[string]bool{
	"company":         true,
	"role_hint":       true,
	"contact_email":   true,
	"contact_name":    true,
	"lifecycle_state": true,
	"first_seen_at":   true,
	"last_event_at":   true,
	"subject":         true,
	"source":          true,
}

var scheduleFields = map[string]bool{
	"iso":      true,
	"display":  true,
	"timezone": true,
}

// EvaluateAssertions checks every assertion against trace and returns one
// message per failure.
func EvaluateAssertions(trace *Trace, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if msg := evaluate(trace, a); msg != "" {
			errs = append(errs, fmt.Sprintf("assertions[%d] %s: %s", i, a.Type, msg))
		}
	}
	return errs
}

func evaluate(trace *Trace, a Assertion) string {
	switch a.Type {
	case AssertOpportunity:
		return compareFields(opportunityValues(trace.Opportunity), a.Expect)
	case AssertSchedule:
		if trace.Schedule == nil {
			return "no schedule was detected"
		}
		return compareFields(scheduleValues(trace.Schedule), a.Expect)
	case AssertNoSchedule:
		if trace.Schedule != nil {
			return fmt.Sprintf("unexpected schedule %s", trace.Schedule.ISO)
		}
	case AssertEventOrder:
		got := make([]string, len(trace.Events))
		for i, e := range trace.Events {
			got[i] = e.Type
		}
		if !slices.Equal(got, a.Events) {
			return fmt.Sprintf("expected events %v, got %v", a.Events, got)
		}
	case AssertEventCount:
		n := 0
		for _, e := range trace.Events {
			if a.Event == "" || e.Type == a.Event {
				n++
			}
		}
		if n != a.Count {
			return fmt.Sprintf("expected %d events, got %d", a.Count, n)
		}
	case AssertAuditCount:
		if len(trace.Audit) != a.Count {
			return fmt.Sprintf("expected %d audit entries, got %d", a.Count, len(trace.Audit))
		}
	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
	return ""
}

// compareFields compares expected values by their string form. A nil
// expectation requires the field to be absent.
func compareFields(actual map[string]string, expect map[string]any) string {
	keys := make([]string, 0, len(expect))
	for k := range expect {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		want := expect[key]
		got, present := actual[key]
		switch {
		case want == nil && present:
			return fmt.Sprintf("%s: expected absent, got %q", key, got)
		case want == nil:
		case !present:
			return fmt.Sprintf("%s: expected %q, field is absent", key, fmt.Sprint(want))
		case fmt.Sprint(want) != got:
			return fmt.Sprintf("%s: expected %q, got %q", key, fmt.Sprint(want), got)
		}
	}
	return ""
}

func opportunityValues(opp model.Opportunity) map[string]string {
	values := map[string]string{
		"company":         opp.Company,
		"lifecycle_state": string(opp.LifecycleState),
		"first_seen_at":   ident.FormatTime(opp.FirstSeenAt),
		"source":          opp.Source,
	}
	optional := map[string]*string{
		"role_hint":     opp.RoleHint,
		"contact_email": opp.ContactEmail,
		"contact_name":  opp.ContactName,
		"subject":       opp.Subject,
	}
	for k, v := range optional {
		if v != nil {
			values[k] = *v
		}
	}
	if opp.LastEventAt != nil {
		values["last_event_at"] = ident.FormatTime(*opp.LastEventAt)
	}
	return values
}

func scheduleValues(s *model.Schedule) map[string]string {
	return map[string]string{
		"iso":      s.ISO,
		"display":  s.Display,
		"timezone": s.Timezone,
	}
}
