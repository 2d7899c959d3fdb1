package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/opptrack/internal/model"
)

func sampleTrace() *Trace {
	seen := time.Date(2025, 10, 20, 16, 15, 0, 0, time.UTC)
	screen := time.Date(2025, 10, 23, 21, 0, 0, 0, time.UTC)
	return &Trace{
		Opportunity: model.Opportunity{
			UID:            "opp-1",
			Company:        "Instabase",
			RoleHint:       model.StringPtr("Senior Backend Engineer"),
			ContactEmail:   model.StringPtr("casey@instabase.com"),
			LifecycleState: model.StatePhoneScreenScheduled,
			FirstSeenAt:    seen,
			LastEventAt:    &screen,
			Source:         model.SourceRecruiterEmail,
		},
		Schedule: &model.Schedule{
			At:       screen,
			ISO:      "2025-10-23T21:00:00.000Z",
			Display:  "Oct 23, 2:00 PM PT",
			Timezone: "PT",
		},
		Events: []model.Event{
			{Type: model.EventRecruiterOutreachReceived, OccurredAt: seen},
			{Type: model.EventLifecycleTransition, OccurredAt: seen},
			{Type: model.EventPhoneScreenScheduled, OccurredAt: seen},
		},
		Audit: []model.AuditEntry{
			{Action: model.EventRecruiterOutreachReceived, OccurredAt: seen},
			{Action: model.EventLifecycleTransition, OccurredAt: seen},
			{Action: model.EventPhoneScreenScheduled, OccurredAt: seen},
		},
	}
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleTrace(), []Assertion{
		{Type: AssertOpportunity, Expect: map[string]any{
			"company":         "Instabase",
			"lifecycle_state": "phone_screen_scheduled",
			"first_seen_at":   "2025-10-20T16:15:00.000Z",
			"last_event_at":   "2025-10-23T21:00:00.000Z",
			"contact_name":    nil,
		}},
		{Type: AssertSchedule, Expect: map[string]any{"timezone": "PT", "iso": "2025-10-23T21:00:00.000Z"}},
		{Type: AssertEventOrder, Events: []string{
			model.EventRecruiterOutreachReceived,
			model.EventLifecycleTransition,
			model.EventPhoneScreenScheduled,
		}},
		{Type: AssertEventCount, Count: 3},
		{Type: AssertEventCount, Event: model.EventLifecycleTransition, Count: 1},
		{Type: AssertAuditCount, Count: 3},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{
			name:      "field mismatch",
			assertion: Assertion{Type: AssertOpportunity, Expect: map[string]any{"company": "Acme"}},
			want:      `company: expected "Acme", got "Instabase"`,
		},
		{
			name:      "expected absent",
			assertion: Assertion{Type: AssertOpportunity, Expect: map[string]any{"role_hint": nil}},
			want:      "role_hint: expected absent",
		},
		{
			name:      "expected present",
			assertion: Assertion{Type: AssertOpportunity, Expect: map[string]any{"subject": "Hi"}},
			want:      "subject: expected \"Hi\", field is absent",
		},
		{
			name:      "unexpected schedule",
			assertion: Assertion{Type: AssertNoSchedule},
			want:      "unexpected schedule 2025-10-23T21:00:00.000Z",
		},
		{
			name:      "event order",
			assertion: Assertion{Type: AssertEventOrder, Events: []string{model.EventRecruiterOutreachReceived}},
			want:      "expected events",
		},
		{
			name:      "event count",
			assertion: Assertion{Type: AssertEventCount, Event: model.EventPhoneScreenScheduled, Count: 2},
			want:      "expected 2 events, got 1",
		},
		{
			name:      "audit count",
			assertion: Assertion{Type: AssertAuditCount, Count: 1},
			want:      "expected 1 audit entries, got 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleTrace(), []Assertion{tt.assertion})
			if assert.Len(t, errs, 1) {
				assert.Contains(t, errs[0], tt.want)
				assert.Contains(t, errs[0], "assertions[0] "+tt.assertion.Type)
			}
		})
	}
}

func TestEvaluateAssertions_MissingSchedule(t *testing.T) {
	trace := sampleTrace()
	trace.Schedule = nil

	errs := EvaluateAssertions(trace, []Assertion{
		{Type: AssertSchedule, Expect: map[string]any{"timezone": "PT"}},
		{Type: AssertNoSchedule},
	})
	assert.Equal(t, []string{"assertions[0] schedule: no schedule was detected"}, errs)
}

func TestSnapshot_OmitsUIDs(t *testing.T) {
	trace := sampleTrace()
	trace.Events[0].EventUID = "evt-secret"

	data, err := MarshalSnapshot("sample", trace)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "opp-1")
	assert.NotContains(t, string(data), "evt-secret")
	assert.Contains(t, string(data), `"scenario_name":"sample"`)
}

func TestSnapshot_OrdersAuditByAction(t *testing.T) {
	snap := Snapshot("sample", sampleTrace())
	audit := snap["audit"].([]any)
	var actions []string
	for _, a := range audit {
		actions = append(actions, a.(map[string]any)["action"].(string))
	}
	assert.Equal(t, []string{
		model.EventLifecycleTransition,
		model.EventPhoneScreenScheduled,
		model.EventRecruiterOutreachReceived,
	}, actions)
}
