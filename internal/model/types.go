package model

import "time"

// State is the lifecycle stage of an Opportunity.
type State string

const (
	StateRecruiterOutreach    State = "recruiter_outreach"
	StatePhoneScreenScheduled State = "phone_screen_scheduled"
	StateApplied              State = "applied"
	StateInterviewing         State = "interviewing"
	StateOffer                State = "offer"
	StateRejected             State = "rejected"
	StateWithdrawn            State = "withdrawn"
)

// Event types recorded by the ingestion pipeline.
const (
	EventRecruiterOutreachReceived = "recruiter_outreach_received"
	EventLifecycleTransition       = "lifecycle_transition"
	EventPhoneScreenScheduled      = "phone_screen_scheduled"
)

// SourceRecruiterEmail tags opportunities created from inbound recruiter mail.
const SourceRecruiterEmail = "recruiter_email"

// Payload is free-form structured data attached to events and audit entries.
// Values must be representable as canonical JSON: strings, integers, bools,
// and nested maps or slices of those. Floats and nil are rejected when the
// payload is hashed or stored.
type Payload map[string]any

// Opportunity is a tracked job-search contact or application.
type Opportunity struct {
	UID            string     `json:"uid"`
	Company        string     `json:"company"`
	RoleHint       *string    `json:"role_hint,omitempty"`
	ContactEmail   *string    `json:"contact_email,omitempty"`
	ContactName    *string    `json:"contact_name,omitempty"`
	LifecycleState State      `json:"lifecycle_state"`
	FirstSeenAt    time.Time  `json:"first_seen_at"`
	LastEventAt    *time.Time `json:"last_event_at,omitempty"`
	Subject        *string    `json:"subject,omitempty"`
	Source         string     `json:"source"`
}

// Event is an immutable domain event in an Opportunity's history.
type Event struct {
	EventUID       string    `json:"event_uid"`
	OpportunityUID string    `json:"opportunity_uid"`
	Type           string    `json:"type"`
	OccurredAt     time.Time `json:"occurred_at"`
	Payload        Payload   `json:"payload,omitempty"`
	LifecycleState *State    `json:"lifecycle_state,omitempty"`
}

// AuditEntry is an immutable record of an action taken against an Opportunity.
// CreatedAt is when the entry was recorded, OccurredAt when the action happened.
type AuditEntry struct {
	EventUID       string    `json:"event_uid"`
	OpportunityUID *string   `json:"opportunity_uid,omitempty"`
	Actor          *string   `json:"actor,omitempty"`
	Action         string    `json:"action"`
	OccurredAt     time.Time `json:"occurred_at"`
	Payload        Payload   `json:"payload,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Schedule is a proposed meeting time recovered from message text.
type Schedule struct {
	// At is the resolved instant in UTC.
	At time.Time `json:"-"`
	// ISO is At formatted with millisecond precision, e.g. 2025-10-23T21:00:00.000Z.
	ISO string `json:"iso"`
	// Display echoes the original phrasing, e.g. "Oct 23, 2:00 PM PT".
	Display  string `json:"display"`
	Timezone string `json:"timezone"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
