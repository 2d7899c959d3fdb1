package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/opptrack/internal/audit"
	"github.com/roach88/opptrack/internal/heuristics"
	"github.com/roach88/opptrack/internal/ident"
	"github.com/roach88/opptrack/internal/lifecycle"
	"github.com/roach88/opptrack/internal/message"
	"github.com/roach88/opptrack/internal/model"
	"github.com/roach88/opptrack/internal/schedule"
	"github.com/roach88/opptrack/internal/store"
)

const (
	// DefaultActor is recorded on audit entries unless WithActor overrides it.
	DefaultActor = "ingest"

	// ScheduleNote is the note carried by the transition a detected schedule
	// triggers.
	ScheduleNote = "schedule detected in recruiter email"

	snippetRunes = 280
)

// Store is the opportunity store as used by the Ingester.
type Store interface {
	UpsertOpportunity(ctx context.Context, in store.UpsertInput) (model.Opportunity, error)
	AppendEvent(ctx context.Context, in store.AppendEventInput) (*model.Event, error)
	GetEvent(ctx context.Context, uid string) (*model.Event, error)
	GetOpportunityByUID(ctx context.Context, uid string) (*model.Opportunity, error)
}

// AuditLog is the audit log as used by the Ingester.
type AuditLog interface {
	AppendIfNew(ctx context.Context, in audit.AppendInput) (model.AuditEntry, bool, error)
}

// Clock supplies the fallback time for messages without a Date header.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Result is what one Ingest call recorded. Events and AuditEntries hold only
// rows this call created; a full replay returns both empty.
type Result struct {
	Opportunity  model.Opportunity  `json:"opportunity"`
	Events       []model.Event      `json:"events"`
	AuditEntries []model.AuditEntry `json:"audit_entries"`
	Schedule     *model.Schedule    `json:"schedule,omitempty"`
}

// Ingester runs the ingestion write sequence.
type Ingester struct {
	store     Store
	audit     AuditLog
	clock     Clock
	extractor *schedule.Extractor
	logger    *slog.Logger
	metrics   *Metrics
	actor     string
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithClock sets the clock used for undated messages.
func WithClock(c Clock) Option {
	return func(in *Ingester) { in.clock = c }
}

// WithExtractor sets the schedule extractor, typically one built with
// configured timezone overrides.
func WithExtractor(e *schedule.Extractor) Option {
	return func(in *Ingester) { in.extractor = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(in *Ingester) { in.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(in *Ingester) { in.metrics = m }
}

// WithActor sets the actor recorded on audit entries.
func WithActor(actor string) Option {
	return func(in *Ingester) { in.actor = actor }
}

// New creates an Ingester writing to s and a.
func New(s Store, a AuditLog, opts ...Option) *Ingester {
	in := &Ingester{
		store:     s,
		audit:     a,
		clock:     SystemClock{},
		extractor: schedule.New(schedule.DefaultOffsets),
		logger:    slog.Default(),
		actor:     DefaultActor,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// run carries the per-call state of one Ingest.
type run struct {
	opp    model.Opportunity
	result *Result
}

// Ingest parses raw and records the opportunity, its events and their audit
// entries. Re-ingesting the same raw message records nothing new.
func (in *Ingester) Ingest(ctx context.Context, raw string) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		in.metrics.failure(StepValidate)
		return nil, ErrEmptyMessage
	}
	in.metrics.message()

	msg := message.Parse(raw)
	sentAt, dated := message.ParseDate(msg.Date)
	if !dated {
		sentAt = in.clock.Now()
	}
	sentAt = sentAt.UTC()

	company := heuristics.GuessCompany(msg.Subject, msg.From.Email)
	role, _ := heuristics.GuessRole(msg.Subject)
	sched := in.extractor.Extract(msg.Body, sentAt.Year())

	logger := in.logger.With("company", company, "from", msg.From.Email)

	upsert := store.UpsertInput{
		Company:        company,
		RoleHint:       role,
		ContactEmail:   msg.From.Email,
		ContactName:    msg.From.Name,
		LifecycleState: model.StateRecruiterOutreach,
		FirstSeenAt:    sentAt,
		Subject:        msg.Subject,
		Source:         model.SourceRecruiterEmail,
	}
	opp, err := in.store.UpsertOpportunity(ctx, upsert)
	if err != nil {
		return nil, in.fail(StepUpsertOpportunity, err)
	}
	logger = logger.With("opportunity", opp.UID)

	r := &run{
		opp: opp,
		result: &Result{
			Events:       []model.Event{},
			AuditEntries: []model.AuditEntry{},
		},
	}

	outreachState := model.StateRecruiterOutreach
	outreach, err := in.record(ctx, r, store.AppendEventInput{
		EventUID:       ident.OutreachUID(opp.UID, ident.MessageDigest(raw)),
		OpportunityUID: opp.UID,
		Type:           model.EventRecruiterOutreachReceived,
		OccurredAt:     sentAt,
		Payload: model.Payload{
			"subject": msg.Subject,
			"snippet": snippet(msg.Body),
		},
		LifecycleState: &outreachState,
	})
	if err != nil {
		return nil, err
	}

	// An undated replay takes its time from the first ingestion so the
	// content-derived uids below come out the same.
	if !dated && !outreach.OccurredAt.Equal(sentAt) {
		year := sentAt.Year()
		sentAt = outreach.OccurredAt.UTC()
		if sched != nil && sentAt.Year() != year {
			sched = in.extractor.Extract(msg.Body, sentAt.Year())
		}
	}

	if sched != nil {
		in.metrics.scheduleDetected()
		logger.Debug("schedule detected", "at", sched.ISO, "timezone", sched.Timezone)
		if err := in.recordSchedule(ctx, r, upsert, sched, sentAt, logger); err != nil {
			return nil, err
		}
	}

	final, err := in.store.GetOpportunityByUID(ctx, opp.UID)
	if err != nil {
		return nil, in.fail(StepReadOpportunity, err)
	}
	if final == nil {
		return nil, in.fail(StepReadOpportunity, fmt.Errorf("opportunity %s not found", opp.UID))
	}

	r.result.Opportunity = *final
	r.result.Schedule = sched
	logger.Info("message ingested",
		"state", final.LifecycleState,
		"events", len(r.result.Events),
		"audit_entries", len(r.result.AuditEntries),
	)
	return r.result, nil
}

func (in *Ingester) recordSchedule(
	ctx context.Context,
	r *run,
	upsert store.UpsertInput,
	sched *model.Schedule,
	sentAt time.Time,
	logger *slog.Logger,
) error {
	state := r.opp.LifecycleState
	transitioned := false
	transition, err := lifecycle.Apply(r.opp.UID, state, lifecycle.Request{
		From:       model.StateRecruiterOutreach,
		To:         model.StatePhoneScreenScheduled,
		OccurredAt: sentAt,
		Note:       ScheduleNote,
	})
	switch {
	case errors.Is(err, lifecycle.ErrStaleTransition):
		// Already past the phone screen; the schedule is still recorded.
		logger.Info("transition skipped", "state", state, "err", err)
	case err != nil:
		return in.fail(StepTransition, err)
	default:
		state = transition.LifecycleState
		transitioned = true
	}

	upsert.LifecycleState = state
	upsert.LastEventAt = &sched.At
	opp, err := in.store.UpsertOpportunity(ctx, upsert)
	if err != nil {
		return in.fail(StepUpsertOpportunity, err)
	}
	r.opp = opp

	if transitioned {
		evt := transition.Event
		if _, err := in.record(ctx, r, store.AppendEventInput{
			EventUID:       evt.EventUID,
			OpportunityUID: evt.OpportunityUID,
			Type:           evt.Type,
			OccurredAt:     evt.OccurredAt,
			Payload:        evt.Payload,
			LifecycleState: evt.LifecycleState,
		}); err != nil {
			return err
		}
	}

	_, err = in.record(ctx, r, store.AppendEventInput{
		OpportunityUID: r.opp.UID,
		Type:           model.EventPhoneScreenScheduled,
		OccurredAt:     sentAt,
		Payload: model.Payload{
			"scheduledAt": sched.ISO,
			"display":     sched.Display,
			"timezone":    sched.Timezone,
		},
		LifecycleState: &state,
	})
	return err
}

// record appends an event and its audit entry. A duplicate event is read
// back and its audit entry re-appended, which is a no-op unless an earlier
// attempt stopped between the two writes.
func (in *Ingester) record(ctx context.Context, r *run, evtIn store.AppendEventInput) (model.Event, error) {
	created, err := in.store.AppendEvent(ctx, evtIn)
	if err != nil {
		return model.Event{}, in.fail(StepAppendEvent, fmt.Errorf("%s: %w", evtIn.Type, err))
	}

	var evt model.Event
	if created != nil {
		evt = *created
		r.result.Events = append(r.result.Events, evt)
		in.metrics.eventRecorded(evt.Type)
	} else {
		in.metrics.duplicate(evtIn.Type)
		uid := evtIn.EventUID
		if uid == "" {
			if uid, err = ident.EventUID(evtIn.OpportunityUID, evtIn.Type, evtIn.OccurredAt, evtIn.Payload); err != nil {
				return model.Event{}, in.fail(StepAppendEvent, err)
			}
		}
		stored, err := in.store.GetEvent(ctx, uid)
		if err != nil {
			return model.Event{}, in.fail(StepAppendEvent, fmt.Errorf("read duplicate %s: %w", evtIn.Type, err))
		}
		evt = *stored
	}

	entry, inserted, err := in.audit.AppendIfNew(ctx, audit.AppendInput{
		OpportunityUID:  evt.OpportunityUID,
		Actor:           in.actor,
		Action:          evt.Type,
		OccurredAt:      evt.OccurredAt,
		RelatedEventUID: evt.EventUID,
		Payload:         evt.Payload,
	})
	if err != nil {
		return model.Event{}, in.fail(StepAppendAudit, fmt.Errorf("%s: %w", evt.Type, err))
	}
	if inserted {
		r.result.AuditEntries = append(r.result.AuditEntries, entry)
		in.metrics.auditRecorded()
	}
	return evt, nil
}

func (in *Ingester) fail(step string, err error) error {
	in.metrics.failure(step)
	in.logger.Error("ingest failed", "step", step, "err", err)
	return &StepError{Step: step, Err: err}
}

func snippet(body string) string {
	runes := []rune(body)
	if len(runes) <= snippetRunes {
		return body
	}
	return string(runes[:snippetRunes])
}
