package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/opptrack/internal/ident"
	"github.com/roach88/opptrack/internal/lifecycle"
	"github.com/roach88/opptrack/internal/model"
	"github.com/roach88/opptrack/internal/sqlitedb"
)

// UpsertInput describes an opportunity to create or refresh.
// Empty optional fields never overwrite stored values.
type UpsertInput struct {
	Company        string      `validate:"required,max=200"`
	RoleHint       string      `validate:"max=300"`
	ContactEmail   string      `validate:"max=320"`
	ContactName    string      `validate:"max=200"`
	LifecycleState model.State `validate:"required,lifecycle_state"`
	FirstSeenAt    time.Time   `validate:"required"`
	LastEventAt    *time.Time
	Subject        string `validate:"max=998"`
	Source         string `validate:"required"`
}

// NaturalKey is the dedup key: lower-cased company and contact email.
func NaturalKey(company, contactEmail string) string {
	return strings.ToLower(strings.TrimSpace(company)) + "|" + strings.ToLower(strings.TrimSpace(contactEmail))
}

// UpsertOpportunity inserts a new opportunity or merges in into the existing
// one with the same natural key, then returns the stored row.
//
// Concurrent upserts of the same key converge on the uid of whichever insert
// landed first.
func (s *Store) UpsertOpportunity(ctx context.Context, in UpsertInput) (model.Opportunity, error) {
	if err := s.validate.Struct(in); err != nil {
		return model.Opportunity{}, fmt.Errorf("upsert opportunity: %w", err)
	}
	key := NaturalKey(in.Company, in.ContactEmail)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Opportunity{}, fmt.Errorf("upsert opportunity: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO opportunities
		(uid, natural_key, company, role_hint, contact_email, contact_name,
		 lifecycle_state, state_rank, first_seen_at, last_event_at, subject, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(natural_key) DO UPDATE SET
			role_hint     = COALESCE(excluded.role_hint, opportunities.role_hint),
			contact_name  = COALESCE(excluded.contact_name, opportunities.contact_name),
			subject       = COALESCE(excluded.subject, opportunities.subject),
			first_seen_at = MIN(opportunities.first_seen_at, excluded.first_seen_at),
			last_event_at = CASE
				WHEN excluded.last_event_at IS NULL THEN opportunities.last_event_at
				WHEN opportunities.last_event_at IS NULL THEN excluded.last_event_at
				ELSE MAX(opportunities.last_event_at, excluded.last_event_at)
			END,
			lifecycle_state = CASE
				WHEN excluded.state_rank > opportunities.state_rank THEN excluded.lifecycle_state
				ELSE opportunities.lifecycle_state
			END,
			state_rank = MAX(opportunities.state_rank, excluded.state_rank)
	`,
		uuid.NewString(),
		key,
		strings.TrimSpace(in.Company),
		sqlitedb.NullString(in.RoleHint),
		sqlitedb.NullString(in.ContactEmail),
		sqlitedb.NullString(in.ContactName),
		string(in.LifecycleState),
		lifecycle.Rank(in.LifecycleState),
		sqlitedb.FormatTime(in.FirstSeenAt),
		sqlitedb.NullTime(in.LastEventAt),
		sqlitedb.NullString(in.Subject),
		in.Source,
	)
	if err != nil {
		return model.Opportunity{}, fmt.Errorf("upsert opportunity: %w", err)
	}

	opp, err := scanOpportunity(tx.QueryRowContext(ctx, selectOpportunity+` WHERE natural_key = ?`, key))
	if err != nil {
		return model.Opportunity{}, fmt.Errorf("upsert opportunity: read back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Opportunity{}, fmt.Errorf("upsert opportunity: commit: %w", err)
	}
	return opp, nil
}

// AppendEventInput describes an event to append.
type AppendEventInput struct {
	// EventUID is optional; when empty it is derived from the other fields
	// with ident.EventUID.
	EventUID       string
	OpportunityUID string `validate:"required"`
	Type           string `validate:"required"`
	OccurredAt     time.Time
	Payload        model.Payload
	LifecycleState *model.State
}

// AppendEvent inserts an event. It returns nil, nil when an event with the
// same uid is already stored.
//
// Uses ON CONFLICT(event_uid) DO NOTHING; other constraint violations (an
// unknown opportunity, for one) are returned as errors.
func (s *Store) AppendEvent(ctx context.Context, in AppendEventInput) (*model.Event, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}

	uid := in.EventUID
	if uid == "" {
		var err error
		if uid, err = ident.EventUID(in.OpportunityUID, in.Type, in.OccurredAt, in.Payload); err != nil {
			return nil, fmt.Errorf("append event: %w", err)
		}
	}

	payloadJSON, err := sqlitedb.EncodePayload(in.Payload)
	if err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}

	var state *string
	if in.LifecycleState != nil {
		st := string(*in.LifecycleState)
		state = &st
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO events
		(event_uid, opportunity_uid, type, occurred_at, payload, lifecycle_state)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_uid) DO NOTHING
	`,
		uid,
		in.OpportunityUID,
		in.Type,
		sqlitedb.FormatTime(in.OccurredAt),
		payloadJSON,
		state,
	)
	if err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("append event: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, nil
	}

	evt, err := s.GetEvent(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("append event: read back: %w", err)
	}
	return evt, nil
}
