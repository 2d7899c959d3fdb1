package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/opptrack/internal/model"
	"github.com/roach88/opptrack/internal/sqlitedb"
)

const selectOpportunity = `
		SELECT uid, company, role_hint, contact_email, contact_name, lifecycle_state,
		       first_seen_at, last_event_at, subject, source
		FROM opportunities`

const selectEvent = `
		SELECT event_uid, opportunity_uid, type, occurred_at, payload, lifecycle_state
		FROM events`

// GetOpportunityByUID returns the opportunity, or nil when none exists.
func (s *Store) GetOpportunityByUID(ctx context.Context, uid string) (*model.Opportunity, error) {
	opp, err := scanOpportunity(s.db.QueryRowContext(ctx, selectOpportunity+` WHERE uid = ?`, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	return &opp, nil
}

// ListOpportunities returns all opportunities, earliest first.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListOpportunities(ctx context.Context) ([]model.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx, selectOpportunity+`
		ORDER BY first_seen_at ASC, uid COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()

	opps := []model.Opportunity{}
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate opportunities: %w", err)
	}
	return opps, nil
}

// GetEvent returns the event stored under uid, or ErrNotFound.
func (s *Store) GetEvent(ctx context.Context, uid string) (*model.Event, error) {
	evt, err := scanEvent(s.db.QueryRowContext(ctx, selectEvent+` WHERE event_uid = ?`, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &evt, nil
}

// ListEvents returns an opportunity's events ordered by occurred_at, then
// insertion order.
func (s *Store) ListEvents(ctx context.Context, opportunityUID string) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEvent+`
		WHERE opportunity_uid = ?
		ORDER BY occurred_at ASC, seq ASC`, opportunityUID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// CountEvents returns the total number of stored events.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(row scanner) (model.Opportunity, error) {
	var (
		opp                                          model.Opportunity
		roleHint, contactEmail, contactName, subject sql.NullString
		lastEventAt                                  sql.NullString
		state, firstSeenAt                           string
	)
	if err := row.Scan(&opp.UID, &opp.Company, &roleHint, &contactEmail, &contactName, &state,
		&firstSeenAt, &lastEventAt, &subject, &opp.Source); err != nil {
		return model.Opportunity{}, err
	}

	var err error
	if opp.FirstSeenAt, err = sqlitedb.ParseTime(firstSeenAt); err != nil {
		return model.Opportunity{}, err
	}
	if lastEventAt.Valid {
		t, err := sqlitedb.ParseTime(lastEventAt.String)
		if err != nil {
			return model.Opportunity{}, err
		}
		opp.LastEventAt = &t
	}
	opp.LifecycleState = model.State(state)
	opp.RoleHint = sqlitedb.StringPtr(roleHint)
	opp.ContactEmail = sqlitedb.StringPtr(contactEmail)
	opp.ContactName = sqlitedb.StringPtr(contactName)
	opp.Subject = sqlitedb.StringPtr(subject)
	return opp, nil
}

func scanEvent(row scanner) (model.Event, error) {
	var (
		evt               model.Event
		occurredAt        string
		payload, stateCol sql.NullString
	)
	if err := row.Scan(&evt.EventUID, &evt.OpportunityUID, &evt.Type, &occurredAt, &payload, &stateCol); err != nil {
		return model.Event{}, err
	}

	var err error
	if evt.OccurredAt, err = sqlitedb.ParseTime(occurredAt); err != nil {
		return model.Event{}, err
	}
	if evt.Payload, err = sqlitedb.DecodePayload(payload); err != nil {
		return model.Event{}, err
	}
	if stateCol.Valid {
		st := model.State(stateCol.String)
		evt.LifecycleState = &st
	}
	return evt, nil
}
