package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/opptrack/internal/model"
	"github.com/roach88/opptrack/internal/sqlitedb"
)

const selectEntry = `
		SELECT event_uid, opportunity_uid, actor, action, occurred_at, payload, created_at
		FROM audit_entries`

// ListFilter narrows List. The zero value lists everything.
type ListFilter struct {
	OpportunityUID string
}

// Get returns the entry stored under eventUID, or ErrNotFound.
func (l *Log) Get(ctx context.Context, eventUID string) (model.AuditEntry, error) {
	entry, err := scanEntry(l.db.QueryRowContext(ctx, selectEntry+` WHERE event_uid = ?`, eventUID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.AuditEntry{}, ErrNotFound
	}
	if err != nil {
		return model.AuditEntry{}, fmt.Errorf("get audit entry: %w", err)
	}
	return entry, nil
}

// List returns entries ordered by occurred_at, optionally for one
// opportunity. Returns an empty slice (not nil) when nothing matches.
func (l *Log) List(ctx context.Context, filter ListFilter) ([]model.AuditEntry, error) {
	query := selectEntry
	var args []any
	if filter.OpportunityUID != "" {
		query += ` WHERE opportunity_uid = ?`
		args = append(args, filter.OpportunityUID)
	}
	query += ` ORDER BY occurred_at ASC, event_uid COLLATE BINARY ASC`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []model.AuditEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored entries.
func (l *Log) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (model.AuditEntry, error) {
	var (
		entry                 model.AuditEntry
		opportunityUID, actor sql.NullString
		payload               sql.NullString
		occurredAt, createdAt string
	)
	if err := row.Scan(&entry.EventUID, &opportunityUID, &actor, &entry.Action, &occurredAt, &payload, &createdAt); err != nil {
		return model.AuditEntry{}, err
	}

	var err error
	if entry.OccurredAt, err = sqlitedb.ParseTime(occurredAt); err != nil {
		return model.AuditEntry{}, err
	}
	if entry.CreatedAt, err = sqlitedb.ParseTime(createdAt); err != nil {
		return model.AuditEntry{}, err
	}
	if entry.Payload, err = sqlitedb.DecodePayload(payload); err != nil {
		return model.AuditEntry{}, err
	}
	entry.OpportunityUID = sqlitedb.StringPtr(opportunityUID)
	entry.Actor = sqlitedb.StringPtr(actor)
	return entry, nil
}
