package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/opptrack/internal/ident"
	"github.com/roach88/opptrack/internal/model"
	"github.com/roach88/opptrack/internal/sqlitedb"
)

// AppendInput describes an audit entry to record.
type AppendInput struct {
	// EventUID is the idempotency key. When empty it is derived from
	// RelatedEventUID, Action and OccurredAt.
	EventUID        string
	OpportunityUID  string
	Actor           string
	Action          string
	OccurredAt      time.Time
	RelatedEventUID string
	Payload         model.Payload
}

// Key returns the idempotency key the entry will be stored under.
func (in AppendInput) Key() (string, error) {
	if in.EventUID != "" {
		return in.EventUID, nil
	}
	if in.RelatedEventUID == "" {
		return "", fmt.Errorf("%w: event uid or related event uid required", ErrInvalidEntry)
	}
	return ident.AuditKey(in.RelatedEventUID, in.Action, in.OccurredAt), nil
}

// Append records an entry and returns the stored row. Appending the same
// key again returns the row stored first.
func (l *Log) Append(ctx context.Context, in AppendInput) (model.AuditEntry, error) {
	entry, _, err := l.AppendIfNew(ctx, in)
	return entry, err
}

// AppendIfNew is Append that also reports whether this call inserted the row.
func (l *Log) AppendIfNew(ctx context.Context, in AppendInput) (entry model.AuditEntry, inserted bool, err error) {
	if strings.TrimSpace(in.Action) == "" {
		return model.AuditEntry{}, false, fmt.Errorf("append audit entry: %w: action required", ErrInvalidEntry)
	}
	key, err := in.Key()
	if err != nil {
		return model.AuditEntry{}, false, fmt.Errorf("append audit entry: %w", err)
	}

	payloadJSON, err := sqlitedb.EncodePayload(in.Payload)
	if err != nil {
		return model.AuditEntry{}, false, fmt.Errorf("append audit entry: %w", err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return model.AuditEntry{}, false, fmt.Errorf("append audit entry: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO audit_entries
		(event_uid, opportunity_uid, actor, action, occurred_at, related_event_uid, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_uid) DO NOTHING
	`,
		key,
		sqlitedb.NullString(in.OpportunityUID),
		sqlitedb.NullString(in.Actor),
		in.Action,
		sqlitedb.FormatTime(in.OccurredAt),
		sqlitedb.NullString(in.RelatedEventUID),
		payloadJSON,
		sqlitedb.FormatTime(l.now()),
	)
	if err != nil {
		return model.AuditEntry{}, false, fmt.Errorf("append audit entry: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return model.AuditEntry{}, false, fmt.Errorf("append audit entry: rows affected: %w", err)
	}

	// Always read back: on conflict the earlier row is the answer.
	entry, err = scanEntry(tx.QueryRowContext(ctx, selectEntry+` WHERE event_uid = ?`, key))
	if err != nil {
		return model.AuditEntry{}, false, fmt.Errorf("append audit entry: read back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.AuditEntry{}, false, fmt.Errorf("append audit entry: commit: %w", err)
	}
	return entry, rowsAffected > 0, nil
}
