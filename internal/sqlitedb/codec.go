package sqlitedb

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/opptrack/internal/ident"
	"github.com/roach88/opptrack/internal/model"
)

// Instants are stored as fixed-width UTC text (ident.TimeLayout) so that
// lexical ORDER BY and MIN/MAX agree with chronological order.

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return ident.FormatTime(t)
}

// ParseTime parses a stored instant.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(ident.TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// NullTime maps nil to NULL.
func NullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

// NullString maps "" to NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// StringPtr maps NULL to nil.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// EncodePayload stores payloads as canonical JSON; nil stays NULL.
func EncodePayload(p model.Payload) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	data, err := ident.MarshalCanonical(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal payload: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// DecodePayload decodes a stored payload. Numbers come back as json.Number
// so integers survive intact and re-hash identically.
func DecodePayload(ns sql.NullString) (model.Payload, error) {
	if !ns.Valid {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(ns.String)))
	dec.UseNumber()
	var p model.Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p, nil
}
