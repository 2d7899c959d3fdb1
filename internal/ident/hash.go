package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/roach88/opptrack/internal/model"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future algorithm change.
const (
	DomainEvent      = "opptrack/event/v1"
	DomainTransition = "opptrack/transition/v1"
	DomainOutreach   = "opptrack/outreach/v1"
)

// TimeLayout is the instant format used in hashes and storage.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// hashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// AuditKey derives the idempotency key of an audit entry that was appended
// without an explicit one: sha256hex(relatedEventUID|action|occurredAt).
//
// The input order and the absence of a domain prefix are fixed so that keys
// stay compatible with entries already stored.
func AuditKey(relatedEventUID, action string, occurredAt time.Time) string {
	sum := sha256.Sum256([]byte(relatedEventUID + "|" + action + "|" + FormatTime(occurredAt)))
	return hex.EncodeToString(sum[:])
}

// EventUID computes the content address of an event appended without an
// explicit uid.
func EventUID(opportunityUID, eventType string, occurredAt time.Time, payload model.Payload) (string, error) {
	obj := map[string]any{
		"opportunity_uid": opportunityUID,
		"type":            eventType,
		"occurred_at":     FormatTime(occurredAt),
	}
	if payload != nil {
		obj["payload"] = map[string]any(payload)
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventUID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// TransitionUID identifies a lifecycle transition. Identical arguments always
// produce the same uid, so resubmitting a transition is safe.
func TransitionUID(opportunityUID string, from, to model.State, occurredAt time.Time, note string) string {
	obj := map[string]any{
		"opportunity_uid": opportunityUID,
		"from":            string(from),
		"to":              string(to),
		"occurred_at":     FormatTime(occurredAt),
		"note":            note,
	}
	// Only strings above; marshaling cannot fail.
	canonical, _ := MarshalCanonical(obj)
	return hashWithDomain(DomainTransition, canonical)
}

// OutreachUID identifies the outreach event recorded for one inbound message.
func OutreachUID(opportunityUID, messageDigest string) string {
	canonical, _ := MarshalCanonical(map[string]any{
		"opportunity_uid": opportunityUID,
		"message_digest":  messageDigest,
	})
	return hashWithDomain(DomainOutreach, canonical)
}

// MessageDigest is the SHA-256 hex digest of a raw message.
func MessageDigest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
