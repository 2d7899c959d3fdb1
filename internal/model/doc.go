// Package model defines the records tracked by opptrack.
//
// Opportunity rows are mutable snapshots owned by the store. Event and
// AuditEntry rows are append-only and keyed by content-derived identifiers
// so that replaying the same input never records the same occurrence twice.
// Schedule values are ephemeral and only ever folded into event payloads.
package model
