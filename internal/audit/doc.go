// Package audit is the append-only, content-addressed audit trail.
//
// Every entry is keyed by an event uid. Callers may supply one; otherwise
// it is derived as sha256hex(relatedEventUID|action|occurredAt) (see
// ident.AuditKey). Inserts use ON CONFLICT DO NOTHING and the stored row is
// always read back, so concurrent duplicate appends converge on whichever
// insert won.
//
// A Log owns its SQLite connection: Open acquires it and applies the
// embedded migrations, Close releases it exactly once.
package audit
