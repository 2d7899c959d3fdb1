// Package store is the SQLite-backed Opportunity and Event store.
//
// Opportunities are upserted by a natural key (company plus contact email,
// case-insensitive), so repeated ingestion of the same contact keeps the same
// uid. Events are append-only and keyed by event uid; appending an event
// whose uid already exists is a no-op reported by a nil return.
//
// # Invariants
//
//   - uid never changes for a natural key
//   - first_seen_at only moves earlier, last_event_at only later
//   - lifecycle_state only moves forward by lifecycle.Rank, so replaying an
//     older input cannot regress an opportunity
//   - event queries are ordered by occurred_at, then insertion order
package store
