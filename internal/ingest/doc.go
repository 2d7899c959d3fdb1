// Package ingest turns a raw recruiter message into opportunity state,
// domain events and audit entries.
//
// The write sequence spans two stores and is not transactional. Each step is
// idempotent by key instead: the opportunity by its natural key, events by
// content-derived uids, audit entries by ident.AuditKey. A failure part-way
// leaves whatever steps completed in place, and re-ingesting the same raw
// message finishes the remaining steps without repeating the others.
//
// Flow for one message:
//
//	parse → company/role + schedule
//	      → upsert opportunity (recruiter_outreach)
//	      → append outreach event → audit
//	      → [schedule] transition → upsert (phone_screen_scheduled)
//	                   → append transition + schedule events → audit ×2
//	      → re-read opportunity
package ingest
