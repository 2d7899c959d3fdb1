// Package harness replays recruiter messages from YAML scenarios against
// fresh in-memory stores and checks the recorded outcome.
//
// A scenario names one raw message and how many times to replay it. The
// harness ingests it replays+1 times with a deterministic clock, then reads
// back the opportunity, its events and its audit entries as a Trace.
// Assertions check the trace; RunWithGolden compares a canonical JSON
// snapshot of it against testdata/golden/<name>.golden.
//
// Scenario file format:
//
//	name: scheduled_outreach
//	description: Recruiter proposes a phone screen
//	now: "2025-10-01T12:00:00Z"   # clock start, optional
//	replays: 1                    # extra ingestions of the same message
//	message: |
//	  From: "Casey Rivera" <casey@instabase.com>
//	  Subject: Instabase - Senior Backend Engineer
//
//	  Are you free Thu Oct 23, 2:00 PM PT?
//	assertions:
//	  - type: opportunity
//	    expect: {company: Instabase, lifecycle_state: phone_screen_scheduled}
//	  - type: event_order
//	    events: [recruiter_outreach_received, lifecycle_transition, phone_screen_scheduled]
//	  - type: audit_count
//	    count: 3
//
// Snapshots leave out opportunity and event uids, which are random per run.
package harness
