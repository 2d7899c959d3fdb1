package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/opptrack/internal/model"
)

var seenAt = time.Date(2025, 10, 20, 16, 15, 0, 0, time.UTC)

// createTestStore opens a store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestUpsert returns a minimal valid recruiter opportunity.
func createTestUpsert() UpsertInput {
	return UpsertInput{
		Company:        "Instabase",
		RoleHint:       "Senior Backend Engineer",
		ContactEmail:   "casey@instabase.com",
		ContactName:    "Casey Rivera",
		LifecycleState: model.StateRecruiterOutreach,
		FirstSeenAt:    seenAt,
		Subject:        "Instabase - Senior Backend Engineer",
		Source:         model.SourceRecruiterEmail,
	}
}
