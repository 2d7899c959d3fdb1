package harness

import "github.com/roach88/opptrack/internal/model"

// IngestRecord counts what one ingestion call newly recorded.
type IngestRecord struct {
	Events       int `json:"events"`
	AuditEntries int `json:"audit_entries"`
}

// Trace is the stored outcome of a scenario run.
type Trace struct {
	Opportunity model.Opportunity  `json:"opportunity"`
	Schedule    *model.Schedule    `json:"schedule,omitempty"`
	Events      []model.Event      `json:"events"`
	Audit       []model.AuditEntry `json:"audit"`
	Ingests     []IngestRecord     `json:"ingests"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	Trace Trace `json:"trace"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError records a failed assertion.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
