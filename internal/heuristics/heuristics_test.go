package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessCompany(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		email   string
		want    string
	}{
		{"dash subject", "Instabase - Senior Backend Engineer", "casey@instabase.com", "Instabase"},
		{"colon subject", "Acme Corp: quick chat?", "", "Acme Corp"},
		{"leading separator", " - Globex - Role", "", "Globex"},
		{"subject without separator", "Hello from Initech", "", "Hello from Initech"},
		{"email fallback", "", "casey@instabase.com", "Instabase"},
		{"subdomain email", "", "jo@talent.example.org", "Talent"},
		{"separators only falls back to email", " - : ", "jo@umbrella.io", "Umbrella"},
		{"nothing", "", "", UnknownCompany},
		{"email without domain", "", "casey@", UnknownCompany},
		{"not an email", "", "casey", UnknownCompany},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessCompany(tt.subject, tt.email))
		})
	}
}

func TestGuessRole(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
		ok      bool
	}{
		{"for phrase", "Exciting opportunity for Staff Engineer", "Staff Engineer", true},
		{"for wins over dash", "Acme - opening for Platform Lead", "Platform Lead", true},
		{"dash phrase", "Instabase - Senior Backend Engineer", "Senior Backend Engineer", true},
		{"no hint", "Quick chat?", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GuessRole(tt.subject)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
