// Package heuristics guesses company and role from message metadata when
// no explicit fields are available.
package heuristics

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UnknownCompany is returned when neither subject nor sender yields a name.
const UnknownCompany = "Unknown Company"

var (
	subjectSeparators = regexp.MustCompile(`[-:]`)
	roleAfterFor      = regexp.MustCompile(`for\s+(.+)$`)
	roleAfterDash     = regexp.MustCompile(`-\s*(.+)$`)
)

// GuessCompany takes the first non-empty segment of the subject split on
// '-' or ':'. Without a subject it falls back to the first label of the
// sender's email domain, capitalised.
func GuessCompany(subject, email string) string {
	if strings.TrimSpace(subject) != "" {
		for _, part := range subjectSeparators.Split(subject, -1) {
			if p := strings.TrimSpace(part); p != "" {
				return p
			}
		}
	}
	if _, domain, ok := strings.Cut(strings.TrimSpace(email), "@"); ok {
		label, _, _ := strings.Cut(domain, ".")
		if label = strings.TrimSpace(label); label != "" {
			return capitalize(label)
		}
	}
	return UnknownCompany
}

// GuessRole extracts a role hint such as "Staff Engineer" from subjects like
// "Opportunity for Staff Engineer" or "Acme - Staff Engineer".
func GuessRole(subject string) (string, bool) {
	for _, re := range []*regexp.Regexp{roleAfterFor, roleAfterDash} {
		if m := re.FindStringSubmatch(subject); m != nil {
			if role := strings.TrimSpace(m[1]); role != "" {
				return role, true
			}
		}
	}
	return "", false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
