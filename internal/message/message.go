// Package message splits raw inbound recruiter messages into headers and body.
//
// Only the minimal structure needed for ingestion is recognised: an optional
// leading block of "key: value" lines terminated by a blank line, followed by
// free text. Anything else is treated as body.
package message

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

var (
	lineBreak    = regexp.MustCompile(`\r?\n`)
	paragraphGap = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)
	nameAndAddr  = regexp.MustCompile(`^\s*(.*?)\s*<([^<>]+)>\s*$`)
	dateLayouts  = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}
)

// Sender is the parsed From header.
type Sender struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Message is a raw message split into the parts ingestion cares about.
type Message struct {
	Headers map[string]string
	Subject string
	From    Sender
	Date    string
	Body    string
}

// Parse splits raw into headers and body and decodes the well-known headers.
func Parse(raw string) Message {
	headers := ParseHeaders(raw)
	return Message{
		Headers: headers,
		Subject: headers["subject"],
		From:    ParseFrom(headers["from"]),
		Date:    headers["date"],
		Body:    ExtractBody(raw),
	}
}

// ParseHeaders reads "key: value" lines up to the first blank line.
// Keys are lower-cased and only the first occurrence of each key is kept.
// Lines without a colon are skipped.
func ParseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, line := range lineBreak.Split(raw, -1) {
		if strings.TrimSpace(line) == "" {
			break
		}
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		if key == "" {
			continue
		}
		if _, seen := headers[key]; seen {
			continue
		}
		headers[key] = strings.TrimSpace(line[idx+1:])
	}
	return headers
}

// ParseFrom decodes a From value of the form `"Name" <addr>`, a bare
// address, or a bare name.
func ParseFrom(value string) Sender {
	value = strings.TrimSpace(value)
	if value == "" {
		return Sender{}
	}
	if m := nameAndAddr.FindStringSubmatch(value); m != nil {
		return Sender{
			Name:  strings.TrimSpace(strings.Trim(m[1], `"'`)),
			Email: strings.TrimSpace(m[2]),
		}
	}
	if strings.Contains(value, "@") {
		return Sender{Email: value}
	}
	return Sender{Name: strings.Trim(value, `"'`)}
}

// ExtractBody returns everything after the first blank-line boundary, or
// the whole input when there is none.
func ExtractBody(raw string) string {
	loc := paragraphGap.FindStringIndex(raw)
	if loc == nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(raw[loc[1]:])
}

// ParseDate parses a Date header value. RFC 5322 forms are tried first,
// then a handful of ISO layouts. ok is false when nothing matches.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := mail.ParseDate(value); err == nil {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
