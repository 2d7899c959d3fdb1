package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRaw = "From: \"Casey Rivera\" <casey@instabase.com>\r\n" +
	"Subject: Instabase - Senior Backend Engineer\r\n" +
	"Date: Mon, 20 Oct 2025 09:15:00 -0700\r\n" +
	"\r\n" +
	"Hi Sam,\r\n\r\nWould Thu Oct 23, 2:00 PM PT work for a quick call?\r\n"

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders(sampleRaw)

	assert.Equal(t, `"Casey Rivera" <casey@instabase.com>`, headers["from"])
	assert.Equal(t, "Instabase - Senior Backend Engineer", headers["subject"])
	assert.Equal(t, "Mon, 20 Oct 2025 09:15:00 -0700", headers["date"])
	assert.Len(t, headers, 3, "body lines must not leak into headers")
}

func TestParseHeaders_FirstOccurrenceWins(t *testing.T) {
	raw := "Subject: First\nsubject: Second\nSUBJECT: Third\n\nbody"

	headers := ParseHeaders(raw)
	assert.Equal(t, "First", headers["subject"])
}

func TestParseHeaders_SkipsLinesWithoutColon(t *testing.T) {
	raw := "garbage line\nSubject: Hello\n: no key\n\nbody: not a header"

	headers := ParseHeaders(raw)
	assert.Equal(t, map[string]string{"subject": "Hello"}, headers)
}

func TestParseHeaders_ValueKeepsLaterColons(t *testing.T) {
	headers := ParseHeaders("Subject: Acme: Staff Engineer\n\n")
	assert.Equal(t, "Acme: Staff Engineer", headers["subject"])
}

func TestParseFrom(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Sender
	}{
		{"quoted name", `"Casey Rivera" <casey@instabase.com>`, Sender{Name: "Casey Rivera", Email: "casey@instabase.com"}},
		{"plain name", `Casey Rivera <casey@instabase.com>`, Sender{Name: "Casey Rivera", Email: "casey@instabase.com"}},
		{"address only in brackets", `<casey@instabase.com>`, Sender{Email: "casey@instabase.com"}},
		{"bare address", `casey@instabase.com`, Sender{Email: "casey@instabase.com"}},
		{"bare name", `Casey Rivera`, Sender{Name: "Casey Rivera"}},
		{"empty", ``, Sender{}},
		{"whitespace", `   `, Sender{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFrom(tt.value))
		})
	}
}

func TestExtractBody(t *testing.T) {
	body := ExtractBody(sampleRaw)
	assert.Equal(t, "Hi Sam,\r\n\r\nWould Thu Oct 23, 2:00 PM PT work for a quick call?", body)
}

func TestExtractBody_NoBoundary(t *testing.T) {
	raw := "Would Thu Oct 23, 2:00 PM PT work?"
	assert.Equal(t, raw, ExtractBody(raw))
}

func TestParse(t *testing.T) {
	msg := Parse(sampleRaw)

	assert.Equal(t, "Instabase - Senior Backend Engineer", msg.Subject)
	assert.Equal(t, Sender{Name: "Casey Rivera", Email: "casey@instabase.com"}, msg.From)
	assert.Equal(t, "Mon, 20 Oct 2025 09:15:00 -0700", msg.Date)
	assert.Contains(t, msg.Body, "Thu Oct 23")
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("Mon, 20 Oct 2025 09:15:00 -0700")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 10, 20, 16, 15, 0, 0, time.UTC), got.UTC())

	got, ok = ParseDate("2025-10-20T16:15:00Z")
	require.True(t, ok)
	assert.Equal(t, 2025, got.Year())

	_, ok = ParseDate("next tuesday-ish")
	assert.False(t, ok)

	_, ok = ParseDate("")
	assert.False(t, ok)
}
