package testutil

import (
	"fmt"
	"strings"
)

// MessageBuilder composes raw RFC 5322 style messages for tests.
type MessageBuilder struct {
	headers [][2]string
	body    string
}

// NewMessage starts a message with the given From and Subject headers.
func NewMessage(from, subject string) *MessageBuilder {
	b := &MessageBuilder{}
	if from != "" {
		b.Header("From", from)
	}
	if subject != "" {
		b.Header("Subject", subject)
	}
	return b
}

// Header appends a header line. Repeated names are kept in order.
func (b *MessageBuilder) Header(name, value string) *MessageBuilder {
	b.headers = append(b.headers, [2]string{name, value})
	return b
}

// Date appends a Date header.
func (b *MessageBuilder) Date(value string) *MessageBuilder {
	return b.Header("Date", value)
}

// Body sets the message body.
func (b *MessageBuilder) Body(body string) *MessageBuilder {
	b.body = body
	return b
}

// String renders the message with CRLF line endings.
func (b *MessageBuilder) String() string {
	var sb strings.Builder
	for _, h := range b.headers {
		fmt.Fprintf(&sb, "%s: %s\r\n", h[0], h[1])
	}
	sb.WriteString("\r\n")
	sb.WriteString(b.body)
	return sb.String()
}
