package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opptrack/internal/model"
)

func TestAuditKeyMatchesPlainConcatenation(t *testing.T) {
	occurred := time.Date(2025, 10, 20, 16, 5, 0, 0, time.UTC)

	got := AuditKey("evt-1", "recruiter_outreach_received", occurred)

	sum := sha256.Sum256([]byte("evt-1|recruiter_outreach_received|2025-10-20T16:05:00.000Z"))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
	assert.Len(t, got, 64, "SHA-256 hex is 64 characters")
}

func TestAuditKeyNormalizesToUTC(t *testing.T) {
	pt := time.FixedZone("PT", -7*3600)
	local := time.Date(2025, 10, 20, 9, 5, 0, 0, pt)
	utc := time.Date(2025, 10, 20, 16, 5, 0, 0, time.UTC)

	assert.Equal(t, AuditKey("evt-1", "a", utc), AuditKey("evt-1", "a", local))
}

func TestAuditKeyChangesWithInput(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	k1 := AuditKey("evt-1", "a", at)
	k2 := AuditKey("evt-2", "a", at)
	k3 := AuditKey("evt-1", "b", at)
	k4 := AuditKey("evt-1", "a", at.Add(time.Millisecond))

	assert.NotEqual(t, k1, k2, "different event uid")
	assert.NotEqual(t, k1, k3, "different action")
	assert.NotEqual(t, k1, k4, "different instant")
}

func TestAuditKeyDeterminismProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("AuditKey is a pure function of its inputs", prop.ForAll(
		func(uid, action string, millis int64) bool {
			at := time.UnixMilli(millis)
			return AuditKey(uid, action, at) == AuditKey(uid, action, at)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.Int64Range(0, 4102444800000),
	))

	properties.TestingRun(t)
}

func TestEventUIDDeterminism(t *testing.T) {
	at := time.Date(2025, 10, 20, 16, 5, 0, 0, time.UTC)
	payload := model.Payload{"subject": "Acme - Staff Engineer", "snippet": "Hi there"}

	id1, err := EventUID("opp-1", model.EventRecruiterOutreachReceived, at, payload)
	require.NoError(t, err)
	id2, err := EventUID("opp-1", model.EventRecruiterOutreachReceived, at, model.Payload{"snippet": "Hi there", "subject": "Acme - Staff Engineer"})
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "key order must not matter")
	assert.Len(t, id1, 64)
}

func TestEventUIDRejectsFloats(t *testing.T) {
	_, err := EventUID("opp-1", "x", time.Now(), model.Payload{"score": 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestTransitionUIDDeterminism(t *testing.T) {
	at := time.Date(2025, 10, 20, 16, 5, 0, 0, time.UTC)

	id1 := TransitionUID("opp-1", model.StateRecruiterOutreach, model.StatePhoneScreenScheduled, at, "note")
	id2 := TransitionUID("opp-1", model.StateRecruiterOutreach, model.StatePhoneScreenScheduled, at, "note")
	id3 := TransitionUID("opp-1", model.StateRecruiterOutreach, model.StatePhoneScreenScheduled, at, "other")

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}

func TestDomainsSeparateIdentities(t *testing.T) {
	digest := MessageDigest("hello")
	outreach := OutreachUID("opp-1", digest)

	canonical, err := MarshalCanonical(map[string]any{"opportunity_uid": "opp-1", "message_digest": digest})
	require.NoError(t, err)

	assert.Equal(t, hashWithDomain(DomainOutreach, canonical), outreach)
	assert.NotEqual(t, hashWithDomain(DomainEvent, canonical), outreach)
}

func TestFormatTime(t *testing.T) {
	at := time.Date(2025, 10, 23, 21, 0, 0, 123456789, time.UTC)
	assert.Equal(t, "2025-10-23T21:00:00.123Z", FormatTime(at))
}
