// Package lifecycle is the opportunity state machine.
//
// Apply is a pure function: it reads no clock and touches no storage. The
// caller supplies the instant, and the returned event carries a uid derived
// from the request, so handing the same transition to the store twice
// records it once.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/opptrack/internal/ident"
	"github.com/roach88/opptrack/internal/model"
)

var (
	// ErrInvalidTransition is returned for edges missing from the table.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrStaleTransition is returned when the opportunity is in neither the
	// From nor the To state of the request.
	ErrStaleTransition = errors.New("stale lifecycle transition")
)

// transitions lists the allowed edges. Terminal states have no entry.
var transitions = map[model.State][]model.State{
	model.StateRecruiterOutreach: {
		model.StatePhoneScreenScheduled,
		model.StateApplied,
		model.StateRejected,
		model.StateWithdrawn,
	},
	model.StatePhoneScreenScheduled: {
		model.StateInterviewing,
		model.StateRejected,
		model.StateWithdrawn,
	},
	model.StateApplied: {
		model.StatePhoneScreenScheduled,
		model.StateInterviewing,
		model.StateRejected,
		model.StateWithdrawn,
	},
	model.StateInterviewing: {
		model.StateOffer,
		model.StateRejected,
		model.StateWithdrawn,
	},
	model.StateOffer: {
		model.StateRejected,
		model.StateWithdrawn,
	},
}

// rank orders states along the forward path. Terminal outcomes share the
// highest rank.
var rank = map[model.State]int{
	model.StateRecruiterOutreach:    0,
	model.StateApplied:              1,
	model.StatePhoneScreenScheduled: 2,
	model.StateInterviewing:         3,
	model.StateOffer:                4,
	model.StateRejected:             5,
	model.StateWithdrawn:            5,
}

// Request describes a desired state change.
type Request struct {
	From       model.State
	To         model.State
	OccurredAt time.Time
	Note       string
}

// Result is the outcome of a transition and the event that records it.
type Result struct {
	LifecycleState model.State
	OccurredAt     time.Time
	Event          model.Event
}

// Valid reports whether s is a known state.
func Valid(s model.State) bool {
	_, ok := rank[s]
	return ok
}

// Rank returns the position of s along the forward path, or -1 when unknown.
func Rank(s model.State) int {
	r, ok := rank[s]
	if !ok {
		return -1
	}
	return r
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to model.State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Apply computes the transition of an opportunity currently in current.
//
// A request whose To state already equals current is treated as a replay
// and yields the same result as the original call.
func Apply(opportunityUID string, current model.State, req Request) (Result, error) {
	if !CanTransition(req.From, req.To) {
		return Result{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.From, req.To)
	}
	if current != req.From && current != req.To {
		return Result{}, fmt.Errorf("%w: opportunity %s is %s, request expects %s",
			ErrStaleTransition, opportunityUID, current, req.From)
	}

	to := req.To
	occurredAt := req.OccurredAt.UTC()
	return Result{
		LifecycleState: to,
		OccurredAt:     occurredAt,
		Event: model.Event{
			EventUID:       ident.TransitionUID(opportunityUID, req.From, req.To, occurredAt, req.Note),
			OpportunityUID: opportunityUID,
			Type:           model.EventLifecycleTransition,
			OccurredAt:     occurredAt,
			Payload: model.Payload{
				"from": string(req.From),
				"to":   string(req.To),
				"note": req.Note,
			},
			LifecycleState: &to,
		},
	}, nil
}
