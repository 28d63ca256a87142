package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// Compile-time check: Lifecycle implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Lifecycle)(nil)

// Lifecycle validates tenant status changes with looplab/fsm.
//
// looplab/fsm machines carry their own current state, so Apply builds a
// short-lived machine seeded with the tenant's status on every call.
type Lifecycle struct {
	events []loopfsm.EventDesc
}

// New creates a lifecycle over domain.Transitions.
func New() *Lifecycle {
	return NewWithTransitions(domain.Transitions)
}

// NewWithTransitions creates a lifecycle over a custom transition table.
func NewWithTransitions(transitions []domain.Transition) *Lifecycle {
	return &Lifecycle{events: eventDescs(transitions)}
}

// eventDescs folds transitions sharing an event and destination into one
// EventDesc with several sources, keeping first-seen order.
func eventDescs(transitions []domain.Transition) []loopfsm.EventDesc {
	type key struct {
		event domain.Event
		dst   domain.Status
	}
	index := make(map[key]int)
	var out []loopfsm.EventDesc

	for _, t := range transitions {
		k := key{event: t.Event, dst: t.Dst}
		if i, ok := index[k]; ok {
			out[i].Src = append(out[i].Src, string(t.Src))
			continue
		}
		index[k] = len(out)
		out = append(out, loopfsm.EventDesc{
			Name: string(t.Event),
			Src:  []string{string(t.Src)},
			Dst:  string(t.Dst),
		})
	}
	return out
}

// Apply returns the status reached by firing event from current, or a
// domain.TransitionError when the event is not allowed there.
func (l *Lifecycle) Apply(ctx context.Context, current domain.Status, event domain.Event) (domain.Status, error) {
	machine := loopfsm.NewFSM(string(current), l.events, nil)

	err := machine.Event(ctx, string(event))
	var invalidEvent loopfsm.InvalidEventError
	var unknownEvent loopfsm.UnknownEventError
	switch {
	case err == nil:
		return domain.Status(machine.Current()), nil
	case errors.As(err, &invalidEvent), errors.As(err, &unknownEvent):
		return "", &domain.TransitionError{Event: event, Current: current}
	default:
		return "", err
	}
}

// Can reports whether event may fire from current.
func (l *Lifecycle) Can(current domain.Status, event domain.Event) bool {
	return loopfsm.NewFSM(string(current), l.events, nil).Can(string(event))
}
