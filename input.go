package oekaki

import "fmt"

// EventKind tags a pointer sample.
type EventKind int

const (
	// EventStart is a pointer-down.
	EventStart EventKind = iota
	// EventMove is a pointer-move while the pointer is down.
	EventMove
	// EventEnd is a pointer-up.
	EventEnd
	// EventCancel is a loss of pointer capture.
	EventCancel
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventMove:
		return "move"
	case EventEnd:
		return "end"
	case EventCancel:
		return "cancel"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one pointer sample in Surface-local coordinates.
type Event struct {
	Kind  EventKind
	Point Point
}

// Handle feeds one input event into the stroke state machine.
//
// Handle is the input guard the engine relies on: a start that arrives
// while a stroke is still active first finalizes that stroke through the
// normal end path, so two strokes never overlap. Moves, ends and cancels
// that arrive while idle are dropped.
func (e *Engine) Handle(ev Event) {
	switch ev.Kind {
	case EventStart:
		if e.state == stateActive {
			e.EndStroke()
		}
		e.StartStroke(ev.Point)
	case EventMove:
		e.ContinueStroke(ev.Point)
	case EventEnd:
		e.EndStroke()
	case EventCancel:
		e.CancelStroke()
	}
}
