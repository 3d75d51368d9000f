package convert

import "time"

// State is the lifecycle of one conversion:
// Idle -> Requested -> {Succeeded | Failed} -> Idle.
type State int

const (
	StateIdle State = iota
	StateRequested
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "idle"
}

// Event reports a state transition. Kind and Elapsed are set on the terminal
// transitions only.
type Event struct {
	Op      Operation
	State   State
	Kind    Kind
	Elapsed time.Duration
}

// Observer receives conversion lifecycle events.
type Observer func(Event)

// begin records Requested and returns the function that records the outcome
// and returns the conversion to Idle.
func (s *Service) begin(op Operation) func(error) {
	start := time.Now()
	s.emit(Event{Op: op, State: StateRequested})

	return func(err error) {
		ev := Event{Op: op, State: StateSucceeded, Elapsed: time.Since(start)}
		if err != nil {
			ev.State = StateFailed
			ev.Kind = KindOf(err)
		}
		s.emit(ev)
		s.emit(Event{Op: op, State: StateIdle})

		s.log.Debug().
			Str("op", string(op)).
			Str("outcome", ev.State.String()).
			Str("kind", string(ev.Kind)).
			Dur("elapsed", ev.Elapsed).
			Msg("conversion finished")
	}
}

func (s *Service) emit(ev Event) {
	if s.opts.Observer != nil {
		s.opts.Observer(ev)
	}
}
