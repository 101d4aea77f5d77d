package client

import (
	"io"

	"clubassist/dispatch"
	"clubassist/trigger"
	"clubassist/types"
)

// Session wires the two consumers of one assistant response together: the
// rendering consumer sees deltas as they arrive, the classification
// consumer fires exactly once, after the terminal sentinel.
type Session struct {
	dispatcher  *dispatch.Dispatcher
	displayName string
}

func NewSession(dispatcher *dispatch.Dispatcher, displayName string) *Session {
	return &Session{
		dispatcher:  dispatcher,
		displayName: displayName,
	}
}

// Consume reads one streamed response and applies the resulting decision.
// A rate-limited or server-ended stream takes the forced-close path and
// skips classification entirely.
func (s *Session) Consume(r io.Reader, onText func(string)) (types.TriggerDecision, error) {
	if err := s.dispatcher.Begin(); err != nil {
		return types.TriggerDecision{}, err
	}

	transcript, err := ReadStream(r, onText)
	if err != nil {
		return types.TriggerDecision{}, err
	}

	if transcript.RateLimited || transcript.EndChat {
		return types.TriggerDecision{Action: types.ActionAutoClose}, s.dispatcher.RateLimited()
	}

	decision := trigger.Classify(transcript.Text)
	return decision, s.dispatcher.Decide(decision, s.displayName)
}
