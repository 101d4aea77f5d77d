// Package dispatch applies a classified trigger decision to the chat UI.
// The timeline is modeled as an explicit state machine so side effects can
// only fire after the streamed message has fully rendered.
package dispatch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"clubassist/types"
)

// Effects is the small surface of UI side effects the dispatcher drives.
type Effects interface {
	Navigate(path string)
	OpenTab(path string)
	Reload()
	ComposeMail(mailto string)
	Close()
}

type State int

const (
	StateIdle State = iota
	StateStreaming
	StateDecided
	StateDispatching
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateDecided:
		return "decided"
	case StateDispatching:
		return "dispatching"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

var ErrBadTransition = errors.New("invalid dispatcher state transition")

// Delays let the streaming-text animation finish before the UI changes.
type Delays struct {
	Navigate        time.Duration
	OpenTabs        time.Duration
	RefreshInterval time.Duration
	AutoClose       time.Duration
	RateLimited     time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		Navigate:        100 * time.Millisecond,
		OpenTabs:        2000 * time.Millisecond,
		RefreshInterval: 500 * time.Millisecond,
		AutoClose:       3000 * time.Millisecond,
		RateLimited:     7000 * time.Millisecond,
	}
}

type Dispatcher struct {
	effects Effects
	delays  Delays
	sleep   func(time.Duration)
	state   State
}

type Option func(*Dispatcher)

// WithSleep replaces the real clock, used by tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(d *Dispatcher) { d.sleep = sleep }
}

func New(effects Effects, delays Delays, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		effects: effects,
		delays:  delays,
		sleep:   time.Sleep,
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) State() State {
	return d.state
}

// Begin marks the start of a streamed assistant message.
func (d *Dispatcher) Begin() error {
	if d.state != StateIdle {
		return fmt.Errorf("%w: begin from %s", ErrBadTransition, d.state)
	}
	d.state = StateStreaming
	return nil
}

// Decide records the classification of the fully rendered message and
// applies it. The display name parameterizes the mailto template.
func (d *Dispatcher) Decide(decision types.TriggerDecision, displayName string) error {
	if d.state != StateStreaming {
		return fmt.Errorf("%w: decide from %s", ErrBadTransition, d.state)
	}
	d.state = StateDecided
	return d.run(decision, displayName)
}

// RateLimited is the forced-close path for a busy upstream model: the user
// gets long enough to read the canned message, then the chat closes.
func (d *Dispatcher) RateLimited() error {
	if d.state != StateStreaming && d.state != StateIdle {
		return fmt.Errorf("%w: rate-limited from %s", ErrBadTransition, d.state)
	}
	d.state = StateDispatching
	d.sleep(d.delays.RateLimited)
	d.effects.Close()
	d.state = StateClosed
	return nil
}

func (d *Dispatcher) run(decision types.TriggerDecision, displayName string) error {
	if decision.Action == types.ActionContinue {
		d.state = StateIdle
		return nil
	}
	d.state = StateDispatching

	// Background tabs open before any primary action: navigation or a
	// reload would destroy the page that opens them.
	if len(decision.TabPaths) > 0 {
		d.sleep(d.delays.OpenTabs)
		for _, path := range decision.TabPaths {
			d.effects.OpenTab(path)
		}
	}

	switch decision.Action {
	case types.ActionNavigate:
		d.sleep(d.delays.Navigate)
		d.effects.Navigate(decision.TargetPath)
		d.effects.Close()
	case types.ActionEmailThreat:
		d.sleep(d.delays.Navigate)
		d.effects.ComposeMail(ThreatMailto(displayName))
		d.sleep(d.delays.Navigate)
		d.effects.Close()
	case types.ActionRefresh:
		for i := 0; i < decision.RefreshCount; i++ {
			d.sleep(d.delays.RefreshInterval)
			d.effects.Reload()
		}
		d.state = StateIdle
		return nil
	case types.ActionOpenTabs:
		// tabs already opened above; the chat stays open
		d.state = StateIdle
		return nil
	case types.ActionAutoClose:
		d.sleep(d.delays.AutoClose)
		d.effects.Close()
	default:
		d.state = StateIdle
		return fmt.Errorf("unknown trigger action %q", decision.Action)
	}

	d.state = StateClosed
	return nil
}

// ThreatMailto renders the fixed complaint-mail template for the current
// user.
func ThreatMailto(displayName string) string {
	if displayName == "" {
		displayName = "a club member"
	}
	subject := "Regarding my conversation with your assistant"
	body := fmt.Sprintf("Hello,\n\n%s was talking to the website assistant and it decided to escalate.\n\nRegards,\n%s", displayName, displayName)
	return "mailto:?subject=" + escapeMailto(subject) + "&body=" + escapeMailto(body)
}

func escapeMailto(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
