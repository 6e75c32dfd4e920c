package recorder

import "time"

// Outcome classifies how a handler invocation ended.
type Outcome string

const (
	OutcomeRendered Outcome = "RENDERED"
	OutcomeNoop     Outcome = "NOOP"
	OutcomeRejected Outcome = "REJECTED" // input guard tripped
	OutcomeFailed   Outcome = "FAILED"   // collaborator error
)

// HandlerEvent describes one dashboard handler invocation.
type HandlerEvent struct {
	ID      string
	Handler string
	Ticker  string
	Outcome Outcome
	Error   string
	Elapsed time.Duration
	At      time.Time
}

// Recorder journals handler invocations. Market data itself is never stored.
type Recorder interface {
	RecordHandler(evt *HandlerEvent) error
	Close() error
}
