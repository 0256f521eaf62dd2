// Package negotiate resolves one safe scene configuration per image.
//
// The negotiator runs an explicit four-state machine: it samples a candidate,
// has it judged, and either accepts it or retries until a configured attempt
// cap is reached. Exhaustion is a first-class outcome, never an unsafe accept
// and never an unbounded loop. Every attempt is retained on the outcome so
// callers can quantify rejection rates.
package negotiate

import (
	"github.com/matzehuels/cobotgen/pkg/constraint"
	"github.com/matzehuels/cobotgen/pkg/errors"
	"github.com/matzehuels/cobotgen/pkg/sampler"
)

// State is the negotiator's position in the per-image state machine.
type State int

// Negotiation states. Sampling and Evaluating are transient; Accepted and
// Exhausted are terminal.
const (
	StateSampling State = iota
	StateEvaluating
	StateAccepted
	StateExhausted
)

// String returns the log spelling of the state.
func (s State) String() string {
	switch s {
	case StateSampling:
		return "SAMPLING"
	case StateEvaluating:
		return "EVALUATING"
	case StateAccepted:
		return "ACCEPTED"
	case StateExhausted:
		return "EXHAUSTED"
	}
	return "UNKNOWN"
}

// CandidateSource produces one candidate pose set per call. Implementations
// draw from a seeded random source, so call order is significant.
type CandidateSource interface {
	Sample() sampler.Candidate
}

// Judge classifies a candidate pose set. Implementations typically apply the
// candidate to a scene and evaluate the resulting volumes.
type Judge interface {
	Judge(cand sampler.Candidate) (constraint.Evaluation, error)
}

// AttemptResult is one sample-and-evaluate round, retained whether or not it
// was accepted.
type AttemptResult struct {
	Number     int // 1-based
	Candidate  sampler.Candidate
	Evaluation constraint.Evaluation
}

// Outcome is the terminal result of negotiating one image.
type Outcome struct {
	State    State
	Attempts []AttemptResult

	// Accepted is the winning attempt, nil when exhausted.
	Accepted *AttemptResult
}

// AttemptCount returns how many rounds the negotiation consumed.
func (o Outcome) AttemptCount() int { return len(o.Attempts) }

// Negotiator resolves scene configurations against a fixed attempt budget.
// It holds no cross-image state; a single value can resolve any number of
// images sequentially.
type Negotiator struct {
	source      CandidateSource
	judge       Judge
	maxAttempts int
}

// New builds a negotiator. The attempt cap must be positive; an unbounded
// negotiation is a configuration error.
func New(source CandidateSource, judge Judge, maxAttempts int) (*Negotiator, error) {
	if source == nil || judge == nil {
		return nil, errors.New(errors.ErrCodeInternal, "negotiator requires a candidate source and a judge")
	}
	if maxAttempts <= 0 {
		return nil, errors.New(errors.ErrCodeConfigValue, "max attempts must be positive, got %d", maxAttempts)
	}
	return &Negotiator{source: source, judge: judge, maxAttempts: maxAttempts}, nil
}

// Resolve runs the state machine for one image until a terminal state. The
// returned outcome is ACCEPTED with the winning attempt, or EXHAUSTED with
// the full rejected history; it never exceeds the attempt cap. An error from
// the judge aborts the negotiation and indicates a wiring defect, not an
// unsafe scene.
func (n *Negotiator) Resolve() (Outcome, error) {
	outcome := Outcome{State: StateSampling}

	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		cand := n.source.Sample()

		outcome.State = StateEvaluating
		eval, err := n.judge.Judge(cand)
		if err != nil {
			return Outcome{}, err
		}

		result := AttemptResult{Number: attempt, Candidate: cand, Evaluation: eval}
		outcome.Attempts = append(outcome.Attempts, result)

		if eval.Verdict == constraint.Safe {
			outcome.State = StateAccepted
			outcome.Accepted = &outcome.Attempts[len(outcome.Attempts)-1]
			return outcome, nil
		}
		outcome.State = StateSampling
	}

	outcome.State = StateExhausted
	return outcome, nil
}
