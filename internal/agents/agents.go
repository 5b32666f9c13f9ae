// Package agents defines the uniform capability shared by the candidate analyzers.
package agents

import (
	"context"

	"github.com/anandbmuley/deep-signal/internal/candidate"
	"github.com/anandbmuley/deep-signal/internal/report"
)

const (
	StateReady   = "ready"
	StateLimited = "limited"
)

// Agent produces an AgentReport for a candidate. Implementations must not
// mutate the profile and must always return a populated report.
type Agent interface {
	// Key is the slot the report occupies in the final analysis ("resume", "github").
	Key() string
	Name() string
	Status() Status
	Analyze(ctx context.Context, profile *candidate.Profile) Outcome
}

// Outcome is the tagged result of one analyzer run. Unavailable is set when
// the analyzer fell back to a neutral report; Report is populated either way.
type Outcome struct {
	Report      *report.AgentReport
	Unavailable string
}

// OK reports whether the analyzer worked from live data.
func (o Outcome) OK() bool {
	return o.Unavailable == ""
}

// Status represents runtime readiness of an agent.
type Status struct {
	Key     string            `json:"key"`
	Name    string            `json:"name"`
	State   string            `json:"status"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Ready reports whether the agent works at full capacity.
func (s Status) Ready() bool {
	return s.State == StateReady
}

// String renders the state with its reason, e.g. "limited (no GitHub token)".
func (s Status) String() string {
	if s.Reason == "" {
		return s.State
	}
	return s.State + " (" + s.Reason + ")"
}

// Describe returns status entries for the provided agents in order.
func Describe(steps []Agent) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		statuses = append(statuses, step.Status())
	}
	return statuses
}
