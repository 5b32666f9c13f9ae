// Package orchestrator runs the analyzers for one candidate and synthesizes the credit score.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anandbmuley/deep-signal/internal/agents"
	"github.com/anandbmuley/deep-signal/internal/candidate"
	"github.com/anandbmuley/deep-signal/internal/logger"
	"github.com/anandbmuley/deep-signal/internal/report"
	"github.com/anandbmuley/deep-signal/internal/synthesis"
)

// ErrPII is returned when the candidate id looks like personal data.
var ErrPII = errors.New("candidate id must be anonymous")

var phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`)

// Orchestrator is safe for concurrent use; it keeps no per-request state.
type Orchestrator struct {
	agents      []agents.Agent
	synthesizer *synthesis.Synthesizer
	logger      *zap.Logger
}

func New(synthesizer *synthesis.Synthesizer, log *zap.Logger, steps ...agents.Agent) *Orchestrator {
	return &Orchestrator{
		agents:      steps,
		synthesizer: synthesizer,
		logger:      logger.WithFields(log),
	}
}

// CheckAnonymousID rejects ids that look like an email address or a phone number.
// It is a heuristic; callers stay responsible for anonymization.
func CheckAnonymousID(id string) error {
	if strings.Contains(id, "@") {
		return fmt.Errorf("%w: candidate id appears to contain an email address, use anonymous identifiers only (e.g. 'CAND-12345')", ErrPII)
	}

	if !strings.Contains(id, "-") {
		return nil
	}
	digits := 0
	for _, r := range id {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits >= 10 && phonePattern.MatchString(id) {
		return fmt.Errorf("%w: candidate id appears to contain a phone number, use anonymous identifiers only (e.g. 'CAND-12345')", ErrPII)
	}
	return nil
}

// Analyze runs every analyzer concurrently, waits for all of them and
// synthesizes the final report. Analyzer failures never fail the call.
func (o *Orchestrator) Analyze(ctx context.Context, profile *candidate.Profile) (*report.AnalysisReport, error) {
	if profile == nil {
		return nil, errors.New("candidate profile is required")
	}
	if err := CheckAnonymousID(profile.CandidateID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := logger.WithFields(o.logger,
		zap.String(logger.FieldRun, uuid.NewString()),
		zap.String(logger.FieldCandidate, profile.CandidateID),
	)
	started := time.Now()
	log.Info("candidate analysis started", zap.Int("agents", len(o.agents)))

	outcomes := make([]agents.Outcome, len(o.agents))
	g, gctx := errgroup.WithContext(ctx)
	for i, agent := range o.agents {
		g.Go(func() error {
			outcomes[i] = runAgent(gctx, agent, profile, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reports := make(map[string]*report.AgentReport, len(o.agents))
	for i, agent := range o.agents {
		outcome := outcomes[i]
		if !outcome.OK() {
			log.Info("agent fell back to a neutral report",
				zap.String(logger.FieldAgent, agent.Key()),
				zap.String("reason", outcome.Unavailable),
			)
		}
		reports[agent.Key()] = outcome.Report
	}

	result := o.synthesizer.Synthesize(profile, reports)

	log.Info("candidate analysis completed",
		zap.Float64("credit_score", result.CreditScore),
		zap.Stringer("risk_level", result.OverallRiskLevel),
		zap.Duration("elapsed", time.Since(started)),
	)

	return result, nil
}

// runAgent shields the pipeline from analyzer panics.
func runAgent(ctx context.Context, agent agents.Agent, profile *candidate.Profile, log *zap.Logger) (outcome agents.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("agent panicked", zap.String(logger.FieldAgent, agent.Key()), zap.Any("panic", r))
			outcome = agents.Outcome{Unavailable: fmt.Sprintf("agent panicked: %v", r)}
		}
	}()
	return agent.Analyze(ctx, profile)
}

// Status reports readiness of every analyzer followed by the synthesizer.
func (o *Orchestrator) Status() []agents.Status {
	statuses := agents.Describe(o.agents)
	return append(statuses, o.synthesizer.Status())
}
