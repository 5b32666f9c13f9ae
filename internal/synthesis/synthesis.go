// Package synthesis combines the analyzer reports into the candidate credit score.
package synthesis

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/anandbmuley/deep-signal/internal/agents"
	"github.com/anandbmuley/deep-signal/internal/candidate"
	"github.com/anandbmuley/deep-signal/internal/logger"
	"github.com/anandbmuley/deep-signal/internal/report"
)

const (
	Key       = "synthesizer"
	AgentName = "Credit Score Synthesis"

	unknownCandidate = "UNKNOWN"
)

// Synthesizer is deterministic for a given set of reports and clock.
type Synthesizer struct {
	config Config
	logger *zap.Logger
	now    func() time.Time
}

// Option customizes a Synthesizer.
type Option func(*Synthesizer)

// WithClock overrides the time source used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		if now != nil {
			s.now = now
		}
	}
}

func New(cfg Config, log *zap.Logger, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		config: cfg.withDefaults(),
		logger: logger.WithFields(log, zap.String(logger.FieldAgent, Key)),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synthesizer) Status() agents.Status {
	return agents.Status{Key: Key, Name: AgentName, State: agents.StateReady}
}

// Synthesize builds the final report. Nil reports are ignored.
func (s *Synthesizer) Synthesize(profile *candidate.Profile, reports map[string]*report.AgentReport) *report.AnalysisReport {
	present := make(map[string]*report.AgentReport, len(reports))
	for key, rep := range reports {
		if rep != nil {
			present[key] = rep
		}
	}
	keys := s.orderedKeys(present)

	score := s.CreditScore(present)
	tier := s.Tier(present, score)

	candidateID := unknownCandidate
	if profile != nil && profile.CandidateID != "" {
		candidateID = profile.CandidateID
	}

	result := &report.AnalysisReport{
		CandidateID:      candidateID,
		CreditScore:      report.Round(score, 2),
		AgentReports:     present,
		OverallRiskLevel: tier,
		KeyFindings:      findings(s.config.Findings, keys, present),
		Recommendations:  s.recommendations(score, tier, keys, present),
		Metadata:         metadata(keys, present),
		GeneratedAt:      s.now(),
	}

	s.logger.Info("credit score synthesized",
		zap.String(logger.FieldCandidate, candidateID),
		zap.Float64("credit_score", result.CreditScore),
		zap.Stringer("risk_level", tier),
		zap.Int("risk_factors", result.Metadata.TotalRiskFactors),
	)

	return result
}

// CreditScore is the confidence-weighted mean of the agent scores minus every
// risk penalty, clamped to [0, 100].
func (s *Synthesizer) CreditScore(reports map[string]*report.AgentReport) float64 {
	var weighted, totalWeight, penalty float64
	for _, key := range s.orderedKeys(reports) {
		rep := reports[key]
		if rep == nil {
			continue
		}
		w := s.config.Weights[key] * rep.Confidence
		weighted += w * rep.Score
		totalWeight += w

		for _, risk := range rep.RiskFactors {
			penalty += risk.Penalty()
		}
	}

	base := s.config.NeutralScore
	if totalWeight > 0 {
		base = weighted / totalWeight
	}
	return report.Clamp(base-penalty, 0, 100)
}

// Tier maps risk counts and the credit score to the overall risk level.
func (s *Synthesizer) Tier(reports map[string]*report.AgentReport, score float64) report.RiskLevel {
	var critical, high, medium int
	for _, rep := range reports {
		critical += rep.CountBySeverity(report.RiskCritical)
		high += rep.CountBySeverity(report.RiskHigh)
		medium += rep.CountBySeverity(report.RiskMedium)
	}

	switch {
	case critical > 0 || score < s.config.CriticalBelow:
		return report.RiskCritical
	case high >= 2 || score < s.config.HighBelow:
		return report.RiskHigh
	case high >= 1 || medium >= 2 || score < s.config.MediumBelow:
		return report.RiskMedium
	default:
		return report.RiskLow
	}
}

// orderedKeys lists weighted keys in a stable order first, then the rest alphabetically.
func (s *Synthesizer) orderedKeys(reports map[string]*report.AgentReport) []string {
	keys := make([]string, 0, len(reports))
	for key := range reports {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := keyRank(keys[i]), keyRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func metadata(keys []string, reports map[string]*report.AgentReport) report.Metadata {
	meta := report.Metadata{AgentsUsed: append([]string{}, keys...)}
	if len(keys) == 0 {
		return meta
	}

	sum := 0.0
	for _, key := range keys {
		meta.TotalRiskFactors += len(reports[key].RiskFactors)
		sum += reports[key].Confidence
	}
	meta.AverageConfidence = report.Round(sum/float64(len(keys)), 2)
	return meta
}
