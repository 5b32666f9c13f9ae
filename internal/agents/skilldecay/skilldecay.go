// Package skilldecay scores how stale a candidate's claimed skills are and
// verifies the claims against the work history.
package skilldecay

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/anandbmuley/deep-signal/internal/agents"
	"github.com/anandbmuley/deep-signal/internal/candidate"
	"github.com/anandbmuley/deep-signal/internal/logger"
	"github.com/anandbmuley/deep-signal/internal/report"
)

const (
	Key       = "resume"
	AgentName = "Skill Decay Analysis"

	SignalDecayScores  = "skill_decay_scores"
	SignalAverageDecay = "average_skill_decay_score"
	SignalVerification = "skill_verification"

	CategorySkillDecay = "skill_decay"
	CategoryUnverified = "unverified_skills"
)

// Verification summarizes claimed skills matched against work history.
type Verification struct {
	TotalSkills      int      `mapstructure:"total_skills" json:"total_skills"`
	VerifiedSkills   []string `mapstructure:"verified_skills" json:"verified_skills"`
	VerifiedCount    int      `mapstructure:"verified_count" json:"verified_count"`
	UnverifiedSkills []string `mapstructure:"unverified_skills" json:"unverified_skills"`
	UnverifiedCount  int      `mapstructure:"unverified_count" json:"unverified_count"`
	VerificationRate float64  `mapstructure:"verification_rate" json:"verification_rate"`
}

// Analyzer implements agents.Agent for resume skill currency.
type Analyzer struct {
	config Config
	logger *zap.Logger
	now    func() time.Time
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the time source used to measure skill age.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates the skill decay analyzer.
func New(cfg Config, log *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		config: cfg.withDefaults(),
		logger: logger.WithFields(log, zap.String(logger.FieldAgent, Key)),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Key() string  { return Key }
func (a *Analyzer) Name() string { return AgentName }

func (a *Analyzer) Status() agents.Status {
	return agents.Status{
		Key:   Key,
		Name:  AgentName,
		State: agents.StateReady,
		Details: map[string]string{
			"half_life_months": fmt.Sprintf("%.1f", a.config.HalfLifeMonths),
		},
	}
}

// Analyze scores skill currency and claim verification. It never fails.
func (a *Analyzer) Analyze(_ context.Context, profile *candidate.Profile) agents.Outcome {
	if profile == nil {
		profile = &candidate.Profile{}
	}
	now := a.now()

	scores, order := a.decayScores(profile.Skills, now)

	avg := 0.0
	if len(order) > 0 {
		sum := 0.0
		for _, name := range order {
			sum += scores[name]
		}
		avg = sum / float64(len(order))
	}

	verification := verify(profile, order)
	risks := a.risks(scores, order, verification)

	score := report.Clamp(avg-float64(verification.UnverifiedCount)*a.config.UnverifiedScorePenalty, 0, 100)
	confidence := a.confidence(profile)

	a.logger.Debug("skill decay analysis completed",
		zap.String(logger.FieldCandidate, profile.CandidateID),
		zap.Int("skills", len(order)),
		zap.Float64("average_decay", avg),
		zap.Float64("verification_rate", verification.VerificationRate),
		zap.Int("risks", len(risks)),
	)

	return agents.Outcome{Report: &report.AgentReport{
		AgentName:   AgentName,
		Score:       report.Round(score, 2),
		Confidence:  report.Round(confidence, 2),
		RiskFactors: risks,
		Signals: map[string]any{
			SignalDecayScores:  scores,
			SignalAverageDecay: report.Round(avg, 2),
			SignalVerification: verification,
		},
		Timestamp: now,
	}}
}

// DecayScore applies the exponential half-life curve to the time elapsed since lastUsed.
func (a *Analyzer) DecayScore(lastUsed *time.Time, now time.Time) float64 {
	if lastUsed == nil {
		return a.config.UndatedScore
	}
	elapsed := now.Sub(*lastUsed)
	if elapsed < 0 {
		elapsed = 0
	}
	months := elapsed.Hours() / 24 / a.config.DaysPerMonth
	lambda := math.Ln2 / a.config.HalfLifeMonths
	return 100 * math.Exp(-lambda*months)
}

// decayScores returns per-skill scores and the skill names in first-seen order.
func (a *Analyzer) decayScores(skills []candidate.Skill, now time.Time) (map[string]float64, []string) {
	scores := make(map[string]float64, len(skills))
	order := make([]string, 0, len(skills))
	for _, skill := range skills {
		if _, seen := scores[skill.Name]; seen {
			continue
		}
		scores[skill.Name] = report.Round(a.DecayScore(skill.LastUsed, now), 2)
		order = append(order, skill.Name)
	}
	return scores, order
}

func verify(profile *candidate.Profile, claimed []string) Verification {
	referenced := profile.ReferencedSkills()

	v := Verification{
		TotalSkills:      len(claimed),
		VerifiedSkills:   []string{},
		UnverifiedSkills: []string{},
	}
	for _, name := range claimed {
		if _, ok := referenced[name]; ok {
			v.VerifiedSkills = append(v.VerifiedSkills, name)
		} else {
			v.UnverifiedSkills = append(v.UnverifiedSkills, name)
		}
	}
	v.VerifiedCount = len(v.VerifiedSkills)
	v.UnverifiedCount = len(v.UnverifiedSkills)
	if v.TotalSkills > 0 {
		v.VerificationRate = report.Round(float64(v.VerifiedCount)/float64(v.TotalSkills)*100, 2)
	}
	return v
}

func (a *Analyzer) risks(scores map[string]float64, order []string, v Verification) []report.RiskFactor {
	risks := make([]report.RiskFactor, 0)

	for _, name := range order {
		score := scores[name]
		if score >= a.config.DecayRiskThreshold {
			continue
		}
		severity, impact := report.RiskMedium, a.config.DecayRiskImpact
		if score < a.config.SevereDecayThreshold {
			severity, impact = report.RiskHigh, a.config.SevereDecayImpact
		}
		risks = append(risks, report.NewRiskFactor(
			CategorySkillDecay, severity, impact,
			fmt.Sprintf("Skill '%s' shows significant decay (score: %.2f)", name, score),
			map[string]any{"skill": name, "decay_score": score},
		))
	}

	if v.UnverifiedCount > 0 {
		severity := report.RiskMedium
		if v.VerificationRate < a.config.LowVerificationRate {
			severity = report.RiskHigh
		}
		risks = append(risks, report.NewRiskFactor(
			CategoryUnverified, severity, float64(v.UnverifiedCount)*a.config.UnverifiedRiskImpact,
			fmt.Sprintf("%d skill(s) not verified in work experience", v.UnverifiedCount),
			map[string]any{
				"unverified_skills": v.UnverifiedSkills,
				"verification_rate": v.VerificationRate,
			},
		))
	}

	return risks
}

func (a *Analyzer) confidence(profile *candidate.Profile) float64 {
	factors := make([]float64, 0, 3)

	if n := len(profile.Skills); n > 0 {
		dated := 0
		for _, s := range profile.Skills {
			if s.LastUsed != nil {
				dated++
			}
		}
		factors = append(factors, float64(dated)/float64(n))
	}

	if n := len(profile.WorkExperience); n > 0 {
		factors = append(factors, math.Min(float64(n)/a.config.ExperienceSaturation, 1))

		withSkills := 0
		for _, exp := range profile.WorkExperience {
			if len(exp.SkillsUsed) > 0 {
				withSkills++
			}
		}
		factors = append(factors, float64(withSkills)/float64(n))
	}

	if len(factors) == 0 {
		return a.config.DefaultConfidence
	}

	sum := 0.0
	for _, f := range factors {
		sum += f
	}
	return sum / float64(len(factors))
}
