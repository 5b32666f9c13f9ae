package skilldecay

import (
	"context"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/anandbmuley/deep-signal/internal/candidate"
	"github.com/anandbmuley/deep-signal/internal/report"
)

var fixedNow = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestAnalyzer() *Analyzer {
	return New(DefaultConfig(), zap.NewNop(), WithClock(func() time.Time { return fixedNow }))
}

func daysAgo(days int) *time.Time {
	t := fixedNow.AddDate(0, 0, -days)
	return &t
}

func TestDecayScoreCurve(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()

	if got := a.DecayScore(daysAgo(0), fixedNow); got != 100 {
		t.Fatalf("expected 100 for a skill used today, got %v", got)
	}

	if got := a.DecayScore(daysAgo(540), fixedNow); math.Abs(got-50) > 0.01 {
		t.Fatalf("expected ~50 after one half-life, got %v", got)
	}

	if got := a.DecayScore(daysAgo(1080), fixedNow); math.Abs(got-25) > 0.01 {
		t.Fatalf("expected ~25 after two half-lives, got %v", got)
	}

	if got := a.DecayScore(nil, fixedNow); got != 50 {
		t.Fatalf("expected undated skill to score exactly 50, got %v", got)
	}

	future := fixedNow.AddDate(0, 1, 0)
	if got := a.DecayScore(&future, fixedNow); got != 100 {
		t.Fatalf("expected future date to be treated as today, got %v", got)
	}

	prev := 101.0
	for _, days := range []int{0, 30, 90, 365, 730, 1500, 4000} {
		got := a.DecayScore(daysAgo(days), fixedNow)
		if got >= prev {
			t.Fatalf("expected strictly decreasing score at %d days, got %v after %v", days, got, prev)
		}
		if got < 0 || got > 100 {
			t.Fatalf("score out of range at %d days: %v", days, got)
		}
		prev = got
	}
}

func TestAnalyzeRecentVerifiedSkills(t *testing.T) {
	t.Parallel()

	profile := &candidate.Profile{
		CandidateID: "CAND-001",
		Skills: []candidate.Skill{
			{Name: "Python", LastUsed: daysAgo(30)},
			{Name: "Go", LastUsed: daysAgo(10)},
		},
		WorkExperience: []candidate.WorkExperience{
			{Company: "Acme", Position: "Engineer", StartDate: fixedNow.AddDate(-2, 0, 0), SkillsUsed: []string{"Python", "Go"}},
		},
	}

	outcome := newTestAnalyzer().Analyze(context.Background(), profile)
	if !outcome.OK() {
		t.Fatalf("expected outcome to be ok, got %q", outcome.Unavailable)
	}

	rep := outcome.Report
	if rep.AgentName != AgentName {
		t.Fatalf("unexpected agent name %q", rep.AgentName)
	}
	if len(rep.RiskFactors) != 0 {
		t.Fatalf("expected no risks, got %+v", rep.RiskFactors)
	}
	if rep.Score < 90 {
		t.Fatalf("expected a high score for recent verified skills, got %v", rep.Score)
	}

	verification, ok := rep.Signals[SignalVerification].(Verification)
	if !ok {
		t.Fatalf("expected verification signal, got %T", rep.Signals[SignalVerification])
	}
	if verification.VerificationRate != 100 || verification.VerifiedCount != 2 {
		t.Fatalf("unexpected verification: %+v", verification)
	}

	scores, ok := rep.Signals[SignalDecayScores].(map[string]float64)
	if !ok || len(scores) != 2 {
		t.Fatalf("expected two decay scores, got %v", rep.Signals[SignalDecayScores])
	}

	// one dated-skill factor, one experience factor at 1/3, one with-skills factor
	expected := report.Round((1+1.0/3+1)/3, 2)
	if rep.Confidence != expected {
		t.Fatalf("expected confidence %v, got %v", expected, rep.Confidence)
	}
}

func TestAnalyzeFlagsDecayAndUnverifiedSkills(t *testing.T) {
	t.Parallel()

	profile := &candidate.Profile{
		CandidateID: "CAND-002",
		Skills: []candidate.Skill{
			{Name: "Perl", LastUsed: daysAgo(1500)},  // ~14.9, severe
			{Name: "Java", LastUsed: daysAgo(1000)},  // ~27.7, medium
			{Name: "Docker", LastUsed: daysAgo(60)},  // fresh
			{Name: "Fortran", LastUsed: daysAgo(60)}, // fresh, unverified
		},
		WorkExperience: []candidate.WorkExperience{
			{Company: "Acme", Position: "Engineer", StartDate: fixedNow.AddDate(-5, 0, 0), SkillsUsed: []string{"Perl", "Java", "Docker"}},
		},
	}

	rep := newTestAnalyzer().Analyze(context.Background(), profile).Report

	var severe, medium, unverified *report.RiskFactor
	for i := range rep.RiskFactors {
		risk := &rep.RiskFactors[i]
		switch {
		case risk.Category == CategorySkillDecay && risk.Details["skill"] == "Perl":
			severe = risk
		case risk.Category == CategorySkillDecay && risk.Details["skill"] == "Java":
			medium = risk
		case risk.Category == CategoryUnverified:
			unverified = risk
		}
	}

	if severe == nil || severe.Severity != report.RiskHigh || severe.ScoreImpact != -10 {
		t.Fatalf("expected high decay risk for Perl, got %+v", severe)
	}
	if medium == nil || medium.Severity != report.RiskMedium || medium.ScoreImpact != -5 {
		t.Fatalf("expected medium decay risk for Java, got %+v", medium)
	}
	if unverified == nil || unverified.Severity != report.RiskMedium || unverified.ScoreImpact != -3 {
		t.Fatalf("expected medium unverified risk, got %+v", unverified)
	}
	if len(rep.RiskFactors) != 3 {
		t.Fatalf("expected 3 risks, got %d", len(rep.RiskFactors))
	}

	avg, _ := rep.Signals[SignalAverageDecay].(float64)
	if want := report.Round(avg-5, 2); math.Abs(rep.Score-want) > 0.02 {
		t.Fatalf("expected score %v (average minus unverified penalty), got %v", want, rep.Score)
	}
}

func TestAnalyzeLowVerificationIsHighRisk(t *testing.T) {
	t.Parallel()

	profile := &candidate.Profile{
		CandidateID: "CAND-003",
		Skills: []candidate.Skill{
			{Name: "Rust", LastUsed: daysAgo(10)},
			{Name: "Elixir", LastUsed: daysAgo(10)},
			{Name: "Go", LastUsed: daysAgo(10)},
		},
		WorkExperience: []candidate.WorkExperience{
			{Company: "Acme", Position: "Engineer", StartDate: fixedNow.AddDate(-1, 0, 0), SkillsUsed: []string{"Go"}},
		},
	}

	rep := newTestAnalyzer().Analyze(context.Background(), profile).Report
	if len(rep.RiskFactors) != 1 {
		t.Fatalf("expected a single unverified risk, got %+v", rep.RiskFactors)
	}
	risk := rep.RiskFactors[0]
	if risk.Category != CategoryUnverified || risk.Severity != report.RiskHigh || risk.ScoreImpact != -6 {
		t.Fatalf("unexpected risk: %+v", risk)
	}
}

func TestAnalyzeEmptyProfile(t *testing.T) {
	t.Parallel()

	rep := newTestAnalyzer().Analyze(context.Background(), &candidate.Profile{CandidateID: "CAND-004"}).Report

	if rep.Score != 0 {
		t.Fatalf("expected score 0 for no skills, got %v", rep.Score)
	}
	if rep.Confidence != 0.5 {
		t.Fatalf("expected default confidence 0.5, got %v", rep.Confidence)
	}
	if len(rep.RiskFactors) != 0 {
		t.Fatalf("expected no risks, got %+v", rep.RiskFactors)
	}

	verification := rep.Signals[SignalVerification].(Verification)
	if verification.VerificationRate != 0 || verification.TotalSkills != 0 {
		t.Fatalf("unexpected verification for empty profile: %+v", verification)
	}
}

func TestAnalyzeUndatedSkills(t *testing.T) {
	t.Parallel()

	profile := &candidate.Profile{
		CandidateID: "CAND-005",
		Skills:      []candidate.Skill{{Name: "SQL"}},
		WorkExperience: []candidate.WorkExperience{
			{Company: "Acme", Position: "Analyst", StartDate: fixedNow.AddDate(-1, 0, 0), SkillsUsed: []string{"SQL"}},
		},
	}

	rep := newTestAnalyzer().Analyze(context.Background(), profile).Report
	if rep.Score != 50 {
		t.Fatalf("expected undated skill to score 50, got %v", rep.Score)
	}
	if scores := rep.Signals[SignalDecayScores].(map[string]float64); scores["SQL"] != 50 {
		t.Fatalf("expected SQL decay score 50, got %v", scores["SQL"])
	}
}

func TestAnalyzeDoesNotMutateProfile(t *testing.T) {
	t.Parallel()

	profile := &candidate.Profile{
		CandidateID: "CAND-006",
		Skills:      []candidate.Skill{{Name: "Go", LastUsed: daysAgo(5)}},
		WorkExperience: []candidate.WorkExperience{
			{Company: "Acme", Position: "Engineer", StartDate: fixedNow.AddDate(-1, 0, 0), SkillsUsed: []string{"Go"}},
		},
	}

	newTestAnalyzer().Analyze(context.Background(), profile)
	if profile.Skills[0].Verified {
		t.Fatalf("expected the verified flag to stay untouched")
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	status := newTestAnalyzer().Status()
	if !status.Ready() || status.Key != Key {
		t.Fatalf("unexpected status: %+v", status)
	}
}
