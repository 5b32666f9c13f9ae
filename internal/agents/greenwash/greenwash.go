// Package greenwash analyzes a public code-hosting account for superficial
// activity that inflates a profile without demonstrating real work.
package greenwash

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/anandbmuley/deep-signal/internal/agents"
	"github.com/anandbmuley/deep-signal/internal/candidate"
	"github.com/anandbmuley/deep-signal/internal/codehost"
	"github.com/anandbmuley/deep-signal/internal/logger"
	"github.com/anandbmuley/deep-signal/internal/report"
)

const (
	Key       = "github"
	AgentName = "GitHub Analysis"

	CategoryNoData        = "no_data"
	CategoryGreenwashing  = "green_washing"
	CategoryForkRatio     = "fork_ratio"
	CategoryCommitQuality = "commit_quality"

	IndicatorHighForkRatio     = "high_fork_ratio"
	IndicatorModerateForkRatio = "moderate_fork_ratio"
	IndicatorLowEngagement     = "low_engagement"
	IndicatorRapidCreation     = "rapid_repo_creation"
	IndicatorPoorCommits       = "poor_commit_quality"
	IndicatorLowActivity       = "low_recent_activity"

	topLanguages = 5
)

const (
	reasonNoUsername    = "No GitHub username provided"
	reasonNotConfigured = "GitHub API not available (missing token)"
	reasonLimited       = "no GitHub token"
)

var lowQualityMessages = map[string]struct{}{
	"update":  {},
	"fix":     {},
	"changes": {},
	"wip":     {},
	"test":    {},
	".":       {},
}

// Analyzer implements agents.Agent for code-hosting authenticity.
type Analyzer struct {
	config   Config
	provider codehost.Provider
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the time source used for account age and the commit window.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates the analyzer. A nil provider leaves the analyzer in limited mode
// where every candidate gets a no-data report.
func New(cfg Config, provider codehost.Provider, log *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		config:   cfg.withDefaults(),
		provider: provider,
		logger:   logger.WithFields(log, zap.String(logger.FieldAgent, Key)),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Key() string  { return Key }
func (a *Analyzer) Name() string { return AgentName }

func (a *Analyzer) Status() agents.Status {
	if a.provider == nil {
		return agents.Status{Key: Key, Name: AgentName, State: agents.StateLimited, Reason: reasonLimited}
	}
	return agents.Status{
		Key:     Key,
		Name:    AgentName,
		State:   agents.StateReady,
		Details: map[string]string{"provider": a.provider.Name()},
	}
}

// Analyze never fails: every failure path, including a panic, yields a no-data report.
func (a *Analyzer) Analyze(ctx context.Context, profile *candidate.Profile) (outcome agents.Outcome) {
	log := a.logger
	if profile != nil {
		log = logger.WithFields(log, zap.String(logger.FieldCandidate, profile.CandidateID))
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("github analysis panicked", zap.Any("panic", r))
			outcome = a.noData(fmt.Sprintf("Analysis error: %v", r))
		}
	}()

	if !profile.HasGitHub() {
		return a.noData(reasonNoUsername)
	}
	if a.provider == nil {
		return a.noData(reasonNotConfigured)
	}

	username := strings.TrimSpace(profile.GitHubUsername)
	dataset, err := a.provider.Fetch(ctx, username, a.config.Limits)
	if err != nil {
		log.Warn("github data unavailable", zap.Error(err))
		if errors.Is(err, codehost.ErrNotConfigured) {
			return a.noData(reasonNotConfigured)
		}
		return a.noData(fmt.Sprintf("GitHub API error: %v", err))
	}
	if dataset == nil {
		return a.noData("GitHub API error: empty response")
	}

	return agents.Outcome{Report: a.evaluate(dataset, log)}
}

func (a *Analyzer) evaluate(dataset *codehost.Dataset, log *zap.Logger) *report.AgentReport {
	now := a.now()

	profileSignal := a.profile(dataset.Profile, now)
	repos := a.repositories(dataset)
	contributions := a.contributions(dataset, now)
	greenwashing := a.greenwashing(profileSignal, repos, contributions)

	risks := a.risks(repos, contributions, greenwashing)
	score := a.score(repos, contributions, greenwashing)

	log.Debug("github analysis completed",
		zap.Int("owned_repos", repos.OwnedRepos),
		zap.Float64("fork_ratio", repos.ForkRatio),
		zap.Int("recent_commits", contributions.RecentCommitCount),
		zap.Int("greenwashing_score", greenwashing.Score),
		zap.Int("risks", len(risks)),
	)

	return &report.AgentReport{
		AgentName:   AgentName,
		Score:       report.Round(score, 2),
		Confidence:  report.Round(a.config.LiveConfidence, 2),
		RiskFactors: risks,
		Signals: map[string]any{
			SignalProfile:       profileSignal,
			SignalRepositories:  repos,
			SignalContributions: contributions,
			SignalGreenwashing:  greenwashing,
			SignalDataAvailable: true,
		},
		Timestamp: now,
	}
}

func (a *Analyzer) profile(p codehost.Profile, now time.Time) ProfileSignal {
	signal := ProfileSignal{
		Username:    p.Login,
		PublicRepos: p.PublicRepos,
		Followers:   p.Followers,
		Following:   p.Following,
		CreatedAt:   p.CreatedAt,
		HasBio:      p.HasBio,
		HasCompany:  p.HasCompany,
	}
	if p.CreatedAt != nil {
		if age := now.Sub(*p.CreatedAt); age > 0 {
			signal.AccountAgeDays = int(age.Hours() / 24)
		}
	}
	return signal
}

func (a *Analyzer) repositories(dataset *codehost.Dataset) RepositorySignal {
	owned := dataset.Owned()

	signal := RepositorySignal{
		TotalRepos:       len(dataset.Repositories),
		OwnedRepos:       len(owned),
		ForkedRepos:      len(dataset.Repositories) - len(owned),
		PrimaryLanguages: map[string]float64{},
	}
	if signal.TotalRepos > 0 {
		signal.ForkRatio = report.Round(float64(signal.ForkedRepos)/float64(signal.TotalRepos)*100, 1)
	}

	for _, repo := range owned {
		signal.TotalStars += repo.Stars
		signal.TotalForks += repo.Forks
	}
	if signal.OwnedRepos > 0 {
		signal.AvgStarsPerRepo = report.Round(float64(signal.TotalStars)/float64(signal.OwnedRepos), 1)
	}

	languages := map[string]int{}
	for i, repo := range owned {
		if i == a.config.Limits.LanguageRepos {
			break
		}
		if repo.LanguagesErr != nil {
			signal.SkippedRepos++
			continue
		}
		for lang, bytes := range repo.Languages {
			languages[lang] += bytes
		}
	}
	signal.PrimaryLanguages = primaryLanguages(languages)

	return signal
}

// primaryLanguages returns the top languages by byte share, in percent.
func primaryLanguages(languages map[string]int) map[string]float64 {
	result := map[string]float64{}

	total := 0
	names := make([]string, 0, len(languages))
	for lang, bytes := range languages {
		total += bytes
		names = append(names, lang)
	}
	if total <= 0 {
		return result
	}

	sort.Slice(names, func(i, j int) bool {
		if languages[names[i]] != languages[names[j]] {
			return languages[names[i]] > languages[names[j]]
		}
		return names[i] < names[j]
	})

	for i, lang := range names {
		if i == topLanguages {
			break
		}
		result[lang] = report.Round(float64(languages[lang])/float64(total)*100, 1)
	}
	return result
}

func (a *Analyzer) contributions(dataset *codehost.Dataset, now time.Time) ContributionSignal {
	limits := a.config.Limits
	since := now.Add(-limits.Window())

	var signal ContributionSignal
	for i, repo := range dataset.Owned() {
		if i == limits.CommitRepos {
			break
		}
		if repo.CommitsErr != nil {
			signal.SkippedRepos++
			continue
		}

		counted := 0
		for _, commit := range repo.Commits {
			if counted == limits.CommitsPerRepo {
				break
			}
			if !commit.AuthoredAt.IsZero() && commit.AuthoredAt.Before(since) {
				continue
			}
			counted++
			if IsLowQualityMessage(commit.Message) {
				signal.LowQualityCommits++
			}
		}
		signal.RecentCommitCount += counted
		signal.CommitMessagesAnalyzed += counted
	}

	if signal.CommitMessagesAnalyzed > 0 {
		signal.LowQualityRatio = report.Round(float64(signal.LowQualityCommits)/float64(signal.CommitMessagesAnalyzed)*100, 1)
	}
	return signal
}

// IsLowQualityMessage reports whether a commit message carries no meaningful description.
func IsLowQualityMessage(message string) bool {
	msg := strings.ToLower(strings.TrimSpace(message))
	if utf8.RuneCountInString(msg) < 10 {
		return true
	}
	if _, ok := lowQualityMessages[msg]; ok {
		return true
	}
	return strings.HasPrefix(msg, "merge pull request")
}

func (a *Analyzer) greenwashing(profile ProfileSignal, repos RepositorySignal, contrib ContributionSignal) GreenwashingSignal {
	cfg := a.config
	indicators := make([]string, 0, 5)
	score := 0

	switch {
	case repos.ForkRatio > cfg.HighForkRatio:
		indicators = append(indicators, IndicatorHighForkRatio)
		score += cfg.Weights.HighForkRatio
	case repos.ForkRatio > cfg.ModerateForkRatio:
		indicators = append(indicators, IndicatorModerateForkRatio)
		score += cfg.Weights.ModerateForkRatio
	}

	if repos.OwnedRepos > cfg.LowEngagementRepos && repos.AvgStarsPerRepo < cfg.LowEngagementStars {
		indicators = append(indicators, IndicatorLowEngagement)
		score += cfg.Weights.LowEngagement
	}

	// unknown account age is never treated as new
	if profile.CreatedAt != nil && profile.AccountAgeDays < cfg.NewAccountDays && repos.OwnedRepos > cfg.RapidCreationRepos {
		indicators = append(indicators, IndicatorRapidCreation)
		score += cfg.Weights.RapidCreation
	}

	if contrib.LowQualityRatio > cfg.PoorCommitRatio {
		indicators = append(indicators, IndicatorPoorCommits)
		score += cfg.Weights.PoorCommits
	}

	if contrib.RecentCommitCount < cfg.LowActivityCommits {
		indicators = append(indicators, IndicatorLowActivity)
		score += cfg.Weights.LowActivity
	}

	if score > cfg.Weights.Max {
		score = cfg.Weights.Max
	}

	level := report.RiskLow
	switch {
	case score > cfg.HighRiskScore:
		level = report.RiskHigh
	case score > cfg.MediumRiskScore:
		level = report.RiskMedium
	}

	return GreenwashingSignal{Score: score, Indicators: indicators, RiskLevel: level.String()}
}

func (a *Analyzer) risks(repos RepositorySignal, contrib ContributionSignal, gw GreenwashingSignal) []report.RiskFactor {
	cfg := a.config
	risks := make([]report.RiskFactor, 0, 3)

	gwDetails := map[string]any{
		"score":      gw.Score,
		"indicators": gw.Indicators,
		"risk_level": gw.RiskLevel,
	}
	switch {
	case gw.Score > cfg.HighRiskScore:
		risks = append(risks, report.NewRiskFactor(
			CategoryGreenwashing, report.RiskHigh, cfg.Impacts.HighGreenwashing,
			fmt.Sprintf("High green-washing score detected (%d)", gw.Score),
			gwDetails,
		))
	case gw.Score > cfg.MediumRiskScore:
		risks = append(risks, report.NewRiskFactor(
			CategoryGreenwashing, report.RiskMedium, cfg.Impacts.MediumGreenwashing,
			fmt.Sprintf("Moderate green-washing indicators detected (%d)", gw.Score),
			gwDetails,
		))
	}

	if repos.ForkRatio > cfg.HighForkRatio {
		risks = append(risks, report.NewRiskFactor(
			CategoryForkRatio, report.RiskMedium, cfg.Impacts.ForkRatio,
			fmt.Sprintf("Very high fork ratio (%.1f%%) - mostly copied repositories", repos.ForkRatio),
			map[string]any{"fork_ratio": repos.ForkRatio, "forked_repos": repos.ForkedRepos},
		))
	}

	if contrib.LowQualityRatio > cfg.PoorCommitRatio {
		risks = append(risks, report.NewRiskFactor(
			CategoryCommitQuality, report.RiskMedium, cfg.Impacts.CommitQuality,
			fmt.Sprintf("High ratio of low-quality commits (%.1f%%)", contrib.LowQualityRatio),
			map[string]any{"low_quality_ratio": contrib.LowQualityRatio},
		))
	}

	return risks
}

func (a *Analyzer) score(repos RepositorySignal, contrib ContributionSignal, gw GreenwashingSignal) float64 {
	f := a.config.Score
	score := f.Base

	score += math.Min(float64(repos.OwnedRepos)*f.PerOwnedRepo, f.OwnedReposCap)
	score += math.Min(float64(repos.TotalStars)/f.StarsPerPoint, f.StarsCap)
	score += math.Min(float64(contrib.RecentCommitCount), f.CommitsCap)

	score -= float64(gw.Score) * f.GreenwashingFactor
	score -= repos.ForkRatio * f.ForkRatioFactor
	score -= contrib.LowQualityRatio * f.LowQualityFactor

	return report.Clamp(score, 0, 100)
}

func (a *Analyzer) noData(reason string) agents.Outcome {
	a.logger.Debug("github analysis unavailable", zap.String("reason", reason))

	return agents.Outcome{
		Unavailable: reason,
		Report: &report.AgentReport{
			AgentName:  AgentName,
			Score:      a.config.NoDataScore,
			Confidence: a.config.NoDataConfidence,
			RiskFactors: []report.RiskFactor{
				report.NewRiskFactor(
					CategoryNoData, report.RiskMedium, a.config.Impacts.NoData,
					fmt.Sprintf("GitHub analysis unavailable: %s", reason),
					map[string]any{"reason": reason},
				),
			},
			Signals: map[string]any{
				SignalError:         reason,
				SignalDataAvailable: false,
			},
			Timestamp: a.now(),
		},
	}
}
