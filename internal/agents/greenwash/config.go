package greenwash

import "github.com/anandbmuley/deep-signal/internal/codehost"

// Config holds the green-washing heuristics and the code-hosting score formula.
type Config struct {
	Limits codehost.Limits `mapstructure:"limits"`

	HighForkRatio      float64 `mapstructure:"high-fork-ratio"`
	ModerateForkRatio  float64 `mapstructure:"moderate-fork-ratio"`
	LowEngagementRepos int     `mapstructure:"low-engagement-repos"`
	LowEngagementStars float64 `mapstructure:"low-engagement-stars"`
	NewAccountDays     int     `mapstructure:"new-account-days"`
	RapidCreationRepos int     `mapstructure:"rapid-creation-repos"`
	PoorCommitRatio    float64 `mapstructure:"poor-commit-ratio"`
	LowActivityCommits int     `mapstructure:"low-activity-commits"`

	HighRiskScore   int `mapstructure:"high-risk-score"`
	MediumRiskScore int `mapstructure:"medium-risk-score"`

	Weights IndicatorWeights `mapstructure:"weights"`
	Impacts RiskImpacts      `mapstructure:"impacts"`
	Score   ScoreFormula     `mapstructure:"score"`

	LiveConfidence   float64 `mapstructure:"live-confidence"`
	NoDataConfidence float64 `mapstructure:"no-data-confidence"`
	NoDataScore      float64 `mapstructure:"no-data-score"`
}

// IndicatorWeights are added to the green-washing score per fired indicator.
type IndicatorWeights struct {
	HighForkRatio     int `mapstructure:"high-fork-ratio"`
	ModerateForkRatio int `mapstructure:"moderate-fork-ratio"`
	LowEngagement     int `mapstructure:"low-engagement"`
	RapidCreation     int `mapstructure:"rapid-creation"`
	PoorCommits       int `mapstructure:"poor-commits"`
	LowActivity       int `mapstructure:"low-activity"`
	Max               int `mapstructure:"max"`
}

// RiskImpacts are the penalties carried by each risk category.
type RiskImpacts struct {
	HighGreenwashing   float64 `mapstructure:"high-greenwashing"`
	MediumGreenwashing float64 `mapstructure:"medium-greenwashing"`
	ForkRatio          float64 `mapstructure:"fork-ratio"`
	CommitQuality      float64 `mapstructure:"commit-quality"`
	NoData             float64 `mapstructure:"no-data"`
}

// ScoreFormula is the linear code-hosting score:
//
//	base + min(owned*PerOwnedRepo, OwnedReposCap) + min(stars/StarsPerPoint, StarsCap)
//	     + min(commits, CommitsCap) - gw*GreenwashingFactor - forkRatio*ForkRatioFactor
//	     - lowQualityRatio*LowQualityFactor
type ScoreFormula struct {
	Base               float64 `mapstructure:"base"`
	PerOwnedRepo       float64 `mapstructure:"per-owned-repo"`
	OwnedReposCap      float64 `mapstructure:"owned-repos-cap"`
	StarsPerPoint      float64 `mapstructure:"stars-per-point"`
	StarsCap           float64 `mapstructure:"stars-cap"`
	CommitsCap         float64 `mapstructure:"commits-cap"`
	GreenwashingFactor float64 `mapstructure:"greenwashing-factor"`
	ForkRatioFactor    float64 `mapstructure:"fork-ratio-factor"`
	LowQualityFactor   float64 `mapstructure:"low-quality-factor"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		Limits:             codehost.DefaultLimits(),
		HighForkRatio:      70,
		ModerateForkRatio:  50,
		LowEngagementRepos: 5,
		LowEngagementStars: 1,
		NewAccountDays:     180,
		RapidCreationRepos: 20,
		PoorCommitRatio:    60,
		LowActivityCommits: 5,
		HighRiskScore:      60,
		MediumRiskScore:    30,
		Weights: IndicatorWeights{
			HighForkRatio:     30,
			ModerateForkRatio: 15,
			LowEngagement:     20,
			RapidCreation:     25,
			PoorCommits:       20,
			LowActivity:       15,
			Max:               100,
		},
		Impacts: RiskImpacts{
			HighGreenwashing:   25,
			MediumGreenwashing: 15,
			ForkRatio:          10,
			CommitQuality:      10,
			NoData:             10,
		},
		Score: ScoreFormula{
			Base:               50,
			PerOwnedRepo:       2,
			OwnedReposCap:      20,
			StarsPerPoint:      10,
			StarsCap:           15,
			CommitsCap:         15,
			GreenwashingFactor: 0.5,
			ForkRatioFactor:    0.2,
			LowQualityFactor:   0.3,
		},
		LiveConfidence:   0.85,
		NoDataConfidence: 0.1,
		NoDataScore:      50,
	}
}

// withDefaults fills thresholds and confidences that cannot be zero, and
// replaces groups left entirely unset.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	c.Limits = c.Limits.WithDefaults()

	if c.HighForkRatio <= 0 {
		c.HighForkRatio = def.HighForkRatio
	}
	if c.ModerateForkRatio <= 0 {
		c.ModerateForkRatio = def.ModerateForkRatio
	}
	if c.LowEngagementRepos <= 0 {
		c.LowEngagementRepos = def.LowEngagementRepos
	}
	if c.LowEngagementStars <= 0 {
		c.LowEngagementStars = def.LowEngagementStars
	}
	if c.NewAccountDays <= 0 {
		c.NewAccountDays = def.NewAccountDays
	}
	if c.RapidCreationRepos <= 0 {
		c.RapidCreationRepos = def.RapidCreationRepos
	}
	if c.PoorCommitRatio <= 0 {
		c.PoorCommitRatio = def.PoorCommitRatio
	}
	if c.LowActivityCommits <= 0 {
		c.LowActivityCommits = def.LowActivityCommits
	}
	if c.HighRiskScore <= 0 {
		c.HighRiskScore = def.HighRiskScore
	}
	if c.MediumRiskScore <= 0 {
		c.MediumRiskScore = def.MediumRiskScore
	}

	if c.Weights == (IndicatorWeights{}) {
		c.Weights = def.Weights
	}
	if c.Weights.Max <= 0 {
		c.Weights.Max = def.Weights.Max
	}
	if c.Impacts == (RiskImpacts{}) {
		c.Impacts = def.Impacts
	}
	if c.Score == (ScoreFormula{}) {
		c.Score = def.Score
	}
	if c.Score.StarsPerPoint <= 0 {
		c.Score.StarsPerPoint = def.Score.StarsPerPoint
	}

	if c.LiveConfidence <= 0 {
		c.LiveConfidence = def.LiveConfidence
	}
	if c.NoDataConfidence <= 0 {
		c.NoDataConfidence = def.NoDataConfidence
	}
	if c.NoDataScore <= 0 {
		c.NoDataScore = def.NoDataScore
	}
	return c
}
