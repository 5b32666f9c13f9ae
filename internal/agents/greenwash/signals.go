package greenwash

import "time"

const (
	SignalProfile       = "profile"
	SignalRepositories  = "repositories"
	SignalContributions = "contributions"
	SignalGreenwashing  = "greenwashing_score"
	SignalError         = "error"
	SignalDataAvailable = "data_available"
)

// ProfileSignal summarizes the public account.
type ProfileSignal struct {
	Username       string     `mapstructure:"username" json:"username"`
	PublicRepos    int        `mapstructure:"public_repos" json:"public_repos"`
	Followers      int        `mapstructure:"followers" json:"followers"`
	Following      int        `mapstructure:"following" json:"following"`
	CreatedAt      *time.Time `mapstructure:"created_at" json:"created_at"`
	AccountAgeDays int        `mapstructure:"account_age_days" json:"account_age_days"`
	HasBio         bool       `mapstructure:"has_bio" json:"has_bio"`
	HasCompany     bool       `mapstructure:"has_company" json:"has_company"`
}

// RepositorySignal summarizes ownership, engagement and languages.
type RepositorySignal struct {
	TotalRepos       int                `mapstructure:"total_repos" json:"total_repos"`
	OwnedRepos       int                `mapstructure:"owned_repos" json:"owned_repos"`
	ForkedRepos      int                `mapstructure:"forked_repos" json:"forked_repos"`
	ForkRatio        float64            `mapstructure:"fork_ratio" json:"fork_ratio"`
	TotalStars       int                `mapstructure:"total_stars" json:"total_stars"`
	TotalForks       int                `mapstructure:"total_forks" json:"total_forks"`
	PrimaryLanguages map[string]float64 `mapstructure:"primary_languages" json:"primary_languages"`
	AvgStarsPerRepo  float64            `mapstructure:"avg_stars_per_repo" json:"avg_stars_per_repo"`
	SkippedRepos     int                `mapstructure:"skipped_language_repos" json:"skipped_language_repos"`
}

// ContributionSignal summarizes recent commits and their message quality.
type ContributionSignal struct {
	RecentCommitCount      int     `mapstructure:"recent_commit_count" json:"recent_commit_count"`
	CommitMessagesAnalyzed int     `mapstructure:"commit_messages_analyzed" json:"commit_messages_analyzed"`
	LowQualityCommits      int     `mapstructure:"low_quality_commits" json:"low_quality_commits"`
	LowQualityRatio        float64 `mapstructure:"low_quality_ratio" json:"low_quality_ratio"`
	SkippedRepos           int     `mapstructure:"skipped_repos" json:"skipped_repos"`
}

// GreenwashingSignal is the additive green-washing score, 0..100.
type GreenwashingSignal struct {
	Score      int      `mapstructure:"score" json:"score"`
	Indicators []string `mapstructure:"indicators" json:"indicators"`
	RiskLevel  string   `mapstructure:"risk_level" json:"risk_level"`
}
