// Package codehost describes the public code-hosting evidence the analyzers consume
// and the provider boundary that fetches it.
package codehost

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned by providers when the username does not exist.
	ErrUserNotFound = errors.New("code-hosting user not found")
	// ErrNotConfigured is returned when no provider credentials are available.
	ErrNotConfigured = errors.New("code-hosting provider not configured")
)

// Provider fetches the public activity of a code-hosting account.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, username string, limits Limits) (*Dataset, error)
}

// Limits bounds how much evidence is sampled from a provider.
type Limits struct {
	LanguageRepos    int `mapstructure:"language-repos"`
	CommitRepos      int `mapstructure:"commit-repos"`
	CommitsPerRepo   int `mapstructure:"commits-per-repo"`
	CommitWindowDays int `mapstructure:"commit-window-days"`
}

// DefaultLimits returns the sampling caps used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		LanguageRepos:    20,
		CommitRepos:      10,
		CommitsPerRepo:   20,
		CommitWindowDays: 90,
	}
}

// WithDefaults replaces non-positive limits with the defaults.
func (l Limits) WithDefaults() Limits {
	def := DefaultLimits()
	if l.LanguageRepos <= 0 {
		l.LanguageRepos = def.LanguageRepos
	}
	if l.CommitRepos <= 0 {
		l.CommitRepos = def.CommitRepos
	}
	if l.CommitsPerRepo <= 0 {
		l.CommitsPerRepo = def.CommitsPerRepo
	}
	if l.CommitWindowDays <= 0 {
		l.CommitWindowDays = def.CommitWindowDays
	}
	return l
}

// Window returns the commit window as a duration.
func (l Limits) Window() time.Duration {
	return time.Duration(l.CommitWindowDays) * 24 * time.Hour
}

// Dataset is everything fetched for one account.
type Dataset struct {
	Profile      Profile
	Repositories []Repository
}

// Profile is the public account summary.
type Profile struct {
	Login       string
	CreatedAt   *time.Time
	PublicRepos int
	Followers   int
	Following   int
	HasBio      bool
	HasCompany  bool
}

// Repository is a single repository listed for the account, in provider order.
//
// Languages and Commits are only populated for the sampled repositories.
// LanguagesErr and CommitsErr record per-repository fetch failures; the
// analyzer skips those repositories instead of failing.
type Repository struct {
	Name      string
	Fork      bool
	Stars     int
	Forks     int
	Languages map[string]int
	Commits   []Commit

	LanguagesErr error
	CommitsErr   error
}

// Commit is a commit authored by the account owner.
type Commit struct {
	Message    string
	AuthoredAt time.Time
}

// Owned returns the non-fork repositories in provider order.
func (d *Dataset) Owned() []Repository {
	owned := make([]Repository, 0, len(d.Repositories))
	for _, repo := range d.Repositories {
		if !repo.Fork {
			owned = append(owned, repo)
		}
	}
	return owned
}
