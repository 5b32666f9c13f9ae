// Package githubapi implements codehost.Provider on top of the GitHub REST API.
package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v53/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/anandbmuley/deep-signal/internal/codehost"
	"github.com/anandbmuley/deep-signal/internal/logger"
)

const (
	providerName   = "github"
	defaultTimeout = 30 * time.Second
	perPage        = 100
)

// Config controls the GitHub client.
type Config struct {
	Token   string        `mapstructure:"token"`
	BaseURL string        `mapstructure:"base-url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Client fetches account datasets from GitHub.
type Client struct {
	gh     *github.Client
	logger *zap.Logger
	now    func() time.Time
}

// New builds an authenticated GitHub client. An empty token yields codehost.ErrNotConfigured.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, codehost.ErrNotConfigured
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = timeout

	gh := github.NewClient(httpClient)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		gh.BaseURL = parsed
	}

	return &Client{
		gh:     gh,
		logger: logger.WithFields(log, logger.ProviderFields(providerName, "")...),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (c *Client) Name() string { return providerName }

// Fetch loads the profile and repositories of username. Languages are fetched
// for the first LanguageRepos owned repositories and commits for the first
// CommitRepos owned repositories. Failures on individual repositories are
// recorded on the repository and do not fail the fetch.
func (c *Client) Fetch(ctx context.Context, username string, limits codehost.Limits) (*codehost.Dataset, error) {
	limits = limits.WithDefaults()
	username = strings.TrimSpace(username)

	user, _, err := c.gh.Users.Get(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", codehost.ErrUserNotFound, username)
		}
		return nil, fmt.Errorf("get github user: %w", err)
	}

	repos, err := c.listRepositories(ctx, username)
	if err != nil {
		return nil, err
	}

	dataset := &codehost.Dataset{
		Profile:      toProfile(user),
		Repositories: make([]codehost.Repository, 0, len(repos)),
	}

	since := c.now().Add(-limits.Window())
	owned := 0
	for _, repo := range repos {
		item := codehost.Repository{
			Name:  repo.GetName(),
			Fork:  repo.GetFork(),
			Stars: repo.GetStargazersCount(),
			Forks: repo.GetForksCount(),
		}

		if !item.Fork {
			owner := repo.GetOwner().GetLogin()
			if owner == "" {
				owner = username
			}
			if owned < limits.LanguageRepos {
				item.Languages, item.LanguagesErr = c.languages(ctx, owner, item.Name)
			}
			if owned < limits.CommitRepos {
				item.Commits, item.CommitsErr = c.commits(ctx, owner, item.Name, username, since, limits.CommitsPerRepo)
			}
			owned++
		}

		dataset.Repositories = append(dataset.Repositories, item)
	}

	c.logger.Debug("github dataset fetched",
		zap.Int("repositories", len(dataset.Repositories)),
		zap.Int("owned", owned),
	)

	return dataset, nil
}

func (c *Client) listRepositories(ctx context.Context, username string) ([]*github.Repository, error) {
	opts := &github.RepositoryListOptions{
		Type:        "owner",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var all []*github.Repository
	for {
		repos, resp, err := c.gh.Repositories.List(ctx, username, opts)
		if err != nil {
			return nil, fmt.Errorf("list github repositories: %w", err)
		}
		all = append(all, repos...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func (c *Client) languages(ctx context.Context, owner, repo string) (map[string]int, error) {
	langs, _, err := c.gh.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		c.logger.Debug("skipping repository languages", zap.String("repository", repo), zap.Error(err))
		return nil, fmt.Errorf("list languages of %s: %w", repo, err)
	}
	return langs, nil
}

func (c *Client) commits(ctx context.Context, owner, repo, author string, since time.Time, limit int) ([]codehost.Commit, error) {
	opts := &github.CommitsListOptions{
		Author:      author,
		Since:       since,
		ListOptions: github.ListOptions{PerPage: limit},
	}

	list, _, err := c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		// GitHub answers 409 for empty repositories.
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusConflict {
			return []codehost.Commit{}, nil
		}
		c.logger.Debug("skipping repository commits", zap.String("repository", repo), zap.Error(err))
		return nil, fmt.Errorf("list commits of %s: %w", repo, err)
	}

	commits := make([]codehost.Commit, 0, len(list))
	for _, item := range list {
		if len(commits) == limit {
			break
		}
		commits = append(commits, codehost.Commit{
			Message:    item.GetCommit().GetMessage(),
			AuthoredAt: item.GetCommit().GetAuthor().GetDate().Time,
		})
	}
	return commits, nil
}

func toProfile(user *github.User) codehost.Profile {
	profile := codehost.Profile{
		Login:       user.GetLogin(),
		PublicRepos: user.GetPublicRepos(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
		HasBio:      strings.TrimSpace(user.GetBio()) != "",
		HasCompany:  strings.TrimSpace(user.GetCompany()) != "",
	}
	if created := user.GetCreatedAt(); !created.Time.IsZero() {
		t := created.Time.UTC()
		profile.CreatedAt = &t
	}
	return profile
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
