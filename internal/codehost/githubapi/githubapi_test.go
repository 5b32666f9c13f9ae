package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anandbmuley/deep-signal/internal/codehost"
)

var fixedNow = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := New(Config{Token: "test-token", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	client.now = func() time.Time { return fixedNow }
	return client
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Token: "  "}, nil)
	require.ErrorIs(t, err, codehost.ErrNotConfigured)
}

func TestFetchDataset(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"login":"octo","public_repos":3,"followers":7,"following":1,"bio":"gopher","company":"","created_at":"2020-01-02T03:04:05Z"}`)
	})
	mux.HandleFunc("/users/octo/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "owner", r.URL.Query().Get("type"))
		fmt.Fprint(w, `[
			{"name":"tool","fork":false,"stargazers_count":12,"forks_count":2,"owner":{"login":"octo"}},
			{"name":"copy","fork":true,"stargazers_count":0,"forks_count":0,"owner":{"login":"octo"}},
			{"name":"empty","fork":false,"stargazers_count":1,"forks_count":0,"owner":{"login":"octo"}},
			{"name":"extra","fork":false,"stargazers_count":0,"forks_count":0,"owner":{"login":"octo"}}
		]`)
	})
	mux.HandleFunc("/repos/octo/tool/languages", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"Go":900,"Shell":100}`)
	})
	mux.HandleFunc("/repos/octo/tool/commits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "octo", r.URL.Query().Get("author"))
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		assert.Equal(t, fixedNow.Add(-90*24*time.Hour).Format(time.RFC3339), r.URL.Query().Get("since"))
		fmt.Fprint(w, `[
			{"commit":{"message":"Add retry policy","author":{"date":"2025-02-20T10:00:00Z"}}},
			{"commit":{"message":"fix","author":{"date":"2025-02-21T10:00:00Z"}}}
		]`)
	})
	mux.HandleFunc("/repos/octo/empty/languages", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/repos/octo/empty/commits", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"Git Repository is empty."}`)
	})

	client := newTestClient(t, mux)

	limits := codehost.Limits{LanguageRepos: 2, CommitRepos: 2, CommitsPerRepo: 2, CommitWindowDays: 90}
	ds, err := client.Fetch(context.Background(), "octo", limits)
	require.NoError(t, err)

	assert.Equal(t, "octo", ds.Profile.Login)
	assert.Equal(t, 7, ds.Profile.Followers)
	assert.True(t, ds.Profile.HasBio)
	assert.False(t, ds.Profile.HasCompany)
	require.NotNil(t, ds.Profile.CreatedAt)
	assert.Equal(t, 2020, ds.Profile.CreatedAt.Year())

	require.Len(t, ds.Repositories, 4)

	tool := ds.Repositories[0]
	assert.Equal(t, map[string]int{"Go": 900, "Shell": 100}, tool.Languages)
	require.Len(t, tool.Commits, 2)
	assert.Equal(t, "Add retry policy", tool.Commits[0].Message)
	assert.NoError(t, tool.CommitsErr)

	fork := ds.Repositories[1]
	assert.True(t, fork.Fork)
	assert.Nil(t, fork.Languages)
	assert.Nil(t, fork.Commits)

	empty := ds.Repositories[2]
	assert.NoError(t, empty.CommitsErr)
	assert.Empty(t, empty.Commits)

	// Beyond both sampling caps: never requested.
	extra := ds.Repositories[3]
	assert.Nil(t, extra.Languages)
	assert.NoError(t, extra.LanguagesErr)
}

func TestFetchRecordsPerRepositoryFailures(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"login":"octo"}`)
	})
	mux.HandleFunc("/users/octo/repos", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"name":"tool","fork":false,"owner":{"login":"octo"}}]`)
	})
	mux.HandleFunc("/repos/octo/tool/languages", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/repos/octo/tool/commits", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"forbidden"}`)
	})

	ds, err := newTestClient(t, mux).Fetch(context.Background(), "octo", codehost.DefaultLimits())
	require.NoError(t, err)
	require.Len(t, ds.Repositories, 1)
	assert.Error(t, ds.Repositories[0].LanguagesErr)
	assert.Error(t, ds.Repositories[0].CommitsErr)
	assert.Nil(t, ds.Profile.CreatedAt)
}

func TestFetchUnknownUser(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/ghost", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	_, err := newTestClient(t, mux).Fetch(context.Background(), "ghost", codehost.DefaultLimits())
	require.Error(t, err)
	assert.True(t, errors.Is(err, codehost.ErrUserNotFound))
}
