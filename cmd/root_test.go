package cmd

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anandbmuley/deep-signal/internal/report"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestGetConfigKeepsDefaults(t *testing.T) {
	resetViper(t)

	config, err := getConfig()
	require.NoError(t, err)

	def := defaultConfig()
	assert.Equal(t, def.SkillDecay, config.SkillDecay)
	assert.Equal(t, def.Synthesis, config.Synthesis)
	assert.Equal(t, def.GitHub.Analysis, config.GitHub.Analysis)
	assert.Equal(t, 30*time.Second, config.GitHub.Timeout)
	assert.Equal(t, "gemini-2.5-flash", config.Gemini.Model)
}

func TestGetConfigOverridesFromFile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "deep-signal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
skill-decay:
  half-life-months: 24
github:
  timeout: 5s
  analysis:
    high-fork-ratio: 80
    limits:
      commit-window-days: 30
    weights:
      low-activity: 5
    impacts:
      no-data: 12
    score:
      base: 55
gemini:
  model: gemini-2.5-pro
synthesis:
  critical-below: 35
  findings:
    strong-decay: 75
`), 0o600))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	config, err := getConfig()
	require.NoError(t, err)

	assert.Equal(t, 24.0, config.SkillDecay.HalfLifeMonths)
	assert.Equal(t, 30.0, config.SkillDecay.DaysPerMonth)
	assert.Equal(t, 5*time.Second, config.GitHub.Timeout)
	assert.Equal(t, 80.0, config.GitHub.Analysis.HighForkRatio)
	assert.Equal(t, 50.0, config.GitHub.Analysis.ModerateForkRatio)
	assert.Equal(t, 30, config.GitHub.Analysis.Limits.CommitWindowDays)
	assert.Equal(t, 20, config.GitHub.Analysis.Limits.LanguageRepos)
	assert.Equal(t, "gemini-2.5-pro", config.Gemini.Model)
	assert.Equal(t, 3, config.Gemini.MaxRetries)
	assert.Equal(t, 35.0, config.Synthesis.CriticalBelow)
	assert.Equal(t, 0.5, config.Synthesis.Weights["github"])
	assert.Equal(t, 5, config.GitHub.Analysis.Weights.LowActivity)
	assert.Equal(t, 30, config.GitHub.Analysis.Weights.HighForkRatio)
	assert.Equal(t, 12.0, config.GitHub.Analysis.Impacts.NoData)
	assert.Equal(t, 25.0, config.GitHub.Analysis.Impacts.HighGreenwashing)
	assert.Equal(t, 55.0, config.GitHub.Analysis.Score.Base)
	assert.Equal(t, 0.5, config.GitHub.Analysis.Score.GreenwashingFactor)
	assert.Equal(t, 75.0, config.Synthesis.Findings.StrongDecay)
	assert.Equal(t, 40.0, config.Synthesis.Findings.ConcerningDecay)
}

func TestReadProfile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	valid := filepath.Join(dir, "profile.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{
  "skills": [{"name": "Go", "last_used": "2025-01-01T00:00:00Z", "years_experience": 4}],
  "work_experience": [{"company": "Acme", "position": "Engineer", "start_date": "2021-01-01T00:00:00Z", "skills_used": ["Go"]}],
  "github_username": "octocat"
}`), 0o600))

	profile, err := readProfile(valid)
	require.NoError(t, err)
	assert.Regexp(t, `^CAND-[0-9A-F]{8}$`, profile.CandidateID)
	assert.Equal(t, "octocat", profile.GitHubUsername)
	require.Len(t, profile.Skills, 1)
	assert.Equal(t, "Go", profile.Skills[0].Name)

	duplicate := filepath.Join(dir, "duplicate.json")
	require.NoError(t, os.WriteFile(duplicate, []byte(`{"candidate_id": "CAND-1", "skills": [{"name": "Go"}, {"name": "Go"}]}`), 0o600))
	_, err = readProfile(duplicate)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0o600))
	_, err = readProfile(broken)
	assert.Error(t, err)
}

func TestExtractorState(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	assert.Equal(t, "ready", extractorState(&GeminiConfig{APIKey: "key"}))
	assert.Contains(t, extractorState(&GeminiConfig{}), "no Gemini API key")
	assert.Contains(t, extractorState(&GeminiConfig{APIKeyFile: filepath.Join(t.TempDir(), "missing")}), "limited (")
}

func TestDumpConfigHidesSecrets(t *testing.T) {
	t.Parallel()

	config := defaultConfig()
	config.GitHub.Token = "ghp_secret"
	config.Gemini.APIKey = "gemini_secret"
	config.Gemini.APIKeyFile = "/run/secrets/gemini"

	dump, err := dumpConfig(config)
	require.NoError(t, err)
	assert.NotContains(t, dump, "ghp_secret")
	assert.NotContains(t, dump, "gemini_secret")
	assert.Contains(t, dump, "/run/secrets/gemini")
	assert.Equal(t, "ghp_secret", config.GitHub.Token)

	config.Synthesis.Weights["resume"] = math.NaN()
	_, err = dumpConfig(config)
	assert.Error(t, err)
}

func TestHandleActionReportsRenderErrors(t *testing.T) {
	t.Parallel()

	analysis := &report.AnalysisReport{
		CandidateID:  "CAND-1",
		AgentReports: map[string]*report.AgentReport{"resume": {Score: math.NaN()}},
	}

	err := handleAction(PromptAgentReports, zap.NewNop(), analysis)
	assert.Error(t, err)

	assert.ErrorIs(t, handleAction(PromptExit, zap.NewNop(), analysis), errExit)
	assert.Error(t, handleAction("unknown", zap.NewNop(), analysis))
}
