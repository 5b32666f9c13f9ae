package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/anandbmuley/deep-signal/internal/agents"
	"github.com/anandbmuley/deep-signal/internal/agents/greenwash"
	"github.com/anandbmuley/deep-signal/internal/agents/skilldecay"
	"github.com/anandbmuley/deep-signal/internal/ai"
	"github.com/anandbmuley/deep-signal/internal/ai/gemini"
	"github.com/anandbmuley/deep-signal/internal/codehost"
	"github.com/anandbmuley/deep-signal/internal/codehost/githubapi"
	"github.com/anandbmuley/deep-signal/internal/logger"
	"github.com/anandbmuley/deep-signal/internal/orchestrator"
	"github.com/anandbmuley/deep-signal/internal/secrets"
	"github.com/anandbmuley/deep-signal/internal/synthesis"
)

// newOrchestrator wires the analyzers and the synthesizer. A missing GitHub
// token is not fatal: the code-hosting analyzer runs in limited mode.
func newOrchestrator(config *Config, log *zap.Logger) (*orchestrator.Orchestrator, error) {
	provider, err := newCodeHost(config.GitHub, log)
	switch {
	case errors.Is(err, secrets.ErrNotConfigured), errors.Is(err, codehost.ErrNotConfigured):
		log.Warn("github analysis is limited",
			zap.String("reason", "no GitHub token"),
			zap.String("hint", "set GITHUB_TOKEN, GITHUB_TOKEN_FILE or the 'github.token-file' key in the configuration file"),
		)
	case err != nil:
		return nil, fmt.Errorf("building github client: %w", err)
	}

	steps := []agents.Agent{
		skilldecay.New(config.SkillDecay, log),
		greenwash.New(config.GitHub.Analysis, provider, log),
	}

	return orchestrator.New(synthesis.New(config.Synthesis, log), log, steps...), nil
}

// newCodeHost returns a nil provider together with the error when no token is configured.
func newCodeHost(cfg *GitHubConfig, log *zap.Logger) (codehost.Provider, error) {
	token, err := secrets.Load(secrets.Source{
		Name:  "github token",
		Value: cfg.Token,
		File:  cfg.TokenFile,
		Env:   "GITHUB_TOKEN",
	})
	if err != nil {
		return nil, err
	}

	client, err := githubapi.New(githubapi.Config{
		Token:   token,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}, logger.WithFields(log, zap.String(logger.FieldProvider, "github")))
	if err != nil {
		return nil, err
	}

	return client, nil
}

func newExtractor(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (ai.Extractor, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set GEMINI_API_KEY, GEMINI_API_KEY_FILE or gemini.api-key-file)", err)
	}

	genLogger := log.With(logger.ProviderFields("gemini", cfg.Model)...)
	genLogger = genLogger.With(zap.Int("ai_retry_attempts", cfg.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewExtractor(generator, log.With(logger.ProviderFields("gemini", generator.Model())...), cfg.MaxLogLength), nil
}
