package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/anandbmuley/deep-signal/internal/candidate"
	"github.com/anandbmuley/deep-signal/internal/extract"
	"github.com/anandbmuley/deep-signal/internal/logger"
	"github.com/anandbmuley/deep-signal/internal/matching"
	"github.com/anandbmuley/deep-signal/internal/orchestrator"
	"github.com/anandbmuley/deep-signal/internal/report"
)

const (
	PromptFindings     = "Show key findings"
	PromptAgentReports = "Show agent reports"
	PromptReportToFile = "Dump report to file"
	PromptExit         = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptFindings, PromptAgentReports, PromptReportToFile, PromptExit},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume.pdf|resume.txt]",
	Short: "Score a candidate from a resume file or a structured profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		analyze(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("profile", "p", "", "a candidate profile in JSON instead of a resume file")
	analyzeCmd.Flags().StringP("github", "g", "", "GitHub username, overrides the one found in the resume")
	analyzeCmd.Flags().BoolP("yes", "y", false, "do not show the interactive menu, print the report as JSON")
}

// analyze is the main command for the cli.
func analyze(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the deep-signal", zap.String("version", version))

	if pretty, err := dumpConfig(config); err != nil {
		logger.Warn("skipping config dump", zap.Error(err))
	} else {
		logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))
	}

	profilePath, _ := cmd.Flags().GetString("profile")
	if profilePath == "" && len(args) == 0 {
		logger.Fatal("a resume file or --profile is required")
	}

	var profile *candidate.Profile
	if profilePath != "" {
		profile, err = readProfile(profilePath)
	} else {
		profile, err = structureResume(ctx, config, args[0], logger)
	}
	if err != nil {
		logger.Fatal("preparing candidate profile", zap.Error(err))
	}

	if username, _ := cmd.Flags().GetString("github"); username != "" {
		profile.GitHubUsername = strings.TrimPrefix(strings.TrimSpace(username), "@")
	}

	orch, err := newOrchestrator(config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	analysis, err := orch.Analyze(ctx, profile)
	if err != nil {
		if errors.Is(err, orchestrator.ErrPII) {
			logger.Fatal("refusing to analyze", zap.Error(err), zap.String("hint", "use an anonymous candidate_id such as CAND-12345"))
		}
		logger.Fatal("analyzing candidate", zap.Error(err))
	}

	result, err := matching.NewPlaceholder(logger).Consume(ctx, analysis)
	if err != nil {
		logger.Fatal("matching candidate", zap.Error(err))
	}

	logger.Info("candidate scored",
		zap.String("candidate_id", analysis.CandidateID),
		zap.Float64("credit_score", analysis.CreditScore),
		zap.Stringer("risk_level", analysis.OverallRiskLevel),
		zap.String("matching", result.Status),
	)

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			logger.Fatal("printing report", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, analysis); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, analysis *report.AnalysisReport) error {
	switch action {
	case PromptFindings:
		fmt.Printf("Candidate %s: %.2f/100, %s risk\n", analysis.CandidateID, analysis.CreditScore, strings.ToUpper(analysis.OverallRiskLevel.String()))
		fmt.Println("\nKey findings:")
		for _, finding := range analysis.KeyFindings {
			fmt.Printf("  - %s\n", finding)
		}
		fmt.Println("\nRecommendations:")
		for _, recommendation := range analysis.Recommendations {
			fmt.Printf("  - %s\n", recommendation)
		}
		return nil
	case PromptAgentReports:
		pretty, err := json.MarshalIndent(analysis.AgentReports, "", "  ")
		if err != nil {
			return fmt.Errorf("render agent reports: %w", err)
		}
		logger.Info(string(pretty), zap.Int("agents count", len(analysis.AgentReports)))
		return nil
	case PromptReportToFile:
		filename, err := analysis.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// dumpConfig renders the effective configuration without secrets.
func dumpConfig(config *Config) (string, error) {
	redacted := *config
	redacted.GitHub = &GitHubConfig{
		TokenFile: config.GitHub.TokenFile,
		BaseURL:   config.GitHub.BaseURL,
		Timeout:   config.GitHub.Timeout,
		Analysis:  config.GitHub.Analysis,
	}
	redacted.Gemini = &GeminiConfig{
		APIKeyFile:   config.Gemini.APIKeyFile,
		Model:        config.Gemini.Model,
		MaxRetries:   config.Gemini.MaxRetries,
		MaxLogLength: config.Gemini.MaxLogLength,
	}

	pretty, err := json.MarshalIndent(redacted, "", "  ")
	if err != nil {
		return "", err
	}
	return string(pretty), nil
}

// readProfile loads an already structured candidate. A missing id is replaced by a fresh anonymous one.
func readProfile(path string) (*candidate.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var profile candidate.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", path, err)
	}

	if profile.CandidateID == "" {
		profile.CandidateID = candidate.NewID()
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return &profile, nil
}

// structureResume extracts text from the resume and asks the model for a profile.
func structureResume(ctx context.Context, config *Config, path string, logger *zap.Logger) (*candidate.Profile, error) {
	doc, err := extract.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	logger.Info("resume text extracted", zap.String("source", doc.Source), zap.Int("length", len(doc.Text)))

	extractor, err := newExtractor(ctx, config.Gemini, logger)
	if err != nil {
		return nil, fmt.Errorf("building resume extractor: %w", err)
	}

	profile, err := extractor.Extract(ctx, doc.Text)
	if err != nil {
		return nil, fmt.Errorf("structuring resume: %w", err)
	}

	profile.Metadata["source"] = doc.Source
	return profile, nil
}
