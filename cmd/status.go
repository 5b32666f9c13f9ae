package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/anandbmuley/deep-signal/internal/logger"
	"github.com/anandbmuley/deep-signal/internal/secrets"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show readiness of every agent",
	Run: func(_ *cobra.Command, _ []string) {
		status()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func status() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	orch, err := newOrchestrator(config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AGENT\tNAME\tSTATUS")
	for _, st := range orch.Status() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", st.Key, st.Name, st.String())
	}
	fmt.Fprintf(w, "%s\t%s\t%s\n", "extractor", "Resume Extraction", extractorState(config.Gemini))
	w.Flush()
}

// extractorState only checks that a key is configured; it does not call the API.
func extractorState(cfg *GeminiConfig) string {
	_, err := secrets.Load(secrets.Source{Value: cfg.APIKey, File: cfg.APIKeyFile, Env: "GEMINI_API_KEY"})
	switch {
	case err == nil:
		return "ready"
	case errors.Is(err, secrets.ErrNotConfigured):
		return "limited (no Gemini API key, only --profile input works)"
	default:
		return fmt.Sprintf("limited (%v)", err)
	}
}
