package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anandbmuley/deep-signal/internal/agents/greenwash"
	"github.com/anandbmuley/deep-signal/internal/agents/skilldecay"
	"github.com/anandbmuley/deep-signal/internal/synthesis"
)

const (
	app = "deep-signal"
)

type Config struct {
	SkillDecay skilldecay.Config `mapstructure:"skill-decay"`
	GitHub     *GitHubConfig     `mapstructure:"github"`
	Gemini     *GeminiConfig     `mapstructure:"gemini"`
	Synthesis  synthesis.Config  `mapstructure:"synthesis"`
}

type GitHubConfig struct {
	Token     string           `mapstructure:"token"`
	TokenFile string           `mapstructure:"token-file"`
	BaseURL   string           `mapstructure:"base-url"`
	Timeout   time.Duration    `mapstructure:"timeout"`
	Analysis  greenwash.Config `mapstructure:"analysis"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "deep-signal scores software candidates from their resume and public code activity",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"github.token-file":   "GITHUB_TOKEN_FILE",
		"github.base-url":     "GITHUB_BASE_URL",
		"gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"gemini.model":        "GEMINI_MODEL",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is deep-signal.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// version does not need any configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless given explicitly, every setting has a default.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		SkillDecay: skilldecay.DefaultConfig(),
		GitHub: &GitHubConfig{
			Timeout:  30 * time.Second,
			Analysis: greenwash.DefaultConfig(),
		},
		Gemini: &GeminiConfig{
			Model:        "gemini-2.5-flash",
			MaxRetries:   3,
			MaxLogLength: 200,
		},
		Synthesis: synthesis.DefaultConfig(),
	}
}

// getConfig decodes the viper settings on top of the component defaults.
func getConfig() (*Config, error) {
	config := defaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	// empty sections in the file decode to nil
	if config.GitHub == nil {
		config.GitHub = defaultConfig().GitHub
	}
	if config.Gemini == nil {
		config.Gemini = defaultConfig().Gemini
	}

	return config, nil
}
