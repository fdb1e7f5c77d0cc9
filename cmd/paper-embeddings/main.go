// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-embeddings CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-embeddings/internal/scholar"
	"github.com/pdiddy/paper-embeddings/internal/secrets"
	"github.com/pdiddy/paper-embeddings/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	appName          = "paper-embeddings"
	apiKeySecret     = "semantic-scholar-api-key"
	envAPIKey        = "semantic_api_key"
	defaultUserAgent = "paper-embeddings/0.1"
	defaultTimeout   = 30 * time.Second
)

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// log is configured from --log-level and --log-format before any
// subcommand runs.
var log = logrus.New()

// secretDefault returns fallback when set, else the secret stored under key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Build labeled embedding datasets from Semantic Scholar",
	Long: `paper-embeddings looks papers up on the Semantic Scholar Graph API and
assembles their SPECTER v2 embeddings, each followed by a 0/1 label, into a
single flat array on disk.

Use "build" to turn CSV lists of titles or paper IDs into a dataset, and
"paper" to query the API directly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		envFile, _ := cmd.Flags().GetString("env-file")
		s, err := loadSecrets(dir, envFile)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debugf("Loaded secrets: %v", keys)
		}
		return nil
	},
}

// loadSecrets reads the secrets directory, then fills the API key from the
// dotenv file when the directory does not provide it.
func loadSecrets(dir, envFile string) (map[string]string, error) {
	s, err := secrets.Load(dir, log)
	if err != nil {
		return nil, err
	}
	env, err := secrets.LoadEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	if v, ok := env[envAPIKey]; ok {
		if _, set := s[apiKeySecret]; !set {
			s[apiKeySecret] = v
		}
	}
	return s, nil
}

func init() {
	cobra.OnInitialize(initConfig)
	registerRootFlags(rootCmd.PersistentFlags())
	bindRootFlags(rootCmd.PersistentFlags())
}

func registerRootFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: ./paper-embeddings.yaml or $XDG_CONFIG_HOME/paper-embeddings/config.yaml)")
	fs.String("secrets-dir", ".secrets/", "directory of secret files (semantic-scholar-api-key)")
	fs.String("env-file", ".env", "dotenv file read for SEMANTIC_API_KEY")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-format", "text", "log format: text or json")
	fs.String("api-key", "", "Semantic Scholar API key (default: $SEMANTIC_API_KEY, .secrets/semantic-scholar-api-key, or .env)")
	fs.Float64("rps", 0, "maximum requests per second (0 = unpaced)")
	fs.Duration("timeout", 0, "HTTP request timeout (default 30s)")
}

// bindRootFlags lets the client flags override env and file settings.
func bindRootFlags(fs *pflag.FlagSet) {
	_ = viper.BindPFlag("client.api_key", fs.Lookup("api-key"))
	_ = viper.BindPFlag("client.requests_per_second", fs.Lookup("rps"))
	_ = viper.BindPFlag("client.timeout", fs.Lookup("timeout"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configure(cfgFile)
}

// configure points viper at cfgFile, or at the default search path when it
// is empty, and loads it over the env bindings and defaults.
func configure(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
	}

	viper.SetEnvPrefix("PAPER_EMBEDDINGS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("client.api_key", "PAPER_EMBEDDINGS_CLIENT_API_KEY", "SEMANTIC_API_KEY")

	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setConfigDefaults() {
	viper.SetDefault("client.base_url", scholar.DefaultBaseURL)
	viper.SetDefault("client.user_agent", defaultUserAgent)
	viper.SetDefault("client.timeout", defaultTimeout)
	viper.SetDefault("client.transport_attempts", 1)
	viper.SetDefault("dataset.output", "final_embedding.npy")
	viper.SetDefault("dataset.format", string(types.FormatNPY))
	viper.SetDefault("dataset.retry.delay", time.Second)
	viper.SetDefault("dataset.retry.max_attempts", 0)
}

// loadConfig decodes the merged file, env, and flag settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if cfg.Client.Timeout <= 0 {
		cfg.Client.Timeout = defaultTimeout
	}
	cfg.Client.APIKey = secretDefault(apiKeySecret, cfg.Client.APIKey)
	if cfg.Client.APIKey == "" {
		log.Warn("No Semantic Scholar API key configured; requests share the public rate limit")
	}
	return cfg, nil
}

func setupLogging(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)

	switch format {
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unsupported --log-format %q: use text or json", format)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
