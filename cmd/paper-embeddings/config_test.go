// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-embeddings/internal/scholar"
	"github.com/pdiddy/paper-embeddings/pkg/types"
)

// keySources are the places an API key can come from, highest precedence
// first. An empty value leaves that place unset.
type keySources struct {
	flag        string
	envPrefix   string // PAPER_EMBEDDINGS_CLIENT_API_KEY
	envSemantic string // SEMANTIC_API_KEY
	configFile  string
	secretFile  string
	dotenv      string
}

// resetConfig clears the global viper state and the loaded secrets, and
// restores them when the test ends.
func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	loadedSecrets = nil
	t.Cleanup(func() {
		viper.Reset()
		loadedSecrets = nil
	})
}

// resolveConfig runs the same steps as the root command: flag binding,
// config file, env, secrets directory, and dotenv file.
func resolveConfig(t *testing.T, src keySources) types.Config {
	t.Helper()
	resetConfig(t)
	dir := t.TempDir()

	t.Setenv("PAPER_EMBEDDINGS_CLIENT_API_KEY", src.envPrefix)
	t.Setenv("SEMANTIC_API_KEY", src.envSemantic)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerRootFlags(fs)
	bindRootFlags(fs)
	var args []string
	if src.flag != "" {
		args = append(args, "--api-key="+src.flag)
	}
	require.NoError(t, fs.Parse(args))

	cfgPath := filepath.Join(dir, "config.yaml")
	cfgBody := "client:\n  user_agent: test-agent\n"
	if src.configFile != "" {
		cfgBody += "  api_key: " + src.configFile + "\n"
	}
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgBody), 0o644))
	configure(cfgPath)

	secretsDir := filepath.Join(dir, ".secrets")
	require.NoError(t, os.MkdirAll(secretsDir, 0o755))
	if src.secretFile != "" {
		require.NoError(t, os.WriteFile(filepath.Join(secretsDir, apiKeySecret), []byte(src.secretFile+"\n"), 0o600))
	}
	envFile := filepath.Join(dir, ".env")
	if src.dotenv != "" {
		require.NoError(t, os.WriteFile(envFile, []byte("SEMANTIC_API_KEY="+src.dotenv+"\n"), 0o600))
	}

	s, err := loadSecrets(secretsDir, envFile)
	require.NoError(t, err)
	loadedSecrets = s

	cfg, err := loadConfig()
	require.NoError(t, err)
	return cfg
}

func TestAPIKeyPrecedence(t *testing.T) {
	all := keySources{
		flag:        "from-flag",
		envPrefix:   "from-prefixed-env",
		envSemantic: "from-semantic-env",
		configFile:  "from-config",
		secretFile:  "from-secrets",
		dotenv:      "from-dotenv",
	}

	tests := []struct {
		name string
		src  keySources
		want string
	}{
		{name: "flag wins over everything", src: all, want: "from-flag"},
		{
			name: "prefixed env var",
			src:  keySources{envPrefix: "from-prefixed-env", configFile: "from-config", secretFile: "from-secrets", dotenv: "from-dotenv"},
			want: "from-prefixed-env",
		},
		{
			name: "SEMANTIC_API_KEY env var",
			src:  keySources{envSemantic: "from-semantic-env", configFile: "from-config", secretFile: "from-secrets", dotenv: "from-dotenv"},
			want: "from-semantic-env",
		},
		{
			name: "config file",
			src:  keySources{configFile: "from-config", secretFile: "from-secrets", dotenv: "from-dotenv"},
			want: "from-config",
		},
		{
			name: "secrets directory",
			src:  keySources{secretFile: "from-secrets", dotenv: "from-dotenv"},
			want: "from-secrets",
		},
		{name: "dotenv file", src: keySources{dotenv: "from-dotenv"}, want: "from-dotenv"},
		{name: "nothing configured", src: keySources{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := resolveConfig(t, tt.src)
			assert.Equal(t, tt.want, cfg.Client.APIKey)
			assert.Equal(t, "test-agent", cfg.Client.UserAgent)
		})
	}
}

func TestLoadSecrets_DotenvDoesNotOverrideSecretsDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, apiKeySecret), []byte("dir-key"), 0o600))
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SEMANTIC_API_KEY=env-key\nOTHER=x\n"), 0o600))

	s, err := loadSecrets(dir, envFile)
	require.NoError(t, err)
	assert.Equal(t, "dir-key", s[apiKeySecret])
}

func TestLoadSecrets_MissingEverything(t *testing.T) {
	dir := t.TempDir()
	s, err := loadSecrets(filepath.Join(dir, "nope"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := resolveConfig(t, keySources{})

	assert.Equal(t, scholar.DefaultBaseURL, cfg.Client.BaseURL)
	assert.Equal(t, defaultTimeout, cfg.Client.Timeout)
	assert.Equal(t, 1, cfg.Client.TransportAttempts)
	assert.Equal(t, "final_embedding.npy", cfg.Dataset.Output)
	assert.Equal(t, types.FormatNPY, cfg.Dataset.Format)
	assert.Equal(t, types.RetryConfig{Delay: time.Second}, cfg.Dataset.Retry)
}

func TestLoadConfig_SampleFile(t *testing.T) {
	resetConfig(t)
	t.Setenv("PAPER_EMBEDDINGS_CLIENT_API_KEY", "")
	t.Setenv("SEMANTIC_API_KEY", "")

	configure(filepath.Join("..", "..", "paper-embeddings.yaml"))
	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Client.Timeout, "squashed HTTP settings decode")
	assert.Equal(t, "paper-embeddings/0.1", cfg.Client.UserAgent)
	assert.Equal(t, scholar.DefaultBaseURL, cfg.Client.BaseURL)
	assert.Equal(t, "data/final_embedding.npy", cfg.Dataset.Output)
	assert.True(t, cfg.Dataset.Report)
	assert.Equal(t, types.RetryConfig{Delay: time.Second, MaxAttempts: 0}, cfg.Dataset.Retry)

	require.Len(t, cfg.Dataset.Sources, 4)
	assert.Equal(t, types.SourceConfig{
		Path: "data/negative_papers.csv", Kind: types.SourceTitles, Column: "Title", Label: 0, Limit: 5,
	}, cfg.Dataset.Sources[0])
	assert.Equal(t, types.SourceConfig{
		Path: "data/labeled_papers.csv", Kind: types.SourceIDs, Column: "ID", LabelColumn: "Is MLSys?", LabelPositive: "Y",
	}, cfg.Dataset.Sources[1])
	assert.Equal(t, types.SourceConfig{
		Path: "data/mlsys_papers.csv", Kind: types.SourceIDs, Column: "Paper ID", Label: 1,
	}, cfg.Dataset.Sources[2])
	assert.Equal(t, []string{
		"6d77d4a044ee4a1eb928a65f722cf218e2fddbfa",
		"755689b414ca98e442cea99e3631ee9d2d3c253b",
		"14f3a19c9bbb95d1c1ebb913de913859ad06fc3f",
	}, cfg.Dataset.Sources[3].IDs)
	assert.Empty(t, cfg.Dataset.Sources[3].Path)
	assert.Zero(t, cfg.Dataset.Sources[3].Label)
}
