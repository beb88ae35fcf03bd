package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Threads:      4,
		GithubTokens: []string{"tok1"},
		RepoListPath: "./repos.txt",
		DBUsername:   "neo4j",
		PostgresDSN:  "postgres://localhost/ledger",
	}
}

func TestValidate_AllFieldsPresent(t *testing.T) {
	cfg := validConfig()

	result, err := cfg.Validate()

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.HasErrors())
}

func TestValidate_ZeroThreadsIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.Threads = 0

	result, err := cfg.Validate()

	assert.Error(t, err)
	assert.True(t, result.HasErrors())
	assert.Contains(t, result.Errors[0], "threads must be a positive integer")
}

func TestValidate_NegativeThreadsIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.Threads = -1

	result, err := cfg.Validate()

	assert.Error(t, err)
	assert.True(t, result.HasErrors())
}

func TestValidate_MissingTokensIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.GithubTokens = nil

	result, err := cfg.Validate()

	assert.Error(t, err)
	assert.Contains(t, result.Errors, "github_tokens must be non-empty")
}

func TestValidate_MissingRepoListPathIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.RepoListPath = ""

	result, err := cfg.Validate()

	assert.Error(t, err)
	assert.Contains(t, result.Errors, "repo_list_path must be set")
}

func TestValidate_MissingDBUsernameIsWarningOnly(t *testing.T) {
	cfg := validConfig()
	cfg.DBUsername = ""

	result, err := cfg.Validate()

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.False(t, result.HasErrors())
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "db_username is empty")
}

func TestValidate_MissingPostgresDSNIsWarningOnly(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresDSN = ""

	result, err := cfg.Validate()

	require.NoError(t, err)
	assert.False(t, result.HasErrors())
	assert.Len(t, result.Warnings, 1)
}

func TestValidationResult_StringIncludesErrorsAndWarnings(t *testing.T) {
	cfg := &Config{Threads: 0, DBUsername: ""}

	result, err := cfg.Validate()
	require.Error(t, err)

	s := result.String()
	assert.Contains(t, s, "configuration validation failed")
	assert.Contains(t, s, "threads must be a positive integer")
	assert.Contains(t, s, "(warning)")
}

func TestValidationResult_StringEmptyWhenValid(t *testing.T) {
	result := &ValidationResult{Valid: true}
	assert.Equal(t, "", result.String())
}
