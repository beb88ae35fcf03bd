package config

import (
	"fmt"
	"strings"

	"github.com/octoharvest/octoharvest/internal/errors"
)

// ValidationResult holds validation results. Errors are fatal startup
// conditions; Warnings are informational and never block startup.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (vr *ValidationResult) addError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

func (vr *ValidationResult) addWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors reports whether the config failed validation.
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

func (vr *ValidationResult) String() string {
	if !vr.HasErrors() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, e := range vr.Errors {
		sb.WriteString("  - " + e + "\n")
	}
	for _, w := range vr.Warnings {
		sb.WriteString("  (warning) " + w + "\n")
	}
	return sb.String()
}

// Validate checks the required configuration: a non-empty token list, a
// non-empty repository list, and sane worker/database settings. Missing
// required keys are a fatal startup condition — the caller should treat a
// non-nil *errors.Error return as grounds to refuse to begin mining.
func (c *Config) Validate() (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}

	if c.Threads <= 0 {
		result.addError("threads must be a positive integer, got %d", c.Threads)
	}
	if len(c.GithubTokens) == 0 {
		result.addError("github_tokens must be non-empty")
	}
	if c.RepoListPath == "" {
		result.addError("repo_list_path must be set")
	}
	if c.DBUsername == "" {
		result.addWarning("db_username is empty; graph database connections will fail")
	}
	if c.PostgresDSN == "" {
		result.addWarning("postgres_dsn is empty; run-ledger recording is disabled")
	}

	if result.HasErrors() {
		return result, errors.ConfigError(result.String())
	}
	return result, nil
}
