package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvLoader handles loading environment variables from a .env file, kept as
// a thin convenience wrapper so CLI entrypoints can opt in before calling
// Load.
type EnvLoader struct {
	loaded bool
	path   string
}

// NewEnvLoader creates an environment loader.
func NewEnvLoader() *EnvLoader {
	return &EnvLoader{}
}

// Load loads environment variables from a .env file found in the current
// directory or one of its parents. Absence of a .env file is not an error —
// production deployments set real environment variables directly.
func (e *EnvLoader) Load() error {
	if e.loaded {
		return nil
	}
	envPath, err := findEnvFile()
	if err != nil {
		return nil
	}
	e.path = envPath
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("failed to load %s: %w", envPath, err)
	}
	e.loaded = true
	return nil
}

// GetPath returns the path to the loaded .env file, if any.
func (e *EnvLoader) GetPath() string {
	return e.path
}

func findEnvFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	searchPath := cwd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(searchPath, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		parent := filepath.Dir(searchPath)
		if parent == searchPath {
			break
		}
		searchPath = parent
	}
	return "", fmt.Errorf(".env file not found in %s or parent directories", cwd)
}

// applyEnvOverrides layers MINER_*-prefixed environment variables on top
// of a config already populated from JSON, honoring a fixed precedence
// order: file, then env, then flags.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MINER_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Threads = n
		}
	}
	if v := os.Getenv("MINER_DEPLOY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Deploy = b
		}
	}
	if v := os.Getenv("MINER_COMMIT_CONTENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CommitContent = b
		}
	}
	if v := os.Getenv("MINER_PR_FILE_CONTENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.PullRequestFileContent = b
		}
	}
	if v := os.Getenv("GITHUB_TOKENS"); v != "" {
		cfg.GithubTokens = splitAndTrim(v, ",")
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		cfg.DBUsername = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.DBPassword = v
	}
	if v := os.Getenv("MINER_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("MINER_REPO_LIST"); v != "" {
		cfg.RepoListPath = v
	}
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
