// Package config loads and validates the single JSON configuration document
// that drives a mining run: worker concurrency, deployment paths, optional
// content-capture toggles, GitHub credentials, and database connection info.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/octoharvest/octoharvest/internal/errors"
)

// Config is the top-level configuration document. Field names mirror the
// JSON keys from the original mining tool so existing config files load
// unchanged.
type Config struct {
	Threads                int      `json:"threads"`
	Deploy                 bool     `json:"deploy"`
	CommitContent          bool     `json:"commit_content"`
	PullRequestFileContent bool     `json:"pull_request_file_content"`
	GithubTokens           []string `json:"github_tokens"`
	DBUsername             string   `json:"db_username"`
	DBPassword             string   `json:"db_password"`

	// PostgresDSN is the connection string for the run ledger. Empty
	// disables ledger recording.
	PostgresDSN string `json:"postgres_dsn"`

	// RepoListPath points at the newline-delimited repository URL file.
	RepoListPath string `json:"repo_list_path"`
}

// Paths holds the deployment-mode-dependent filesystem and network
// locations derived from Deploy.
type Paths struct {
	CloneDir        string
	IntermediateDir string
	Neo4jHost       string
}

// Default returns the development-mode baseline: small worker count, local
// paths, content capture off.
func Default() *Config {
	return &Config{
		Threads:                2,
		Deploy:                 false,
		CommitContent:          false,
		PullRequestFileContent: false,
		GithubTokens:           nil,
		RepoListPath:           "./dev_data/repos.txt",
	}
}

// Load reads a JSON config document from path, applying it on top of
// Default(), then layers environment-variable overrides via
// applyEnvOverrides. Missing required keys are NOT validated here — that is
// Validate's job, run explicitly by the caller once flags have also been
// applied: validation failures are fatal at startup, not at load time.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.ConfigErrorf("reading config file %s: %v", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.ConfigErrorf("parsing config file %s: %v", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes the config back to path as indented JSON, used by the
// "validate" CLI subcommand to persist a normalized copy.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.ConfigErrorf("marshaling config: %v", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.FileSystemErrorf(err, "creating config directory %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.FileSystemErrorf(err, "writing config file %s", path)
	}
	return nil
}

// ResolvePaths derives the deployment-mode filesystem/network locations.
// Deploy=true selects the fixed production layout; Deploy=false selects the
// repo-local development layout. This is a direct translation of the
// source's deploy-bool branch, not auto-detection.
func (c *Config) ResolvePaths() Paths {
	if c.Deploy {
		return Paths{
			CloneDir:        "/repo_clone/",
			IntermediateDir: "/repo_share/",
			Neo4jHost:       "neo4j1",
		}
	}
	return Paths{
		CloneDir:        "./dev_data/repo_clone/",
		IntermediateDir: "./dev_data/repo_share/",
		Neo4jHost:       "localhost",
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{threads=%d deploy=%v commit_content=%v pr_file_content=%v tokens=%d}",
		c.Threads, c.Deploy, c.CommitContent, c.PullRequestFileContent, len(c.GithubTokens))
}
