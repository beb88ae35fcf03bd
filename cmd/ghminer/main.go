package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/octoharvest/octoharvest/internal/config"
	"github.com/octoharvest/octoharvest/internal/database"
	"github.com/octoharvest/octoharvest/internal/loader"
	"github.com/octoharvest/octoharvest/internal/worker"
)

var (
	Version = "dev"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "ghminer",
	Short:   "Mine GitHub repositories into a Neo4j property graph",
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		if err := config.NewEnvLoader().Load(); err != nil {
			logger.WithError(err).Debug("no .env file loaded")
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("failed to load config, using defaults")
			cfg = config.Default()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in development defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Mine every repository in the configured repo list",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := cfg.Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()
		paths := cfg.ResolvePaths()

		backend, err := loader.NewNeo4jBackend(ctx, "neo4j://"+paths.Neo4jHost+":7687", cfg.DBUsername, cfg.DBPassword, "neo4j")
		if err != nil {
			return fmt.Errorf("connecting to neo4j: %w", err)
		}
		defer backend.Close()

		ledger, err := database.NewLedger(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connecting to run ledger: %w", err)
		}
		defer ledger.Close()

		pool := &worker.Pool{Config: cfg, Backend: backend, Ledger: ledger, Log: logger}
		return pool.Run(ctx)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the loaded configuration without running a mining pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.GithubTokens) == 0 && term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("no github token configured, enter one (input hidden): ")
			token, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("reading token: %w", err)
			}
			if len(token) > 0 {
				cfg.GithubTokens = append(cfg.GithubTokens, string(token))
				if cfgFile != "" {
					if err := cfg.Save(cfgFile); err != nil {
						return fmt.Errorf("saving config: %w", err)
					}
				}
			}
		}

		result, err := cfg.Validate()
		if err != nil {
			return err
		}
		for _, w := range result.Warnings {
			fmt.Println("warning:", w)
		}
		fmt.Println(cfg.String())
		return nil
	},
}
