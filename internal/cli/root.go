// Package cli defines the Cobra commands of interviewctl, the operator tool
// for running practice sessions from a terminal and minting dev tokens.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/interviewcoach/backend/internal/infrastructure/config"
	"github.com/interviewcoach/backend/internal/llm"
	"github.com/interviewcoach/backend/internal/prompts"
	"github.com/interviewcoach/backend/internal/service"
	"github.com/interviewcoach/backend/internal/store"
)

var (
	verbose bool
	version = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "interviewctl",
	Short: "Operator tool for the interview coach backend",
	Long: `interviewctl runs mock interview sessions against the configured
generation service and database, prints stored summaries and mints
development bearer tokens. It reads the same environment as the server.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log orchestrator activity to stderr")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(summaryCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openService wires the orchestrator from the shared configuration. The
// returned func closes the database.
func openService(cfg *config.Config) (*service.InterviewService, func(), error) {
	db, err := store.NewSQLite(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	gen := llm.NewClient(cfg.LLMURL, cfg.LLMModel, cfg.LLMAPIKey, cfg.LLMTimeout)
	svc := service.NewInterviewService(db, gen, nil, prompts.Default(), newLogger(), service.Options{
		DefaultQuestions:  cfg.DefaultQuestions,
		MaxQuestions:      cfg.MaxQuestions,
		GenerationTimeout: cfg.LLMTimeout,
	})
	return svc, func() { db.Close() }, nil
}
