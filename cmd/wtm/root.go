package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/metastacks/wtm/internal/config"
	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/log"
	"github.com/metastacks/wtm/internal/output"
	"github.com/metastacks/wtm/internal/safety"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	workDir string
	yes     bool

	// Loaded once in Execute
	cfg *config.Config
)

// Command group IDs for organizing help output
const (
	GroupCore    = "core"
	GroupUtility = "utility"
	GroupConfig  = "config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wtm",
	Short: "Git worktree manager",
	Long: `wtm lists, creates and removes the git worktrees of a repository.

Listings are cached for a few seconds, removal checks for uncommitted
and unpushed work first, and worktrees opened with 'wtm open' are
protected from removal until their shell exits.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}

		// Flags are parsed now, so the logger can honour them.
		ctx := cmd.Context()
		ctx = log.WithLogger(ctx, log.New(os.Stderr, verbose, quiet))
		cmd.SetContext(ctx)

		dir, err := filepath.Abs(workDir)
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		workDir = dir

		switch cmd.Name() {
		case "completion", "__complete", "help", "config", "init", "show":
			return nil
		}
		return git.CheckGit(ctx, cfg.GitPath)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = &loaded

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = output.WithPrinter(ctx, os.Stdout)
	ctx = config.WithResolver(ctx, config.NewResolver(cfg))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "wtm:", err)
		if !errors.Is(err, safety.ErrDeclined) {
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "Run 'wtm -h' for help")
		}
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", "", "Run as if wtm was started in this directory")
	rootCmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "Answer yes to every confirmation prompt")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Core commands
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newOpenCmd())

	// Utility commands
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newPathCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newDoctorCmd())

	// Config commands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())
}
