package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"craftbench/internal/app"
	"craftbench/internal/bench"
	"craftbench/internal/config"
	"craftbench/internal/credential"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !bench.IsReported(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// newApp reads the config and creates a CraftApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Propose", "Accept").
func newApp(cmd *cobra.Command, operation string) (*app.CraftApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	home, _ := os.UserHomeDir()
	credential.LoadEnvFiles(home)

	cfg, err := config.ReadOrDefault(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewCraftApp(cmd.Context(), cfg, operation, app.Options{Verbose: verbose})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:           "craftbench",
	Short:         "Propose, review and apply LLM rewrites of source files",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Scratch Dir:  %s\n", cfg.ScratchDir)
		fmt.Printf("Pending:      %s\n", cfg.Pending.Type)
		fmt.Printf("Database:     %s\n", cfg.Database.Type)
		fmt.Printf("Surface:      %s\n", cfg.Surface.Type)
		fmt.Printf("Large Model:  %t\n", cfg.Models.UseLargeModel)
		fmt.Printf("Larger Retry: %t\n", !cfg.Models.DisableLargerRetry)
		if len(cfg.Resources.Ignore) > 0 {
			fmt.Printf("Ignore:       %s\n", strings.Join(cfg.Resources.Ignore, ", "))
		}
		return nil
	},
}

// propose command
var proposeCmd = &cobra.Command{
	Use:   "propose COMMAND FILE",
	Short: "Propose a rewrite of FILE and review it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		noReview, _ := cmd.Flags().GetBool("no-review")

		a, err := newApp(cmd, "Propose")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Propose(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if noReview {
			fmt.Printf("Proposed edits written to %s\n", p.Edit.ScratchPath)
			return nil
		}
		_, err = a.Review(cmd.Context(), p)
		return err
	},
}

// accept command
var acceptCmd = &cobra.Command{
	Use:   "accept SCRATCH_FILE",
	Short: "Apply a pending edit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Accept")
		if err != nil {
			return err
		}
		defer a.Close()

		acc, err := a.Accept(cmd.Context(), args[0])
		if acc == nil && err == nil {
			fmt.Printf("No pending edit for %s\n", args[0])
			return nil
		}
		if acc != nil {
			fmt.Printf("Saved %s\n", acc.Destination)
		}
		return err
	},
}

// retry command
var retryCmd = &cobra.Command{
	Use:   "retry SCRATCH_FILE",
	Short: "Propose a pending edit again with the larger model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noReview, _ := cmd.Flags().GetBool("no-review")

		a, err := newApp(cmd, "Retry")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Retry(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if p == nil {
			fmt.Printf("No pending edit for %s\n", args[0])
			return nil
		}
		if noReview {
			fmt.Printf("Proposed edits written to %s\n", p.Edit.ScratchPath)
			return nil
		}
		_, err = a.Review(cmd.Context(), p)
		return err
	},
}

// discard command
var discardCmd = &cobra.Command{
	Use:   "discard SCRATCH_FILE",
	Short: "Drop a pending edit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Discard")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Discard(cmd.Context(), args[0])
	},
}

// pending command
var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List pending edits",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Pending")
		if err != nil {
			return err
		}
		defer a.Close()

		edits, err := a.Pending()
		if err != nil {
			return err
		}

		if len(edits) == 0 {
			fmt.Println("No pending edits.")
			return nil
		}

		for _, e := range edits {
			fmt.Printf("%s  %-13s  %-14s  %s -> %s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				e.CommandName,
				e.Model,
				e.OriginalID,
				e.ScratchPath,
			)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View proposal history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "History")
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Println("No edits recorded.")
			return nil
		}

		for _, e := range events {
			target := e.ScratchPath
			if e.Destination != "" {
				target = e.Destination
			}
			fmt.Printf("%s  %-9s  %-13s  %s -> %s\n",
				e.OccurredAt.Local().Format("2006-01-02 15:04:05"),
				e.Kind,
				e.CommandName,
				e.OriginalID,
				target,
			)
		}
		return nil
	},
}

// commands command
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List available commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Commands")
		if err != nil {
			return err
		}
		defer a.Close()

		for _, d := range a.Commands() {
			fmt.Printf("%-13s  %s\n", d.Name, d.Title())
		}
		return nil
	},
}

// token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored OpenAI API token",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [TOKEN]",
	Short: "Store an API token, prompting for it when omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "SetToken")
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			if err := a.SetToken(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Token stored.")
			return nil
		}

		token, err := a.PromptForToken(cmd.Context())
		if err != nil {
			return err
		}
		if token == "" {
			fmt.Println("No token stored.")
			return nil
		}
		fmt.Println("Token stored.")
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ClearToken")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ClearToken(); err != nil {
			return err
		}
		fmt.Println("Token removed.")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Also write log output to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// token subcommands
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenClearCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(proposeCmd)
	proposeCmd.Flags().Bool("no-review", false, "Leave the proposal pending instead of reviewing it")
	rootCmd.AddCommand(acceptCmd)
	rootCmd.AddCommand(retryCmd)
	retryCmd.Flags().Bool("no-review", false, "Leave the proposal pending instead of reviewing it")
	rootCmd.AddCommand(discardCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of events to show")
	rootCmd.AddCommand(commandsCmd)
}
