package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"librarian/internal/illustration"
	"librarian/internal/moderation"
	"librarian/internal/tui"
	"librarian/internal/watch"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:           "librarian",
		Short:         "Book recommendations from a curated summary corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default ./librarian.yaml, then ~/.config/librarian/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	base := func() appOptions { return appOptions{configPath: configPath, logLevel: logLevel} }

	chatCmd := newChatCmd(base)
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())

	rootCmd.AddCommand(
		chatCmd,
		newAskCmd(base),
		newSeedCmd(base),
		newIllustrateCmd(base),
		newModelsCmd(base),
	)
	return rootCmd
}

func newChatCmd(base func() appOptions) *cobra.Command {
	var (
		plain bool
		model string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat (full-screen on a terminal, line mode otherwise)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fullScreen := !plain && stdinIsTerminal()

			opts := base()
			opts.quiet = fullScreen
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ensureSeeded(ctx); err != nil {
				return err
			}
			lib := modelOverride{Librarian: a.librarian, model: model}

			if !fullScreen {
				return tui.NewREPL(lib, a.gate, a.illustrator).Run(ctx, os.Stdin, os.Stdout)
			}

			tuiOpts := tui.Options{Illustrator: a.illustrator}
			if a.cfg.Corpus.Watch {
				w, err := watch.NewCorpusWatcher(a.cfg.Corpus.Path, a.logger)
				if err != nil {
					return err
				}
				defer w.Stop()
				events, err := w.Watch(ctx)
				if err != nil {
					return err
				}
				tuiOpts.Drift = events
			}
			m := tui.New(ctx, lib, a.gate, tuiOpts)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Use line mode even on a terminal")
	cmd.Flags().StringVar(&model, "model", "", "Chat model (must be listed in llm.allowed_models)")
	return cmd
}

func newAskCmd(base func() appOptions) *cobra.Command {
	var (
		model      string
		illustrate bool
	)
	cmd := &cobra.Command{
		Use:   "ask <request>",
		Short: "Answer a single request and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(base())
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			if !a.gate.IsClean(query) {
				fmt.Fprintln(cmd.OutOrStdout(), moderation.BlockedMessage)
				return nil
			}
			if err := a.ensureSeeded(ctx); err != nil {
				return err
			}
			res, err := a.librarian.Ask(ctx, query, model)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Reply)

			if illustrate && res.Title != "" {
				path, err := a.illustrator.Generate(ctx, res.Title)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Imagine generata:", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Chat model (must be listed in llm.allowed_models)")
	cmd.Flags().BoolVar(&illustrate, "illustrate", false, "Also generate an illustration for the recommended book")
	return cmd
}

func newSeedCmd(base func() appOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Embed the corpus into the vector index (skipped when already seeded)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			progress := &seedProgress{}
			opts := base()
			opts.progress = progress.Func()
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var n int
			if force {
				n, err = a.index.Reseed(ctx, a.records)
			} else {
				n, err = a.index.SeedIfEmpty(ctx, a.records)
			}
			if err != nil {
				return err
			}
			total, err := a.index.Count(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Index already seeded (%d entries). Use --force to rebuild.\n", total)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d entries from %s.\n", n, a.cfg.Corpus.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Clear the index and embed the corpus again")
	return cmd
}

func newIllustrateCmd(base func() appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "illustrate <title or reply>",
		Short: "Generate an illustration for a book title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(base())
			if err != nil {
				return err
			}
			defer a.Close()

			title, ok := illustration.ExtractTitle(strings.Join(args, " "))
			if !ok {
				return errors.New("no title given")
			}
			path, err := a.illustrator.Generate(cmd.Context(), title)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newModelsCmd(base func() appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the chat models a turn may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(base().configPath)
			if err != nil {
				return err
			}
			for _, m := range cfg.LLM.AllowedModels {
				marker := " "
				if m == cfg.LLM.DefaultModel {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, m)
			}
			return nil
		},
	}
}
