package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mmcdole/shutter/internal/adapter"
	"github.com/mmcdole/shutter/internal/adapter/source"
	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/search"
	"github.com/mmcdole/shutter/internal/tui"
)

// commandTimeout bounds one-shot network commands
const commandTimeout = 60 * time.Second

// ErrNotConfigured is returned by commands that need an API key before setup ran
var ErrNotConfigured = errors.New("no flickr API key configured, run `shutter setup`")

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "shutter",
		Short:         "Browse flickr photos in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, logOut, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			defer logOut.Close()
			logger.Info("starting shutter", "version", Version)

			if !cfg.IsConfigured() {
				return runSetup(cmd.Context(), cfg)
			}
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("the gallery needs a terminal; use `shutter search` for scripted output")
			}

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.polling.Restore(); err != nil {
				logger.Error("failed to restore polling", "error", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return tui.Run(ctx, tui.Deps{
				Gallery:    a.gallery,
				Polling:    a.polling,
				Browse:     a.browse,
				Thumbnails: a.source,
				Dispatcher: a.dispatcher,
				Options:    a.thumbnailOptions(),
				Logger:     logger,
			})
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/shutter/config.yaml)")

	// withApp loads config and wires services for a subcommand
	withApp := func(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, logger, logOut, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			defer logOut.Close()
			if !cfg.IsConfigured() {
				return ErrNotConfigured
			}
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return fn(ctx, a, args)
		}
	}

	root.AddCommand(
		newPollCmd(withApp),
		newDaemonCmd(withApp),
		newPollingCmd(withApp),
		newSearchCmd(withApp),
		newSetupCmd(&configPath),
		newVersionCmd(),
	)
	return root
}

type appRunner func(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error

func newPollCmd(withApp appRunner) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Check once for new photos and notify",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			if query == "" {
				query = a.prefs.StoredQuery()
			}
			outcome := a.poller.RunPoll(ctx, query)
			fmt.Println(outcome)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "query to poll (default: the stored search)")
	return cmd
}

func newDaemonCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the periodic poll job until interrupted",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if !a.polling.Enabled() {
				return errors.New("polling is off, enable it with `shutter polling on`")
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return a.polling.Restore()
			})
			g.Go(func() error {
				<-gctx.Done()
				a.sched.Stop()
				return nil
			})

			fmt.Printf("polling every %s, press ctrl+c to stop\n", a.cfg.Polling.Interval)
			a.logger.Info("daemon started", "interval", a.cfg.Polling.Interval)
			return g.Wait()
		}),
	}
}

func newPollingCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "polling",
		Short: "Turn background polling on or off",
	}

	set := func(enabled bool) func(context.Context, *app, []string) error {
		return func(_ context.Context, a *app, _ []string) error {
			if err := a.polling.SetEnabled(enabled); err != nil {
				return err
			}
			printPollState(a.prefs.State())
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "on", Short: "Enable polling", Args: cobra.NoArgs, RunE: withApp(set(true))},
		&cobra.Command{Use: "off", Short: "Disable polling", Args: cobra.NoArgs, RunE: withApp(set(false))},
		&cobra.Command{
			Use:   "status",
			Short: "Show the polling state",
			Args:  cobra.NoArgs,
			RunE: withApp(func(_ context.Context, a *app, _ []string) error {
				printPollState(a.prefs.State())
				return nil
			}),
		},
	)
	return cmd
}

func printPollState(state domain.PollState) {
	query := state.StoredQuery
	if query == "" {
		query = "(interesting)"
	}
	enabled := "off"
	if state.PollingEnabled {
		enabled = "on"
	}
	fmt.Printf("polling:  %s\nquery:    %s\nlast id:  %s\n", enabled, query, state.LastResultID)
}

func newSearchCmd(withApp appRunner) *cobra.Command {
	var rank string
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Set the followed query and print its photos",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			items, err := a.gallery.Search(ctx, query).Wait(ctx)
			if err != nil {
				return err
			}
			if rank != "" {
				items = search.Rank(items, rank)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPAGE")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", item.ID, item.DisplayTitle(), item.PageURL())
			}
			return w.Flush()
		}),
	}
	cmd.Flags().StringVar(&rank, "rank", "", "order results by closeness of title to this text")
	return cmd
}

func newSetupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Enter and verify a flickr API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, logOut, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logOut.Close()
			return runSetup(cmd.Context(), cfg)
		},
	}
}

// runSetup asks for an API key, verifies it and saves the config
func runSetup(ctx context.Context, cfg *adapter.Config) error {
	fmt.Println()
	fmt.Println("Welcome to Shutter!")

	readKey := func() ([]byte, error) {
		return term.ReadPassword(int(os.Stdin.Fd()))
	}
	flow := source.NewAuthFlow(cfg.Flickr.BaseURL, os.Stdout, readKey, nil)

	key, err := flow.Run(ctx)
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	cfg.Flickr.APIKey = key
	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println("Run shutter again to start browsing.")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("shutter %s\n", Version)
		},
	}
}
