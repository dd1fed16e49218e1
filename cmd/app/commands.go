// File: cmd/app/commands.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"lexa-chat/internal/config"
	"lexa-chat/internal/tui"

	"github.com/spf13/cobra"
)

type rootOpts struct {
	ConfigPath string
	Dev        bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	cmd := &cobra.Command{
		Use:           "lexa",
		Short:         "Terminal chat client for the Lexa assistant",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file (defaults apply when empty)")
	cmd.PersistentFlags().BoolVar(&opts.Dev, "dev", false, "enable developer mode (console logs, unredacted fields)")

	cmd.AddCommand(newChatsCmd(opts), newLogoutCmd(opts))
	return cmd
}

func newChatsCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List the chats of the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, false, func(ctx context.Context, a *app) error {
				a.facade.Bootstrap(ctx)
				st := a.facade.State()
				if !st.Session.Authenticated {
					return fmt.Errorf("not signed in: run lexa to sign in first")
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\t")
				for _, c := range st.Chats.Items {
					marker := ""
					if c.ID == st.Active.ChatID {
						marker = " *"
					}
					fmt.Fprintf(w, "%s\t%s%s\t\n", c.ID, c.Title, marker)
				}
				return w.Flush()
			})
		},
	}
}

func newLogoutCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, false, func(ctx context.Context, a *app) error {
				a.session.RestoreSession(ctx)
				if err := a.session.Logout(ctx); err != nil {
					// local state is already cleared
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: server logout failed: %v\n", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
				return nil
			})
		},
	}
}

func runInteractive(ctx context.Context, opts *rootOpts) error {
	return withApp(ctx, opts, true, func(ctx context.Context, a *app) error {
		updates, unsubscribe := a.facade.Subscribe()
		defer unsubscribe()

		a.start(ctx)
		go a.facade.Bootstrap(ctx)

		a.log.Info().Msg("client started")
		err := tui.Run(ctx, a.facade, updates)
		a.log.Info().Msg("client stopping")
		return err
	})
}

// withApp loads config, wires the client, and runs fn under a context
// canceled by SIGINT/SIGTERM.
func withApp(parent context.Context, opts *rootOpts, interactive bool, fn func(ctx context.Context, a *app) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(opts.ConfigPath, opts.Dev)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a, err := buildApp(ctx, cfg, interactive)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}
