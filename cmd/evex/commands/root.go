package commands

import (
	"context"
	"fmt"
	"net/http"

	"evex/pkg/apiclient"
	"evex/pkg/config"
	"evex/pkg/logger"
	"evex/pkg/session"
	"evex/pkg/tokenstore"

	"github.com/spf13/cobra"
)

// cli is built once per invocation in the root's PersistentPreRunE.
type cli struct {
	cfg   config.Config
	entry *session.Entry
}

func (c *cli) ensure(ctx context.Context) (session.State, error) {
	return c.entry.Holder.Ensure(ctx)
}

// NewRootCmd creates the evex command tree.
func NewRootCmd() *cobra.Command {
	app := &cli{}

	rootCmd := &cobra.Command{
		Use:           "evex",
		Short:         "Browse and manage university events from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log := logger.New(cfg.LogLevel, false)

			opts := []apiclient.Option{apiclient.WithLogger(log)}
			if cfg.HTTPTimeout > 0 {
				opts = append(opts, apiclient.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
			}

			stderr := cmd.ErrOrStderr()
			app.cfg = cfg
			app.entry = session.NewEntry("cli", cfg.APIURL, tokenstore.NewFile(cfg.TokenFile), opts,
				session.WithLogger(log),
				session.WithNotifier(func(context.Context, string, string) {
					fmt.Fprintln(stderr, "Session expired. Run `evex login` again.")
				}),
			)
			return nil
		},
	}

	rootCmd.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newEventsCommand(app),
		newMyEventsCommand(app),
	)

	return rootCmd
}
