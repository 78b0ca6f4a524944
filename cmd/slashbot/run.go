package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to the gateway and serve slash commands",
		Long: `Connect to the gateway and serve slash commands until interrupted.

On READY the commands are synced according to SYNC_MODE. SIGHUP triggers
another sync without reconnecting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()
			return a.run(cmd.Context())
		},
	}
}

func (a *app) run(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	a.log.Info("starting slashbot", zap.String("version", Version), zap.Int("commands", a.registry.Len()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.bot.Run(ctx)
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sig)

	for {
		select {
		case s := <-sig:
			if s == syscall.SIGHUP {
				if !a.bot.RequestResync(a.cfg.GuildID, a.cfg.SyncMode) {
					a.log.Warn("resync already queued")
				}
				continue
			}
			a.log.Info("received signal, shutting down", zap.String("signal", s.String()))
			cancel()
			if err := <-errCh; err != nil {
				return err
			}
			a.log.Info("slashbot exited cleanly")
			return nil
		case err := <-errCh:
			if err != nil {
				a.log.Error("discord bot error", zap.Error(err))
			}
			return err
		}
	}
}
