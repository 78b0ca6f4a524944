package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/norinorin/discord-slash-command/internal/config"
	"github.com/norinorin/discord-slash-command/pkg/slash"
)

func newSyncCmd() *cobra.Command {
	var (
		mode    string
		guildID string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync slash commands with Discord and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			if !cmd.Flags().Changed("mode") {
				mode = a.cfg.SyncMode
			}
			if !cmd.Flags().Changed("guild") {
				guildID = a.cfg.GuildID
			}
			if mode == config.SyncOff {
				return fmt.Errorf("%w: nothing to do with mode %q", slash.ErrConfiguration, mode)
			}

			ctx := cmd.Context()
			if err := a.bot.ResolveApplicationID(ctx); err != nil {
				return err
			}
			return a.bot.Sync(ctx, mode, guildID)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", config.SyncDiff, "sync mode: diff or bulk (default SYNC_MODE)")
	cmd.Flags().StringVar(&guildID, "guild", "", "guild to sync (default DISCORD_GUILD_ID, empty for global)")
	return cmd
}
