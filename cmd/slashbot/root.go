package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/norinorin/discord-slash-command/internal/cogs/rate"
	"github.com/norinorin/discord-slash-command/internal/config"
	"github.com/norinorin/discord-slash-command/internal/discord"
	"github.com/norinorin/discord-slash-command/internal/logger"
	"github.com/norinorin/discord-slash-command/pkg/slash"
)

var (
	// Version is set via -ldflags.
	Version = "dev"
	// Commit is set via -ldflags.
	Commit = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slashbot",
		Short: "Discord bot serving slash commands",
		Long: `slashbot registers its slash commands with Discord and answers them.

Configuration is read from the environment and an optional .env file.
DISCORD_TOKEN is required for every command that talks to Discord.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("debug", false, "log everything to stdout, ignoring LOG_* settings")
	root.AddCommand(newRunCmd(), newSyncCmd(), newListCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "slashbot %s (commit: %s)\n", Version, Commit)
		},
	}
}

// app is the composition root shared by the subcommands.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *slash.Registry
	engine   *slash.Engine
	bot      *discord.Bot
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cmd, cfg.Log)
	if err != nil {
		return nil, err
	}

	reg := slash.NewRegistry()
	engine := slash.NewEngine(reg, slash.WithLogging(log))
	engine.On(slash.LogErrors(log))

	bot, err := discord.New(cfg, reg, engine, log)
	if err != nil {
		return nil, err
	}
	if err := registerCogs(reg, bot); err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, registry: reg, engine: engine, bot: bot}, nil
}

func newLogger(cmd *cobra.Command, cfg config.LogConfig) (*zap.Logger, error) {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return logger.Development(), nil
	}
	return logger.New(cfg)
}

// registerCogs adds every cog the bot ships with. members may be nil when the
// commands are only listed.
func registerCogs(reg *slash.Registry, members rate.MemberSource) error {
	cog, err := rate.New(members, nil)
	if err != nil {
		return fmt.Errorf("build rate cog: %w", err)
	}
	return reg.AddCog(cog)
}
