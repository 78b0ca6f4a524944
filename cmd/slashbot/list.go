package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/norinorin/discord-slash-command/pkg/slash"
)

func newListCmd() *cobra.Command {
	var (
		remote  bool
		guildID string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the slash command tree",
		Long: `List the slash command tree declared by the bot.

With --remote the commands Discord currently has registered are listed
instead, which needs DISCORD_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !remote {
				reg := slash.NewRegistry()
				if err := registerCogs(reg, nil); err != nil {
					return err
				}
				printTree(out, reg.All())
				return nil
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()
			if !cmd.Flags().Changed("guild") {
				guildID = a.cfg.GuildID
			}
			ctx := cmd.Context()
			if err := a.bot.ResolveApplicationID(ctx); err != nil {
				return err
			}
			cmds, err := a.bot.Syncer().Remote(ctx, guildID)
			if err != nil {
				return err
			}
			printTree(out, cmds)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "list the commands registered on Discord")
	cmd.Flags().StringVar(&guildID, "guild", "", "guild to list with --remote (default DISCORD_GUILD_ID)")
	return cmd
}

func printTree(w io.Writer, cmds []*slash.Command) {
	for _, c := range cmds {
		c.Walk(func(n *slash.Command, depth int) {
			fmt.Fprintf(w, "%s/%s  %s\n", strings.Repeat("  ", depth), n.Name, n.Description)
			for _, o := range n.Declared() {
				fmt.Fprintf(w, "%s  %s\n", strings.Repeat("  ", depth+1), formatOption(o))
			}
		})
	}
}

func formatOption(o *slash.Option) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", o.Name, strings.ToLower(o.Type.String()))
	if o.Required {
		b.WriteString(" (required)")
	}
	if len(o.Choices) > 0 {
		names := make([]string, 0, len(o.Choices))
		for _, c := range o.Choices {
			names = append(names, c.Name)
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(names, "|"))
	}
	return b.String()
}
