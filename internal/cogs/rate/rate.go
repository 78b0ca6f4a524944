// Package rate is a small cog that shows off the command tree: a flat command,
// a command with sub-commands and a sub-command group.
package rate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/norinorin/discord-slash-command/pkg/slash"
)

const guildOnlyNotice = "This is a guild-only command"

// MemberSource lists the members of a guild.
type MemberSource interface {
	GuildMemberIDs(ctx context.Context, guildID string) ([]string, error)
}

type Cog struct {
	members  MemberSource
	intn     func(n int) int
	commands []*slash.Command
}

// New builds the cog. intn picks a number in [0, n); nil uses math/rand.
func New(members MemberSource, intn func(n int) int) (*Cog, error) {
	if intn == nil {
		intn = rand.Intn
	}
	c := &Cog{members: members, intn: intn}

	test, err := slash.NewCommand(slash.Spec{
		Description: "A Test!",
		Handler:     slash.HandlerFunc(c.Test),
	})
	if err != nil {
		return nil, err
	}

	rate, err := slash.NewCommand(slash.Spec{
		Name:        "rate",
		Description: "Rate things.",
		Handler:     slash.HandlerFunc(c.Rate),
	})
	if err != nil {
		return nil, err
	}
	if _, err := rate.AddSubcommand(slash.Spec{
		Description: "See how someone rates.",
		Handler:     slash.Bind(c.User),
	}); err != nil {
		return nil, err
	}
	if _, err := rate.AddSubcommand(slash.Spec{
		Name:        "random",
		Description: "See how a random member rates.",
		Handler:     slash.Apply(slash.HandlerFunc(c.Random), slash.WithGuildOnly(guildOnlyNotice)),
	}); err != nil {
		return nil, err
	}

	dice, err := rate.AddGroup(slash.Spec{Name: "dice", Description: "Let the dice decide."})
	if err != nil {
		return nil, err
	}
	if _, err := dice.AddSubcommand(slash.Spec{
		Description: "Roll some dice.",
		Handler:     slash.Bind(c.Roll),
	}); err != nil {
		return nil, err
	}

	c.commands = []*slash.Command{test, rate}
	return c, nil
}

func (c *Cog) Name() string               { return "rate" }
func (c *Cog) Commands() []*slash.Command { return c.commands }

func (c *Cog) score() int { return c.intn(101) }

func (c *Cog) Test(ctx context.Context, inv *slash.Invocation) error {
	return inv.Reply(ctx, "Tested!")
}

// Rate only exists as the parent of the sub-commands; Discord never invokes
// a command that has children.
func (c *Cog) Rate(ctx context.Context, inv *slash.Invocation) error {
	return inv.ReplyEphemeral(ctx, "Pick a sub-command.")
}

type userArgs struct {
	User *slash.UserID `slash:"user" description:"The user"`
}

func (c *Cog) User(ctx context.Context, inv *slash.Invocation, args userArgs) error {
	if args.User == nil {
		return inv.Reply(ctx, fmt.Sprintf("You're %d%% awesome!", c.score()))
	}
	return inv.Reply(ctx, fmt.Sprintf("<@%d> is %d%% awesome!", int64(*args.User), c.score()))
}

func (c *Cog) Random(ctx context.Context, inv *slash.Invocation) error {
	if c.members == nil {
		return errors.New("no member source configured")
	}
	ids, err := c.members.GuildMemberIDs(ctx, inv.GuildID())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return inv.ReplyEphemeral(ctx, "Nobody to rate here.")
	}
	id := ids[c.intn(len(ids))]
	return inv.Reply(ctx, fmt.Sprintf("<@%s> is %d%% awesome!", id, c.score()))
}

type rollArgs struct {
	Sides int64  `slash:"sides" description:"Die size" choices:"6,20,100" default:"6"`
	Count *int64 `slash:"count" description:"How many dice"`
}

func (c *Cog) Roll(ctx context.Context, inv *slash.Invocation, args rollArgs) error {
	count := int64(1)
	if args.Count != nil {
		count = *args.Count
	}
	if count < 1 || count > 10 {
		return inv.ReplyEphemeral(ctx, "You can roll between 1 and 10 dice.")
	}

	rolls := make([]string, 0, count)
	var total int64
	for i := int64(0); i < count; i++ {
		n := int64(c.intn(int(args.Sides))) + 1
		total += n
		rolls = append(rolls, strconv.FormatInt(n, 10))
	}
	return inv.Reply(ctx, fmt.Sprintf("d%d: %s (total %d)", args.Sides, strings.Join(rolls, ", "), total))
}
