package slash

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

func noop(context.Context, *Invocation) error { return nil }

func ping(ctx context.Context, inv *Invocation) error { return inv.Reply(ctx, "pong") }

type testCog struct {
	name     string
	commands []*Command
}

func (c *testCog) Name() string         { return c.name }
func (c *testCog) Commands() []*Command { return c.commands }

func (c *testCog) Hello(ctx context.Context, inv *Invocation) error {
	return inv.Reply(ctx, "hello from "+c.name)
}

// recorder is a Responder that keeps everything it is asked to send.
type recorder struct {
	mu        sync.Mutex
	callbacks []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
	fail      error
}

func (r *recorder) Callback(_ context.Context, _ *Interaction, resp *discordgo.InteractionResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.callbacks = append(r.callbacks, resp)
	return nil
}

func (r *recorder) Followup(_ context.Context, _ *Interaction, p *discordgo.WebhookParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.followups = append(r.followups, p)
	return nil
}

var errBoom = errors.New("boom")

func mustCommand(t interface{ Fatalf(string, ...any) }, spec Spec) *Command {
	c, err := NewCommand(spec)
	if err != nil {
		t.Fatalf("NewCommand(%q): %v", spec.Name, err)
	}
	return c
}
