package discord

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/norinorin/discord-slash-command/internal/config"
	"github.com/norinorin/discord-slash-command/pkg/slash"
)

func interactionEvent(t *testing.T, name string) *discordgo.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":             "10",
		"application_id": testAppID,
		"type":           int(discordgo.InteractionApplicationCommand),
		"token":          "tok",
		"guild_id":       "20",
		"channel_id":     "30",
		"member":         map[string]any{"user": map[string]any{"id": "40"}},
		"data":           map[string]any{"id": "50", "name": name, "type": 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	return &discordgo.Event{Type: "INTERACTION_CREATE", RawData: raw}
}

func testBot(t *testing.T, reg *slash.Registry, api interactionAPI) *Bot {
	t.Helper()
	return &Bot{
		registry:  reg,
		engine:    slash.NewEngine(reg),
		responder: NewResponder(api, nil),
		events:    newSystemEventBus(),
		log:       zap.NewNop(),
		ctx:       context.Background(),
	}
}

func TestHandleEventDispatches(t *testing.T) {
	ping := slash.MustCommand(slash.Spec{
		Name:        "ping",
		Description: "Pong",
		Handler: slash.HandlerFunc(func(ctx context.Context, inv *slash.Invocation) error {
			return inv.Reply(ctx, "pong")
		}),
	})
	reg := testRegistry(t, ping)
	api := &fakeInteractionAPI{}
	b := testBot(t, reg, api)

	inv := b.handleEvent(context.Background(), interactionEvent(t, "ping"))
	if inv == nil {
		t.Fatal("interaction was not dispatched")
	}
	if inv.State() != slash.StateCompleted {
		t.Errorf("state = %s, want completed", inv.State())
	}
	if inv.AuthorID() != "40" || inv.GuildID() != "20" {
		t.Errorf("author/guild = %q/%q", inv.AuthorID(), inv.GuildID())
	}
	if len(api.responses) != 1 || api.responses[0].Data.Content != "pong" {
		t.Fatalf("responses = %+v", api.responses)
	}
}

func TestHandleEventIgnoresOtherTraffic(t *testing.T) {
	reg := testRegistry(t)
	api := &fakeInteractionAPI{}
	b := testBot(t, reg, api)

	if inv := b.handleEvent(context.Background(), interactionEvent(t, "unknown")); inv != nil {
		t.Error("unknown command was dispatched")
	}
	if inv := b.handleEvent(context.Background(), &discordgo.Event{Type: "MESSAGE_CREATE", RawData: []byte(`{}`)}); inv != nil {
		t.Error("non-interaction event was dispatched")
	}
	if len(api.responses) != 0 {
		t.Errorf("unexpected responses: %+v", api.responses)
	}
}

func TestRequestResyncDropsWhenFull(t *testing.T) {
	b := testBot(t, slash.NewRegistry(), &fakeInteractionAPI{})
	for i := 0; i < cap(b.events); i++ {
		if !b.RequestResync("", "diff") {
			t.Fatalf("publish %d rejected", i)
		}
	}
	if b.RequestResync("", "diff") {
		t.Error("publish on a full bus succeeded")
	}
}

// overlapREST records the highest number of requests in flight at once.
type overlapREST struct {
	mu       sync.Mutex
	inflight int
	peak     int
}

func (o *overlapREST) Request(_ context.Context, _, _ string, _ any) ([]byte, error) {
	o.mu.Lock()
	o.inflight++
	o.peak = max(o.peak, o.inflight)
	o.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	o.mu.Lock()
	o.inflight--
	o.mu.Unlock()
	return nil, nil
}

func TestSyncRunsOneAtATime(t *testing.T) {
	reg := testRegistry(t, pingCommand("Pong"))
	rest := &overlapREST{}
	b := testBot(t, reg, &fakeInteractionAPI{})
	b.syncer = testSyncer(rest, reg)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Sync(context.Background(), config.SyncBulk, ""); err != nil {
				t.Errorf("Sync: %v", err)
			}
		}()
	}
	wg.Wait()

	if rest.peak != 1 {
		t.Errorf("%d syncs overlapped", rest.peak)
	}
}
