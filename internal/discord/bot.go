package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/norinorin/discord-slash-command/internal/config"
	"github.com/norinorin/discord-slash-command/pkg/slash"
)

// Bot connects a registry and an engine to a Discord session.
type Bot struct {
	cfg       *config.Config
	dg        *discordgo.Session
	registry  *slash.Registry
	engine    *slash.Engine
	syncer    *Syncer
	responder *Responder
	events    systemEventBus
	log       *zap.Logger

	// syncMu serializes the ready-time sync with SIGHUP resyncs; both write
	// command ids.
	syncMu sync.Mutex
	ctx    context.Context
}

// New creates the session; nothing is opened until Run.
func New(cfg *config.Config, reg *slash.Registry, engine *slash.Engine, log *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	return &Bot{
		cfg:       cfg,
		dg:        dg,
		registry:  reg,
		engine:    engine,
		syncer:    NewSyncer(NewRESTClient(dg), reg, SyncOptions{RPS: cfg.RegisterRPS, MaxAttempts: cfg.RegisterMaxAttempts, Logger: log}),
		responder: NewResponder(dg, cfg.AllowedMentions()),
		events:    newSystemEventBus(),
		log:       log,
		ctx:       context.Background(),
	}, nil
}

func (b *Bot) Syncer() *Syncer { return b.syncer }

// Run opens the gateway and dispatches interactions until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onEvent)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	for {
		select {
		case evt := <-b.events:
			if evt.Type == SystemEventResync {
				if err := b.Sync(ctx, evt.Mode, evt.GuildID); err != nil {
					b.log.Error("resync failed", zap.String("guild", evt.GuildID), zap.Error(err))
				}
			}
		case <-ctx.Done():
			b.log.Info("shutdown signal received, closing session")
			return nil
		}
	}
}

// RequestResync queues a sync for the running bot. It reports false when the
// queue is full.
func (b *Bot) RequestResync(guildID, mode string) bool {
	return b.events.publish(SystemEvent{Type: SystemEventResync, GuildID: guildID, Mode: mode})
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	appID := r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}
	b.registry.SetApplicationID(appID)
	b.log.Info("discord bot is ready",
		zap.String("user", r.User.Username),
		zap.String("application", appID),
		zap.Int("commands", b.registry.Len()))

	if err := b.Sync(b.ctx, b.cfg.SyncMode, b.cfg.GuildID); err != nil {
		b.log.Error("slash command sync failed", zap.Error(err))
	}
}

// ResolveApplicationID asks Discord for the application when no gateway
// session has reported it.
func (b *Bot) ResolveApplicationID(ctx context.Context) error {
	if b.registry.ApplicationID() != "" {
		return nil
	}
	app, err := b.dg.Application("@me", discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch application: %w", err)
	}
	b.registry.SetApplicationID(app.ID)
	return nil
}

// Sync applies a sync mode (config.SyncDiff, SyncBulk or SyncOff). Calls
// run one at a time.
func (b *Bot) Sync(ctx context.Context, mode, guildID string) error {
	b.syncMu.Lock()
	defer b.syncMu.Unlock()

	switch mode {
	case config.SyncOff:
		b.log.Info("slash command sync skipped")
		return nil
	case config.SyncBulk:
		return b.syncer.BulkOverwrite(ctx, guildID)
	case config.SyncDiff, "":
		report, err := b.syncer.Diff(ctx, guildID)
		b.log.Info("slash commands synced",
			zap.String("guild", guildID),
			zap.Strings("created", report.Created),
			zap.Strings("updated", report.Updated),
			zap.Strings("deleted", report.Deleted),
			zap.Int("unchanged", len(report.Unchanged)))
		return err
	default:
		return fmt.Errorf("%w: unknown sync mode %q", slash.ErrConfiguration, mode)
	}
}

// onEvent receives every raw gateway dispatch and forwards application
// command interactions to the engine.
func (b *Bot) onEvent(_ *discordgo.Session, e *discordgo.Event) {
	b.handleEvent(b.ctx, e)
}

func (b *Bot) handleEvent(ctx context.Context, e *discordgo.Event) *slash.Invocation {
	in, err := slash.DecodeGatewayEvent(e)
	if err != nil {
		b.log.Warn("undecodable interaction", zap.Error(err))
		return nil
	}
	if in == nil {
		return nil
	}
	inv := b.engine.Dispatch(ctx, in, b.responder)
	if inv == nil {
		b.log.Debug("interaction for unknown slash command dropped", zap.String("command", in.CommandName))
	}
	return inv
}

// GuildMemberIDs lists member ids of a guild from the state cache, falling
// back to the REST API for guilds the cache does not hold.
func (b *Bot) GuildMemberIDs(ctx context.Context, guildID string) ([]string, error) {
	var members []*discordgo.Member
	g, err := b.dg.State.Guild(guildID)
	switch {
	case err == nil && len(g.Members) > 0:
		members = g.Members
	case err == nil || errors.Is(err, discordgo.ErrStateNotFound):
		members, err = b.dg.GuildMembers(guildID, "", 1000, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list guild members: %w", err)
		}
	default:
		return nil, err
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m.User != nil {
			ids = append(ids, m.User.ID)
		}
	}
	return ids, nil
}
