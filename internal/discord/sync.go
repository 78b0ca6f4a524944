package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/norinorin/discord-slash-command/pkg/retrylimit"
	"github.com/norinorin/discord-slash-command/pkg/slash"
	"github.com/norinorin/discord-slash-command/pkg/util"
)

// Syncer keeps the commands Discord knows about in line with a registry.
type Syncer struct {
	rest     RESTClient
	registry *slash.Registry
	limiter  *retrylimit.AdaptiveLimiter
	retry    retrylimit.RetryConfig
	workers  int
	log      *zap.Logger
}

type SyncOptions struct {
	// RPS is the initial request rate; the limiter adapts between 1 and 4x RPS.
	RPS         float64
	MaxAttempts int
	// Workers bounds concurrent calls during a Diff.
	Workers int
	Logger  *zap.Logger
}

func NewSyncer(rest RESTClient, reg *slash.Registry, opts SyncOptions) *Syncer {
	if opts.RPS <= 0 {
		opts.RPS = 5
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	retry := retrylimit.DefaultRetryConfig()
	if opts.MaxAttempts > 0 {
		retry.MaxAttempts = opts.MaxAttempts
	}
	retry.Logger = log

	rps := rate.Limit(opts.RPS)
	return &Syncer{
		rest:     rest,
		registry: reg,
		limiter:  retrylimit.NewAdaptiveLimiter(rps, 1, 4*rps, 1, 0.5),
		retry:    retry,
		workers:  opts.Workers,
		log:      log,
	}
}

// SyncReport lists what a Diff did, by command name.
type SyncReport struct {
	Unchanged []string
	Created   []string
	Updated   []string
	Deleted   []string
}

func (r SyncReport) Changed() bool {
	return len(r.Created)+len(r.Updated)+len(r.Deleted) > 0
}

func (s *Syncer) call(ctx context.Context, method, url string, body, out any) error {
	return retrylimit.WithRetryConfig(ctx, func() error {
		data, err := s.rest.Request(ctx, method, url, body)
		if err != nil {
			return classify(err)
		}
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return &retrylimit.FatalError{Err: fmt.Errorf("%w: decode %s %s: %v", slash.ErrProtocol, method, url, err)}
		}
		return nil
	}, s.limiter, s.retry)
}

func (s *Syncer) applicationID() (string, error) {
	id := s.registry.ApplicationID()
	if id == "" {
		return "", fmt.Errorf("%w: application id is not known yet", slash.ErrConfiguration)
	}
	return id, nil
}

// Upsert creates cmd remotely, or updates it when it already has an id, and
// records the id Discord returns.
func (s *Syncer) Upsert(ctx context.Context, cmd *slash.Command, guildID string) error {
	appID, err := s.applicationID()
	if err != nil {
		return err
	}
	route, err := cmd.Route(appID, guildID)
	if err != nil {
		return err
	}
	wire, err := cmd.ToWire()
	if err != nil {
		return err
	}

	var got discordgo.ApplicationCommand
	if err := s.call(ctx, route.Method, route.URL, wire, &got); err != nil {
		return fmt.Errorf("upsert /%s: %w", cmd.Name, err)
	}
	if got.ID != "" {
		cmd.ID = got.ID
	}
	s.log.Info("slash command registered",
		zap.String("command", cmd.Name),
		zap.String("id", cmd.ID),
		zap.String("method", route.Method),
		zap.String("guild", guildID))
	return nil
}

// BulkOverwrite replaces the whole remote set with the registry's commands.
func (s *Syncer) BulkOverwrite(ctx context.Context, guildID string) error {
	appID, err := s.applicationID()
	if err != nil {
		return err
	}
	wires, err := s.registry.Wires()
	if err != nil {
		return err
	}

	var got []*discordgo.ApplicationCommand
	if err := s.call(ctx, http.MethodPut, commandsURL(appID, guildID), wires, &got); err != nil {
		return fmt.Errorf("bulk overwrite: %w", err)
	}
	for _, w := range got {
		if cmd, ok := s.registry.Get(w.Name); ok {
			cmd.ID = w.ID
		}
	}
	s.log.Info("slash commands overwritten", zap.Int("count", len(wires)), zap.String("guild", guildID))
	return nil
}

// Delete removes a registered command from Discord and from the registry. The
// command must have been synced so that its id is known.
func (s *Syncer) Delete(ctx context.Context, name, guildID string) (*slash.Command, error) {
	cmd, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: slash command %q", slash.ErrNotFound, name)
	}
	if cmd.ID == "" {
		return nil, fmt.Errorf("%w: slash command %q has no id, sync it first", slash.ErrNotFound, name)
	}
	appID, err := s.applicationID()
	if err != nil {
		return nil, err
	}
	if err := s.call(ctx, http.MethodDelete, commandURL(appID, guildID, cmd.ID), nil, nil); err != nil {
		return nil, fmt.Errorf("delete /%s: %w", name, err)
	}
	s.registry.Remove(name)
	s.log.Info("slash command deleted", zap.String("command", name), zap.String("guild", guildID))
	return cmd, nil
}

// Remote fetches the commands Discord has registered.
func (s *Syncer) Remote(ctx context.Context, guildID string) ([]*slash.Command, error) {
	appID, err := s.applicationID()
	if err != nil {
		return nil, err
	}
	var wires []*discordgo.ApplicationCommand
	if err := s.call(ctx, http.MethodGet, commandsURL(appID, guildID), nil, &wires); err != nil {
		return nil, fmt.Errorf("fetch commands: %w", err)
	}
	out := make([]*slash.Command, 0, len(wires))
	for _, w := range wires {
		out = append(out, slash.CommandFromWire(w))
	}
	return out, nil
}

// Diff compares the registry with the remote snapshot. Structurally equal
// commands only adopt the remote id; others are created or updated and remote
// commands missing locally are deleted. Failures of single commands are
// collected and do not stop the rest of the sync.
func (s *Syncer) Diff(ctx context.Context, guildID string) (SyncReport, error) {
	var report SyncReport

	remote, err := s.Remote(ctx, guildID)
	if err != nil {
		return report, err
	}
	byName := make(map[string]*slash.Command, len(remote))
	for _, rc := range remote {
		byName[rc.Name] = rc
	}
	appID, err := s.applicationID()
	if err != nil {
		return report, err
	}

	var (
		mu      sync.Mutex
		pending []*slash.Command
	)
	for _, local := range s.registry.All() {
		rc, exists := byName[local.Name]
		delete(byName, local.Name)
		if !exists {
			local.ID = ""
			pending = append(pending, local)
			continue
		}
		local.ID = rc.ID
		if local.Equal(rc) {
			report.Unchanged = append(report.Unchanged, local.Name)
			continue
		}
		pending = append(pending, local)
	}

	upsertErr := util.Parallel(ctx, pending, s.workers, func(ctx context.Context, cmd *slash.Command) error {
		updating := cmd.ID != ""
		if err := s.Upsert(ctx, cmd, guildID); err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		if updating {
			report.Updated = append(report.Updated, cmd.Name)
		} else {
			report.Created = append(report.Created, cmd.Name)
		}
		return nil
	})

	obsolete := make([]*slash.Command, 0, len(byName))
	for _, rc := range byName {
		obsolete = append(obsolete, rc)
	}
	deleteErr := util.Parallel(ctx, obsolete, s.workers, func(ctx context.Context, rc *slash.Command) error {
		if err := s.call(ctx, http.MethodDelete, commandURL(appID, guildID, rc.ID), nil, nil); err != nil {
			return fmt.Errorf("delete obsolete /%s: %w", rc.Name, err)
		}
		s.log.Info("obsolete slash command deleted", zap.String("command", rc.Name), zap.String("guild", guildID))
		mu.Lock()
		report.Deleted = append(report.Deleted, rc.Name)
		mu.Unlock()
		return nil
	})

	sort.Strings(report.Created)
	sort.Strings(report.Updated)
	sort.Strings(report.Deleted)
	return report, errors.Join(upsertErr, deleteErr)
}

func commandsURL(appID, guildID string) string {
	if guildID != "" {
		return discordgo.EndpointApplicationGuildCommands(appID, guildID)
	}
	return discordgo.EndpointApplicationGlobalCommands(appID)
}

func commandURL(appID, guildID, id string) string {
	if guildID != "" {
		return discordgo.EndpointApplicationGuildCommand(appID, guildID, id)
	}
	return discordgo.EndpointApplicationGlobalCommand(appID, id)
}
