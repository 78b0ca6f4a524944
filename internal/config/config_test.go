package config

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"DISCORD_TOKEN": "abc"})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.SyncMode != SyncDiff {
		t.Errorf("SyncMode = %q, want %q", cfg.SyncMode, SyncDiff)
	}
	if cfg.RegisterRPS != 5 || cfg.RegisterMaxAttempts != 5 {
		t.Errorf("register limits = %v/%d, want 5/5", cfg.RegisterRPS, cfg.RegisterMaxAttempts)
	}
	if cfg.Log.Level != "info" || cfg.Log.Output != "stdout" {
		t.Errorf("log config = %+v", cfg.Log)
	}
}

func TestLoadFromRequiresToken(t *testing.T) {
	if _, err := LoadFrom(map[string]string{}); err == nil {
		t.Fatal("expected an error without DISCORD_TOKEN")
	}
	if _, err := LoadFrom(map[string]string{"DISCORD_TOKEN": ""}); err == nil {
		t.Fatal("expected an error for an empty DISCORD_TOKEN")
	}
}

func TestLoadFromRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"sync mode": {"DISCORD_TOKEN": "x", "SYNC_MODE": "sometimes"},
		"rps":       {"DISCORD_TOKEN": "x", "REGISTER_RPS": "0"},
		"mentions":  {"DISCORD_TOKEN": "x", "ALLOWED_MENTIONS": "users,here"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFrom(vars); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestAllowedMentions(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DISCORD_TOKEN":    "x",
		"DISCORD_GUILD_ID": "42",
		"ALLOWED_MENTIONS": "users, roles",
		"LOG_LEVEL":        "debug",
	})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.GuildID != "42" || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	want := []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers, discordgo.AllowedMentionTypeRoles}
	if diff := cmp.Diff(want, cfg.AllowedMentions().Parse); diff != "" {
		t.Errorf("AllowedMentions().Parse mismatch (-want +got):\n%s", diff)
	}
}
