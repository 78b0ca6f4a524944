package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Sync modes applied when the gateway reports READY.
const (
	SyncDiff = "diff"
	SyncBulk = "bulk"
	SyncOff  = "off"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`
	// GuildID scopes registration to one guild; empty means global commands.
	GuildID  string `env:"DISCORD_GUILD_ID"`
	SyncMode string `env:"SYNC_MODE" envDefault:"diff"`

	// Mentions parsed by default when a response sets none: users, roles, everyone.
	Mentions []string `env:"ALLOWED_MENTIONS" envSeparator:"," envDefault:"users"`

	RegisterRPS         float64 `env:"REGISTER_RPS" envDefault:"5"`
	RegisterMaxAttempts int     `env:"REGISTER_MAX_ATTEMPTS" envDefault:"5"`

	Log LogConfig `envPrefix:"LOG_"`
}

type LogConfig struct {
	Level        string `env:"LEVEL" envDefault:"info"`
	Format       string `env:"FORMAT" envDefault:"console"`
	Output       string `env:"OUTPUT" envDefault:"stdout"`
	FilePath     string `env:"FILE" envDefault:"logs/slashbot.log"`
	MaxSize      int    `env:"MAX_SIZE" envDefault:"100"`
	MaxBackups   int    `env:"MAX_BACKUPS" envDefault:"5"`
	MaxAge       int    `env:"MAX_AGE" envDefault:"30"`
	Compress     bool   `env:"COMPRESS" envDefault:"true"`
	EnableColors bool   `env:"COLORS" envDefault:"true"`
}

// Load reads .env when present and parses the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, cfg.validate()
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.SyncMode {
	case SyncDiff, SyncBulk, SyncOff:
	default:
		return fmt.Errorf("SYNC_MODE must be one of diff, bulk, off; got %q", c.SyncMode)
	}
	if c.RegisterRPS <= 0 {
		return fmt.Errorf("REGISTER_RPS must be positive; got %v", c.RegisterRPS)
	}
	for _, m := range c.Mentions {
		switch strings.TrimSpace(m) {
		case "", "users", "roles", "everyone":
		default:
			return fmt.Errorf("ALLOWED_MENTIONS: unknown mention type %q", m)
		}
	}
	return nil
}

// AllowedMentions is the default mention policy for responses.
func (c *Config) AllowedMentions() *discordgo.MessageAllowedMentions {
	am := &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
	for _, m := range c.Mentions {
		switch strings.TrimSpace(m) {
		case "users":
			am.Parse = append(am.Parse, discordgo.AllowedMentionTypeUsers)
		case "roles":
			am.Parse = append(am.Parse, discordgo.AllowedMentionTypeRoles)
		case "everyone":
			am.Parse = append(am.Parse, discordgo.AllowedMentionTypeEveryone)
		}
	}
	return am
}
