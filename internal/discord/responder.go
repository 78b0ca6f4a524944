package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/norinorin/discord-slash-command/pkg/slash"
)

// interactionAPI is the part of *discordgo.Session used to answer interactions.
type interactionAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Responder implements slash.Responder over a session. Messages that set no
// allowed mentions get the bot-wide default.
type Responder struct {
	api             interactionAPI
	allowedMentions *discordgo.MessageAllowedMentions
}

var _ slash.Responder = (*Responder)(nil)

func NewResponder(api interactionAPI, allowedMentions *discordgo.MessageAllowedMentions) *Responder {
	return &Responder{api: api, allowedMentions: allowedMentions}
}

func (r *Responder) Callback(ctx context.Context, in *slash.Interaction, resp *discordgo.InteractionResponse) error {
	if resp.Data != nil && resp.Data.AllowedMentions == nil {
		resp.Data.AllowedMentions = r.allowedMentions
	}
	return r.api.InteractionRespond(toDiscord(in), resp, discordgo.WithContext(ctx))
}

func (r *Responder) Followup(ctx context.Context, in *slash.Interaction, params *discordgo.WebhookParams) error {
	if params.AllowedMentions == nil {
		params.AllowedMentions = r.allowedMentions
	}
	_, err := r.api.FollowupMessageCreate(toDiscord(in), true, params, discordgo.WithContext(ctx))
	return err
}

func toDiscord(in *slash.Interaction) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        in.ID,
		AppID:     in.ApplicationID,
		Type:      in.Type,
		Token:     in.Token,
		Version:   in.Version,
		GuildID:   in.GuildID,
		ChannelID: in.ChannelID,
	}
}
