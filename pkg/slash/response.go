package slash

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Responder delivers responses for an interaction. The discord adapter
// implements it over a session; tests use a recorder.
type Responder interface {
	// Callback sends the initial response (POST /interactions/{id}/{token}/callback).
	Callback(ctx context.Context, in *Interaction, resp *discordgo.InteractionResponse) error
	// Followup sends any later message (POST /webhooks/{app}/{token}).
	Followup(ctx context.Context, in *Interaction, params *discordgo.WebhookParams) error
}

// Message is a response. Embed and Embeds, and File and Files, are mutually
// exclusive. Type only applies to the initial response and defaults to a
// channel message with source.
type Message struct {
	Content         string
	Embed           *discordgo.MessageEmbed
	Embeds          []*discordgo.MessageEmbed
	File            *discordgo.File
	Files           []*discordgo.File
	AllowedMentions *discordgo.MessageAllowedMentions
	TTS             bool
	Ephemeral       bool
	Type            discordgo.InteractionResponseType
}

// Send answers the interaction. The first call uses the interaction callback,
// every later call becomes a follow-up message. Attachments are sent as a
// multipart form with a payload_json part.
func (inv *Invocation) Send(ctx context.Context, msg *Message) error {
	if msg.Embed != nil && len(msg.Embeds) > 0 {
		return fmt.Errorf("%w: both embed and embeds are set", ErrProtocol)
	}
	if msg.File != nil && len(msg.Files) > 0 {
		return fmt.Errorf("%w: both file and files are set", ErrProtocol)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	embeds := msg.Embeds
	if msg.Embed != nil {
		embeds = []*discordgo.MessageEmbed{msg.Embed}
	}
	files := msg.Files
	if msg.File != nil {
		files = []*discordgo.File{msg.File}
	}
	var flags discordgo.MessageFlags
	if msg.Ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	inv.sendMu.Lock()
	defer inv.sendMu.Unlock()

	if inv.Responded() {
		return inv.responder.Followup(ctx, inv.Interaction, &discordgo.WebhookParams{
			Content:         msg.Content,
			Embeds:          embeds,
			Files:           files,
			AllowedMentions: msg.AllowedMentions,
			TTS:             msg.TTS,
			Flags:           flags,
		})
	}

	typ := msg.Type
	if typ == 0 {
		typ = discordgo.InteractionResponseChannelMessageWithSource
	}
	err := inv.responder.Callback(ctx, inv.Interaction, &discordgo.InteractionResponse{
		Type: typ,
		Data: &discordgo.InteractionResponseData{
			Content:         msg.Content,
			Embeds:          embeds,
			Files:           files,
			AllowedMentions: msg.AllowedMentions,
			TTS:             msg.TTS,
			Flags:           flags,
		},
	})
	if err != nil {
		return err
	}
	inv.mu.Lock()
	inv.responded = true
	inv.mu.Unlock()
	return nil
}

// Reply sends a plain text response.
func (inv *Invocation) Reply(ctx context.Context, content string) error {
	return inv.Send(ctx, &Message{Content: content})
}

// ReplyEphemeral sends a text response only the invoking user can see.
func (inv *Invocation) ReplyEphemeral(ctx context.Context, content string) error {
	return inv.Send(ctx, &Message{Content: content, Ephemeral: true})
}

// Acknowledge defers the response; the handler answers later with Send,
// which then goes out as a follow-up.
func (inv *Invocation) Acknowledge(ctx context.Context, ephemeral bool) error {
	if inv.Responded() {
		return fmt.Errorf("%w: interaction already answered", ErrProtocol)
	}
	return inv.Send(ctx, &Message{
		Type:      discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Ephemeral: ephemeral,
	})
}
