package slash

import (
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const gatewayInteractionCreate = "INTERACTION_CREATE"

// Interaction is the part of an application command interaction the engine
// needs. It is read-only once decoded.
type Interaction struct {
	ID            string
	ApplicationID string
	Type          discordgo.InteractionType
	Token         string
	Version       int

	CommandID   string
	CommandName string
	Options     []*InteractionOption

	AuthorID  string
	GuildID   string
	ChannelID string
}

// InteractionOption is one entry of the option path sent by Discord. Options
// selecting a sub-command or group carry the next level in Options.
type InteractionOption struct {
	Name    string
	Type    OptionType
	Value   any
	Options []*InteractionOption
}

// InteractionFromDiscord converts a chat input interaction. It returns false
// for pings, components, context menus and anything else.
func InteractionFromDiscord(i *discordgo.Interaction) (*Interaction, bool) {
	if i == nil || i.Type != discordgo.InteractionApplicationCommand {
		return nil, false
	}
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return nil, false
	}
	if data.CommandType != 0 && data.CommandType != discordgo.ChatApplicationCommand {
		return nil, false
	}

	in := &Interaction{
		ID:            i.ID,
		ApplicationID: i.AppID,
		Type:          i.Type,
		Token:         i.Token,
		Version:       i.Version,
		CommandID:     data.ID,
		CommandName:   data.Name,
		Options:       optionsFromDiscord(data.Options),
		GuildID:       i.GuildID,
		ChannelID:     i.ChannelID,
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		in.AuthorID = i.Member.User.ID
	case i.User != nil:
		in.AuthorID = i.User.ID
	}
	return in, true
}

func optionsFromDiscord(opts []*discordgo.ApplicationCommandInteractionDataOption) []*InteractionOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]*InteractionOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, &InteractionOption{
			Name:    o.Name,
			Type:    OptionType(o.Type),
			Value:   o.Value,
			Options: optionsFromDiscord(o.Options),
		})
	}
	return out
}

// DecodeGatewayEvent extracts an application command interaction from a raw
// gateway dispatch. It returns nil without error for every other event.
func DecodeGatewayEvent(ev *discordgo.Event) (*Interaction, error) {
	if ev == nil || ev.Type != gatewayInteractionCreate {
		return nil, nil
	}
	var i discordgo.Interaction
	if err := json.Unmarshal(ev.RawData, &i); err != nil {
		return nil, fmt.Errorf("%w: decode interaction: %v", ErrProtocol, err)
	}
	in, ok := InteractionFromDiscord(&i)
	if !ok {
		return nil, nil
	}
	return in, nil
}

// DecodeGatewayPayload is DecodeGatewayEvent for an undecoded frame.
func DecodeGatewayPayload(raw []byte) (*Interaction, error) {
	var ev discordgo.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("%w: decode gateway frame: %v", ErrProtocol, err)
	}
	return DecodeGatewayEvent(&ev)
}
