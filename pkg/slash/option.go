package slash

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cast"
)

// OptionType mirrors Discord's application command option types.
type OptionType uint8

const (
	OptionSubCommand      OptionType = 1
	OptionSubCommandGroup OptionType = 2
	OptionString          OptionType = 3
	OptionInteger         OptionType = 4
	OptionBoolean         OptionType = 5
	OptionUser            OptionType = 6
	OptionChannel         OptionType = 7
	OptionRole            OptionType = 8
)

var optionTypeNames = map[OptionType]string{
	OptionSubCommand:      "SUB_COMMAND",
	OptionSubCommandGroup: "SUB_COMMAND_GROUP",
	OptionString:          "STRING",
	OptionInteger:         "INTEGER",
	OptionBoolean:         "BOOLEAN",
	OptionUser:            "USER",
	OptionChannel:         "CHANNEL",
	OptionRole:            "ROLE",
}

func (t OptionType) String() string {
	if name, ok := optionTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsIdentifier reports whether values of this type are snowflakes.
func (t OptionType) IsIdentifier() bool {
	return t == OptionUser || t == OptionChannel || t == OptionRole
}

// IsCommand reports whether the option selects a child command.
func (t OptionType) IsCommand() bool {
	return t == OptionSubCommand || t == OptionSubCommandGroup
}

// ParseOptionType accepts the upper-case names as well as their lower-case and
// hyphenated forms ("sub-command", "user").
func ParseOptionType(s string) (OptionType, bool) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for t, name := range optionTypeNames {
		if name == key {
			return t, true
		}
	}
	return 0, false
}

// Choice is one predefined value of a scalar option.
type Choice struct {
	Name  string
	Value any
}

// Equal compares choices by name and value. Numbers are compared as float64
// since remote snapshots decode every JSON number that way.
func (c *Choice) Equal(o *Choice) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Name == o.Name && valuesEqual(c.Value, o.Value)
}

func valuesEqual(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		return cast.ToFloat64(a) == cast.ToFloat64(b)
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	}
	return false
}

// Option describes one parameter of a command, or a sub-command reference when
// Type is OptionSubCommand or OptionSubCommandGroup. Scalar options must not
// carry sub-options; this is not checked.
type Option struct {
	Name        string
	Description string
	Required    bool
	Type        OptionType
	Choices     []*Choice
	Options     []*Option
}

func newOption(t OptionType, name, description string, required bool, choices []*Choice) *Option {
	return &Option{
		Name:        name,
		Description: description,
		Required:    required,
		Type:        t,
		Choices:     choices,
	}
}

func StringOption(name, description string, required bool, choices ...*Choice) *Option {
	return newOption(OptionString, name, description, required, choices)
}

func IntegerOption(name, description string, required bool, choices ...*Choice) *Option {
	return newOption(OptionInteger, name, description, required, choices)
}

func BooleanOption(name, description string, required bool) *Option {
	return newOption(OptionBoolean, name, description, required, nil)
}

func UserOption(name, description string, required bool) *Option {
	return newOption(OptionUser, name, description, required, nil)
}

func ChannelOption(name, description string, required bool) *Option {
	return newOption(OptionChannel, name, description, required, nil)
}

func RoleOption(name, description string, required bool) *Option {
	return newOption(OptionRole, name, description, required, nil)
}

// Equal reports structural equality: name, required flag and, ignoring order,
// choices and sub-options. Type and description are not compared.
func (o *Option) Equal(other *Option) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.Name == other.Name &&
		o.Required == other.Required &&
		multisetEqual(o.Choices, other.Choices, (*Choice).Equal) &&
		multisetEqual(o.Options, other.Options, (*Option).Equal)
}

// ToWire renders the option in the shape Discord expects. Choices and
// sub-options are left nil when empty.
func (o *Option) ToWire() *discordgo.ApplicationCommandOption {
	w := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionType(o.Type),
		Name:        o.Name,
		Description: o.Description,
		Required:    o.Required,
	}
	for _, c := range o.Choices {
		w.Choices = append(w.Choices, &discordgo.ApplicationCommandOptionChoice{Name: c.Name, Value: c.Value})
	}
	for _, sub := range o.Options {
		w.Options = append(w.Options, sub.ToWire())
	}
	return w
}

// OptionFromWire is the inverse of ToWire.
func OptionFromWire(w *discordgo.ApplicationCommandOption) *Option {
	o := &Option{
		Name:        w.Name,
		Description: w.Description,
		Required:    w.Required,
		Type:        OptionType(w.Type),
	}
	for _, c := range w.Choices {
		o.Choices = append(o.Choices, &Choice{Name: c.Name, Value: c.Value})
	}
	for _, sub := range w.Options {
		o.Options = append(o.Options, OptionFromWire(sub))
	}
	return o
}
