package slash

import (
	"context"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Kind tells what role a Command plays in the tree.
type Kind uint8

const (
	KindCommand Kind = iota + 1
	KindSubCommand
	KindSubCommandGroup
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindSubCommand:
		return "sub-command"
	case KindSubCommandGroup:
		return "sub-command-group"
	}
	return "unknown"
}

// Command is a node of the command tree: a top-level command, a sub-command or
// a sub-command group. Top-level commands and groups own children; the tree is
// at most two levels deep below the root.
type Command struct {
	Name        string
	Description string

	// ID and ApplicationID are Discord snowflakes, set once the command is
	// registered remotely.
	ID            string
	ApplicationID string

	kind       Kind
	options    []*Option
	children   []*Command
	childIndex map[string]*Command
	handler    Handler
	defaults   map[string]any
	parent     *Command
	cog        string
}

func (c *Command) Kind() Kind       { return c.kind }
func (c *Command) Parent() *Command { return c.parent }
func (c *Command) Handler() Handler { return c.handler }
func (c *Command) Cog() string      { return c.cog }
func (c *Command) IsRoot() bool     { return c.parent == nil }

// Declared returns the options declared for this node's own handler.
func (c *Command) Declared() []*Option {
	return append([]*Option(nil), c.options...)
}

// Children returns the direct children in declaration order.
func (c *Command) Children() []*Command {
	return append([]*Command(nil), c.children...)
}

// Child looks up a direct child by name.
func (c *Command) Child(name string) (*Command, bool) {
	child, ok := c.childIndex[name]
	return child, ok
}

// Root returns the top-level command this node belongs to.
func (c *Command) Root() *Command {
	for c.parent != nil {
		c = c.parent
	}
	return c
}

// QualifiedName is the space separated path users type, e.g. "rate dice roll".
func (c *Command) QualifiedName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.QualifiedName() + " " + c.Name
}

// HasDefault reports whether the handler declared a default for the option.
func (c *Command) HasDefault(name string) bool {
	_, ok := c.defaults[name]
	return ok
}

// Options returns the declared options followed by one option per child, so a
// sub-command is both a lookup entry and an option on the wire.
func (c *Command) Options() []*Option {
	out := make([]*Option, 0, len(c.options)+len(c.children))
	out = append(out, c.options...)
	for _, child := range c.children {
		out = append(out, child.asOption())
	}
	return out
}

func (c *Command) asOption() *Option {
	t := OptionSubCommand
	if c.kind == KindSubCommandGroup {
		t = OptionSubCommandGroup
	}
	return &Option{
		Name:        c.Name,
		Description: c.Description,
		Type:        t,
		Options:     c.Options(),
	}
}

// Equal compares application id, name, description and, ignoring order, the
// option lists. Children are compared only through their option entries.
func (c *Command) Equal(other *Command) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.ApplicationID == other.ApplicationID &&
		c.Name == other.Name &&
		c.Description == other.Description &&
		multisetEqual(c.Options(), other.Options(), (*Option).Equal)
}

// ToWire renders a top-level command. The application id must be set.
func (c *Command) ToWire() (*discordgo.ApplicationCommand, error) {
	if c.ApplicationID == "" {
		return nil, configErr("command %q has no application id", c.Name)
	}
	if c.kind != KindCommand {
		return nil, configErr("%s %q cannot be registered on its own", c.kind, c.QualifiedName())
	}
	w := &discordgo.ApplicationCommand{
		ID:            c.ID,
		ApplicationID: c.ApplicationID,
		Type:          discordgo.ChatApplicationCommand,
		Name:          c.Name,
		Description:   c.Description,
	}
	for _, o := range c.Options() {
		w.Options = append(w.Options, o.ToWire())
	}
	return w, nil
}

// ToWireForBulk is ToWire without the remote id: a bulk overwrite replaces
// the whole set and matches commands by name.
func (c *Command) ToWireForBulk() (*discordgo.ApplicationCommand, error) {
	w, err := c.ToWire()
	if err != nil {
		return nil, err
	}
	w.ID = ""
	return w, nil
}

// CommandFromWire rebuilds a command from a remote snapshot. The result has a
// no-op handler and exists only to be compared against local declarations.
func CommandFromWire(w *discordgo.ApplicationCommand) *Command {
	c := &Command{
		Name:          w.Name,
		Description:   w.Description,
		ID:            w.ID,
		ApplicationID: w.ApplicationID,
		kind:          KindCommand,
		handler:       HandlerFunc(func(context.Context, *Invocation) error { return nil }),
	}
	for _, o := range w.Options {
		c.options = append(c.options, OptionFromWire(o))
	}
	return c
}

// Route is a REST call against the application commands collection.
type Route struct {
	Method string
	URL    string
}

// Route returns the create route when the command has no remote id yet and the
// update route otherwise. A non-empty guildID scopes the route to that guild.
func (c *Command) Route(applicationID, guildID string) (Route, error) {
	if applicationID == "" {
		applicationID = c.ApplicationID
	}
	if applicationID == "" {
		return Route{}, configErr("no application id for command %q", c.Name)
	}

	if c.ID == "" {
		if guildID != "" {
			return Route{http.MethodPost, discordgo.EndpointApplicationGuildCommands(applicationID, guildID)}, nil
		}
		return Route{http.MethodPost, discordgo.EndpointApplicationGlobalCommands(applicationID)}, nil
	}
	if guildID != "" {
		return Route{http.MethodPatch, discordgo.EndpointApplicationGuildCommand(applicationID, guildID, c.ID)}, nil
	}
	return Route{http.MethodPatch, discordgo.EndpointApplicationGlobalCommand(applicationID, c.ID)}, nil
}

// Walk visits c and its descendants depth-first.
func (c *Command) Walk(fn func(cmd *Command, depth int)) {
	c.walk(fn, 0)
}

func (c *Command) walk(fn func(*Command, int), depth int) {
	fn(c, depth)
	for _, child := range c.children {
		child.walk(fn, depth+1)
	}
}
