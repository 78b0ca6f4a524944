package slash

import (
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Registry stores top-level commands by name and the cogs that contributed
// them. One registry is built by the application's composition root and
// shared by reference with the engine and the sync layer.
//
// Registration and teardown are expected at startup and shutdown; dispatch
// only reads. The lock keeps reads safe while discordgo runs handlers on
// their own goroutines.
type Registry struct {
	mu            sync.RWMutex
	applicationID string
	commands      map[string]*Command
	cogs          map[string]Cog
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		cogs:     make(map[string]Cog),
	}
}

// SetApplicationID records the bot's application id and stamps it on every
// registered command. Commands added later receive it on Add.
func (r *Registry) SetApplicationID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applicationID = id
	for _, c := range r.commands {
		c.ApplicationID = id
	}
}

func (r *Registry) ApplicationID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.applicationID
}

// Add registers a top-level command. Names must be unique.
func (r *Registry) Add(c *Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(c)
}

func (r *Registry) add(c *Command) error {
	if c == nil {
		return configErr("nil command")
	}
	if c.kind != KindCommand {
		return configErr("%s %q cannot be registered as a top-level command", c.kind, c.QualifiedName())
	}
	if _, dup := r.commands[c.Name]; dup {
		return configErr("%q is already a registered slash command", c.Name)
	}
	if r.applicationID != "" {
		c.ApplicationID = r.applicationID
	}
	r.commands[c.Name] = c
	return nil
}

// Get returns the command with the given name.
func (r *Registry) Get(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// Remove unregisters a command and returns it.
func (r *Registry) Remove(name string) (*Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.commands[name]
	if ok {
		delete(r.commands, name)
	}
	return c, ok
}

// All returns all registered commands, sorted by name.
func (r *Registry) All() []*Command {
	r.mu.RLock()
	list := make([]*Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Wires renders every command for a bulk overwrite.
func (r *Registry) Wires() ([]*discordgo.ApplicationCommand, error) {
	all := r.All()
	out := make([]*discordgo.ApplicationCommand, 0, len(all))
	for _, c := range all {
		w, err := c.ToWireForBulk()
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}
