package slash

import (
	"context"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"unicode"
)

// Handler runs a resolved invocation.
type Handler interface {
	Handle(ctx context.Context, inv *Invocation) error
}

// HandlerFunc adapts a plain function, or a method value such as cog.Random,
// to Handler. Method values capture their receiver, so no owner needs to be
// supplied at call time.
type HandlerFunc func(ctx context.Context, inv *Invocation) error

func (f HandlerFunc) Handle(ctx context.Context, inv *Invocation) error { return f(ctx, inv) }

// OptionProvider is implemented by handlers that can describe their own
// options, such as a Binding.
type OptionProvider interface {
	SlashOptions() []*Option
}

// DefaultProvider is implemented by handlers that declare default values for
// options the user may leave out.
type DefaultProvider interface {
	SlashDefaults() map[string]any
}

// Spec declares a command. Options, when non-nil, take precedence over
// anything the handler could infer.
type Spec struct {
	Name        string
	Description string
	Options     []*Option
	Handler     Handler
	Defaults    map[string]any
}

var commandName = regexp.MustCompile(`^[-_\p{Ll}\p{Lo}\p{N}]{1,32}$`)

// NewCommand builds a top-level command bound to spec.Handler. The
// application id is filled in when the command is added to a Registry.
func NewCommand(spec Spec) (*Command, error) {
	return build(spec, KindCommand)
}

// MustCommand is like NewCommand but panics on error. It is meant for
// package-level declarations.
func MustCommand(spec Spec) *Command {
	c, err := NewCommand(spec)
	if err != nil {
		panic(err)
	}
	return c
}

// AddSubcommand attaches a sub-command to a top-level command or a group.
func (c *Command) AddSubcommand(spec Spec) (*Command, error) {
	return c.addChild(spec, KindSubCommand)
}

// AddGroup attaches a sub-command group to a top-level command. The group's
// handler is optional and never receives options; declaring any is an error.
func (c *Command) AddGroup(spec Spec) (*Command, error) {
	if c.kind != KindCommand {
		return nil, configErr("groups can only be added to top-level commands, not %s %q", c.kind, c.QualifiedName())
	}
	return c.addChild(spec, KindSubCommandGroup)
}

func (c *Command) addChild(spec Spec, kind Kind) (*Command, error) {
	if c.kind == KindSubCommand {
		return nil, configErr("sub-command %q cannot have children", c.QualifiedName())
	}
	child, err := build(spec, kind)
	if err != nil {
		return nil, err
	}
	if _, dup := c.childIndex[child.Name]; dup {
		return nil, configErr("%q already has a child named %q", c.QualifiedName(), child.Name)
	}
	for _, o := range c.options {
		if o.Name == child.Name {
			return nil, configErr("%q already has an option named %q", c.QualifiedName(), child.Name)
		}
	}

	child.parent = c
	child.cog = c.cog
	if c.childIndex == nil {
		c.childIndex = make(map[string]*Command)
	}
	c.childIndex[child.Name] = child
	c.children = append(c.children, child)
	return child, nil
}

func build(spec Spec, kind Kind) (*Command, error) {
	if spec.Handler == nil && kind != KindSubCommandGroup {
		return nil, configErr("%s %q has no handler", kind, spec.Name)
	}
	if b, ok := spec.Handler.(*Binding); ok && b.err != nil {
		return nil, b.err
	}

	name := spec.Name
	if name == "" {
		derived, err := handlerName(spec.Handler)
		if err != nil {
			return nil, err
		}
		name = derived
	}
	if !commandName.MatchString(name) {
		return nil, configErr("invalid command name %q", name)
	}
	if spec.Description == "" {
		return nil, configErr("%s %q has no description", kind, name)
	}

	if kind == KindSubCommandGroup && len(spec.Options) > 0 {
		return nil, configErr("group %q cannot declare options", name)
	}
	options := spec.Options
	if options == nil && kind != KindSubCommandGroup {
		if p, ok := spec.Handler.(OptionProvider); ok {
			options = p.SlashOptions()
		}
	}

	defaults := make(map[string]any)
	if p, ok := spec.Handler.(DefaultProvider); ok {
		for k, v := range p.SlashDefaults() {
			defaults[k] = v
		}
	}
	for k, v := range spec.Defaults {
		defaults[k] = v
	}

	return &Command{
		Name:        name,
		Description: spec.Description,
		kind:        kind,
		options:     append([]*Option(nil), options...),
		handler:     spec.Handler,
		defaults:    defaults,
	}, nil
}

// handlerName derives a command name from the handler's function symbol:
// "pkg.ping" gives "ping", the method value "pkg.(*Cog).Random-fm" gives
// "random". Closures have no usable name.
func handlerName(h Handler) (string, error) {
	var fn any = h
	if b, ok := h.(*Binding); ok {
		fn = b.fn
	}
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return "", configErr("cannot derive a name from handler %T", h)
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "", configErr("cannot derive a name from handler %T", h)
	}

	symbol := strings.TrimSuffix(f.Name(), "-fm")
	if i := strings.LastIndex(symbol, "."); i >= 0 {
		symbol = symbol[i+1:]
	}
	if anonymous(symbol) {
		return "", configErr("handler %s is anonymous, set a name explicitly", f.Name())
	}
	return strings.ToLower(symbol), nil
}

func anonymous(symbol string) bool {
	digits := strings.TrimPrefix(symbol, "func")
	if digits == "" {
		return symbol == "func"
	}
	return strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}
