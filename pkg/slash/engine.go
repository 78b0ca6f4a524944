package slash

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// EventType names a lifecycle notification.
type EventType string

const (
	EventCommand    EventType = "slash_command"
	EventError      EventType = "slash_command_error"
	EventCompletion EventType = "slash_command_completion"
)

// Event is delivered to listeners. Err is set for EventError only and is
// always a *HandlerError.
type Event struct {
	Type       EventType
	Invocation *Invocation
	Err        error
}

// Listener observes lifecycle events. Listeners run synchronously on the
// dispatching goroutine.
type Listener func(Event)

// Engine turns interactions into handler calls.
type Engine struct {
	registry   *Registry
	middleware []Middleware

	mu        sync.RWMutex
	listeners []Listener
}

// NewEngine returns an engine dispatching to commands of reg. The middleware
// wraps every handler, first one outermost.
func NewEngine(reg *Registry, mws ...Middleware) *Engine {
	return &Engine{registry: reg, middleware: mws}
}

// On adds a listener.
func (e *Engine) On(l Listener) {
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()
}

func (e *Engine) emit(ev Event) {
	e.mu.RLock()
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.RUnlock()
	for _, l := range listeners {
		l(ev)
	}
}

// Dispatch runs one interaction to completion. Interactions naming an unknown
// command return nil without any event: they may belong to another process
// sharing the application. Handler failures, including panics, end in a
// single EventError and are never returned.
func (e *Engine) Dispatch(ctx context.Context, in *Interaction, r Responder) *Invocation {
	root, ok := e.registry.Get(in.CommandName)
	if !ok {
		return nil
	}

	inv := newInvocation(in, root, r)
	inv.setState(StateDispatched)
	e.emit(Event{Type: EventCommand, Invocation: inv})

	if err := e.invoke(ctx, inv); err != nil {
		inv.setState(StateFailed)
		e.emit(Event{Type: EventError, Invocation: inv, Err: err})
		return inv
	}
	inv.setState(StateCompleted)
	e.emit(Event{Type: EventCompletion, Invocation: inv})
	return inv
}

func (e *Engine) invoke(ctx context.Context, inv *Invocation) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &HandlerError{Command: inv.Name(), Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	res, err := Resolve(inv.Command, inv.Interaction.Options)
	if err != nil {
		return &HandlerError{Command: inv.Name(), Err: err}
	}
	inv.Target = res.Command
	inv.InvokedGroup = res.Group
	inv.InvokedSubcommand = res.Subcommand

	args, err := prepareArgs(res.Command, res.Args)
	if err != nil {
		return &HandlerError{Command: inv.Name(), Err: err}
	}
	inv.Args = Args{values: args, defaults: res.Command.defaults}

	h := res.Command.Handler()
	if h == nil {
		return &HandlerError{Command: inv.Name(), Err: configErr("%s %q has no handler", res.Command.Kind(), res.Command.QualifiedName())}
	}
	if err := Apply(h, e.middleware...).Handle(ctx, inv); err != nil {
		return &HandlerError{Command: inv.Name(), Err: err}
	}
	return nil
}

// prepareArgs fills absent options without a default with nil and coerces
// identifier values to int64.
func prepareArgs(cmd *Command, args map[string]any) (map[string]any, error) {
	for _, opt := range cmd.options {
		v, present := args[opt.Name]
		if !present {
			if !cmd.HasDefault(opt.Name) {
				args[opt.Name] = nil
			}
			continue
		}
		if v == nil || !opt.Type.IsIdentifier() {
			continue
		}
		id, err := cast.ToInt64E(v)
		if err != nil {
			return nil, fmt.Errorf("option %q: %v is not a %s id: %w", opt.Name, v, opt.Type, err)
		}
		args[opt.Name] = id
	}
	return args, nil
}

// LogErrors returns a listener that logs EventError.
func LogErrors(log *zap.Logger) Listener {
	return func(ev Event) {
		if ev.Type != EventError {
			return
		}
		inv := ev.Invocation
		log.Error("slash command raised an error",
			zap.String("command", inv.Name()),
			zap.String("invocation", inv.ID),
			zap.String("guild", inv.GuildID()),
			zap.String("user", inv.AuthorID()),
			zap.Error(ev.Err),
		)
	}
}
