package slash

import (
	"sync"

	"github.com/google/uuid"
)

// State is the lifecycle position of an invocation.
type State uint8

const (
	StatePending State = iota
	StateDispatched
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDispatched:
		return "dispatched"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Invocation is what a handler receives: the interaction, where it was routed
// and its arguments, plus the means to answer it. Each interaction gets its
// own Invocation.
type Invocation struct {
	// ID correlates log lines of one invocation.
	ID          string
	Interaction *Interaction

	// Command is the registered top-level command; Target is the node whose
	// handler runs.
	Command           *Command
	Target            *Command
	InvokedGroup      *Command
	InvokedSubcommand *Command

	Args Args

	responder Responder

	// sendMu orders responses; mu only guards the fields below.
	sendMu sync.Mutex

	mu        sync.Mutex
	state     State
	responded bool
}

func newInvocation(in *Interaction, cmd *Command, r Responder) *Invocation {
	return &Invocation{
		ID:          uuid.NewString(),
		Interaction: in,
		Command:     cmd,
		responder:   r,
	}
}

func (inv *Invocation) GuildID() string   { return inv.Interaction.GuildID }
func (inv *Invocation) ChannelID() string { return inv.Interaction.ChannelID }
func (inv *Invocation) AuthorID() string  { return inv.Interaction.AuthorID }

// State returns the current lifecycle state.
func (inv *Invocation) State() State {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.state
}

func (inv *Invocation) setState(s State) {
	inv.mu.Lock()
	inv.state = s
	inv.mu.Unlock()
}

// Name is the qualified name of the routed command, or the top-level name
// before routing.
func (inv *Invocation) Name() string {
	if inv.Target != nil {
		return inv.Target.QualifiedName()
	}
	if inv.Command != nil {
		return inv.Command.Name
	}
	return inv.Interaction.CommandName
}

// Responded reports whether the initial interaction response was sent.
func (inv *Invocation) Responded() bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.responded
}
