package commands

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/muratoffalex/manobot/internal/messenger"
	"github.com/muratoffalex/manobot/internal/pending"
)

// Request is one invocation of a command.
type Request struct {
	Event messenger.Event
	Args  []string
	// Routed is set when the command was picked by the keyword router
	// rather than typed with the prefix.
	Routed bool
}

type Command interface {
	Name() string
	Aliases() []string
	// Handle applies cooldowns and concurrency limits and then calls
	// Execute.
	Handle(ctx context.Context, req Request) error
	Execute(ctx context.Context, req Request) error
}

// ReplyHandler continues an interaction from a tracked message.
type ReplyHandler interface {
	HandleReply(ctx context.Context, ev messenger.Event, key string, entry pending.Entry) error
}

// Listener sees every message that is neither a tracked reply nor a
// prefixed command. It reports whether it took the message.
type Listener interface {
	Listen(ctx context.Context, ev messenger.Event) (bool, error)
}

type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	r.commands[cmd.Name()] = cmd
	r.mu.Unlock()
}

// Get finds a command by name or alias.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cmd, ok := r.commands[name]; ok {
		return cmd, true
	}
	for _, cmd := range r.commands {
		if slices.Contains(cmd.Aliases(), name) {
			return cmd, true
		}
	}
	return nil, false
}

func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// All returns the commands sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
