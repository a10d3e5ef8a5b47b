package command

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand is returned by Bind for a name that is neither a command nor an alias.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned by Bind when a command is missing required arguments.
	ErrUsage = errors.New("usage")
)

// Registry maps command names and aliases to Command definitions.
type Registry struct {
	commands map[string]*Command // canonical name → command
	aliases  map[string]string   // alias → canonical name
	ordered  []*Command
}

// Invocation is a resolved command with its arguments.
type Invocation struct {
	Command *Command
	Args    []string
	RawArgs string
}

// NewRegistry creates a Registry populated with the given commands.
//
// Precondition: No two commands may share a canonical name or alias.
// Postcondition: Returns a Registry or an error on name/alias collisions.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}
	for i := range cmds {
		cmd := &cmds[i]
		if r.taken(cmd.Name) {
			return nil, fmt.Errorf("command name %q is already registered", cmd.Name)
		}
		r.commands[cmd.Name] = cmd
		r.ordered = append(r.ordered, cmd)

		for _, alias := range cmd.Aliases {
			if r.taken(alias) {
				return nil, fmt.Errorf("alias %q of %q is already registered", alias, cmd.Name)
			}
			r.aliases[alias] = cmd.Name
		}
	}
	return r, nil
}

func (r *Registry) taken(name string) bool {
	_, isName := r.commands[name]
	_, isAlias := r.aliases[name]
	return isName || isAlias
}

// DefaultRegistry creates a Registry with all built-in commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias.
func (r *Registry) Resolve(name string) (*Command, bool) {
	if cmd, ok := r.commands[name]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[name]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// Bind parses line and resolves its command, checking the argument count.
//
// Postcondition: Returns an Invocation, or an error wrapping ErrUnknownCommand or ErrUsage.
// A blank line yields a zero Invocation and a nil error.
func (r *Registry) Bind(line string) (Invocation, error) {
	parsed := Parse(line)
	if parsed.Command == "" {
		return Invocation{}, nil
	}
	cmd, ok := r.Resolve(parsed.Command)
	if !ok {
		return Invocation{}, fmt.Errorf("%w: %q", ErrUnknownCommand, parsed.Command)
	}
	if len(parsed.Args) < cmd.MinArgs {
		return Invocation{}, fmt.Errorf("%w: %s", ErrUsage, cmd.Usage)
	}
	return Invocation{Command: cmd, Args: parsed.Args, RawArgs: parsed.RawArgs}, nil
}

// Commands returns all registered commands in registration order.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, len(r.ordered))
	copy(out, r.ordered)
	return out
}
