package shell

import (
	"errors"
	"io"
	"sort"
	"strings"
	"unicode"

	platformerrors "github.com/jmgilman/go/errors"
)

// Executor runs commands that are not builtins.
type Executor interface {
	Execute(name, args string, out io.Writer) error
}

var ErrNotFound = errors.New("not found")

// CustomCommand handles a command added with AddCommand. args is the text
// after the command word, in the case it was typed.
type CustomCommand func(args string, out io.Writer) error

// CommandRegistry is the Executor for commands registered at runtime.
type CommandRegistry struct {
	commands map[string]CustomCommand
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{commands: make(map[string]CustomCommand)}
}

// Register adds fn under name. Names are case-insensitive and may not shadow
// a builtin.
func (r *CommandRegistry) Register(name string, fn CustomCommand) error {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || strings.ContainsFunc(name, unicode.IsSpace) {
		return platformerrors.Newf(CodeInvalidInput, "invalid command name %q", name)
	}

	if fn == nil {
		return platformerrors.Newf(CodeInvalidInput, "no handler for %s", name)
	}

	if _, ok := lookupCommand(name); ok {
		return platformerrors.Newf(CodeInvalidInput, "%s is a builtin command", name)
	}

	r.commands[name] = fn
	return nil
}

func (r *CommandRegistry) Execute(name, args string, out io.Writer) error {
	fn, ok := r.commands[strings.ToUpper(name)]
	if !ok {
		return ErrNotFound
	}

	return fn(args, out)
}

// Names returns the registered names in order.
func (r *CommandRegistry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
