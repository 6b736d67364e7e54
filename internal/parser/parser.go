// Package parser routes "$group command args" console lines to the command
// handlers modules register.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"xeweos/internal/logger"
	"xeweos/internal/module"
	"xeweos/pkg/ostypes"
)

const helpGroup = "help"

// CommandParser is the dispatcher module. Its required routine harvests the
// command groups of every module registered before Begin, so it must be
// begun after all of them.
type CommandParser struct {
	*module.Module

	groups []module.Group
}

var _ ostypes.Dispatcher = (*CommandParser)(nil)

// New creates the parser module.
func New(env *module.Env) *CommandParser {
	p := &CommandParser{}
	p.Module = module.New(env, module.Spec{
		Name:         "Command_Parser",
		Description:  "Allows to parse text from the serial port in the action function calls with parameters",
		NamespaceKey: "cmd",
	}, module.Hooks{
		Required: p.harvest,
	})
	return p
}

func (p *CommandParser) harvest() {
	p.groups = p.groups[:0]
	for _, m := range p.Env().Registry.Modules() {
		if !m.HasCommands() {
			continue
		}
		group := m.CommandGroup()
		if len(group.Commands) == 0 {
			continue
		}
		p.groups = append(p.groups, group)
	}
	p.Logger().Debug("Harvested command groups", "count", len(p.groups))
}

// Groups returns the harvested command groups in registration order.
func (p *CommandParser) Groups() []module.Group {
	return append([]module.Group(nil), p.groups...)
}

// Parse dispatches one console line. Every failure is printed as a
// diagnostic and returned wrapped around one of the package errors; no
// handler runs in that case.
func (p *CommandParser) Parse(line string) error {
	parsed, err := SplitLine(line)
	switch {
	case errors.Is(err, ErrMissingSigil):
		return p.fail(err, "commands must start with '%c'; type %chelp", Sigil, Sigil)
	case errors.Is(err, ErrUnterminatedQuote):
		return p.fail(err, "Unterminated quote in command.")
	}

	if parsed.Group == "" {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		return p.fail(ErrUnknownGroup, "Unknown command group ''; type %chelp", Sigil)
	}

	if strings.EqualFold(parsed.Group, helpGroup) {
		p.PrintAll()
		return nil
	}

	group, ok := p.lookupGroup(parsed.Group)
	if !ok {
		return p.fail(ErrUnknownGroup, "Unknown command group '%s'; type %chelp", parsed.Group, Sigil)
	}
	if parsed.Command == "" {
		p.PrintHelp(group.Token)
		return nil
	}

	cmd, ok := group.Lookup(parsed.Command)
	if !ok {
		return p.fail(ErrUnknownCommand, "Unknown command '%s'; type %c%s to see available commands",
			parsed.Command, Sigil, parsed.Group)
	}
	if len(parsed.Args) != cmd.ArgCount {
		return p.fail(ErrArity, "'%s' expects %d args, but got %d", cmd.Name, cmd.ArgCount, len(parsed.Args))
	}

	args := JoinArgs(parsed.Args)
	logger.Dispatch(group.Token, cmd.Name, args)
	cmd.Handler(args)
	return nil
}

func (p *CommandParser) lookupGroup(token string) (module.Group, bool) {
	for _, g := range p.groups {
		if strings.EqualFold(g.Token, token) {
			return g, true
		}
	}
	return module.Group{}, false
}

func (p *CommandParser) fail(sentinel error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	p.Console().Println("Error: " + msg)
	p.Logger().Debug("Rejected command line", "error", msg)
	return fmt.Errorf("%s: %w", msg, sentinel)
}
