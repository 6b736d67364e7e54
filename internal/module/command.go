package module

import "strings"

// Handler receives the re-serialized argument string of a command line.
type Handler func(args string)

// Command is a named, fixed-arity operation exposed by a module.
type Command struct {
	Name        string
	Description string
	SampleUsage string
	ArgCount    int
	Handler     Handler
}

// Group is the view of a module's commands the parser routes against.
type Group struct {
	// Name is the module name, e.g. "Web_Interface".
	Name string
	// Token is the lowercase "$<group>" token, e.g. "web_interface".
	Token    string
	Commands []Command
}

// Lookup finds a command by case-insensitive name.
func (g Group) Lookup(name string) (Command, bool) {
	for _, cmd := range g.Commands {
		if strings.EqualFold(cmd.Name, name) {
			return cmd, true
		}
	}
	return Command{}, false
}

// AddCommand appends cmd to the module's command set. An empty SampleUsage
// defaults to "Sample Use: $<group> <name>".
func (m *Module) AddCommand(cmd Command) {
	if cmd.SampleUsage == "" {
		cmd.SampleUsage = "Sample Use: $" + m.Group() + " " + cmd.Name
	}
	m.commands = append(m.commands, cmd)
}

// CommandGroup returns a fresh snapshot of the module's commands.
func (m *Module) CommandGroup() Group {
	return Group{
		Name:     m.spec.Name,
		Token:    m.Group(),
		Commands: append([]Command(nil), m.commands...),
	}
}

func (m *Module) registerGenericCommands() {
	m.AddCommand(Command{
		Name:        "status",
		Description: "Get module status",
		Handler:     func(string) { m.Status(true) },
	})
	m.AddCommand(Command{
		Name:        "reset",
		Description: "Reset the module",
		Handler:     func(string) { m.Reset(true, true, true) },
	})

	if !m.spec.CanBeDisabled {
		return
	}
	m.AddCommand(Command{
		Name:        "enable",
		Description: "Enable this module",
		Handler:     func(string) { m.Enable(true, true) },
	})
	m.AddCommand(Command{
		Name:        "disable",
		Description: "Disable this module",
		Handler:     func(string) { m.Disable(true, true) },
	})
}
