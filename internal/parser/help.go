package parser

import (
	"fmt"
	"strings"
)

const (
	helpRule      = "----------------------------------------"
	helpNameWidth = 20
	helpIndent    = "                          - "
)

// PrintHelp lists the commands of one group, matched case-insensitively.
func (p *CommandParser) PrintHelp(token string) {
	group, ok := p.lookupGroup(token)
	if !ok {
		p.Console().Printf("Error: Command group '%s' not found.\n", token)
		return
	}

	lines := []string{helpRule, group.Name + " commands:"}
	for _, cmd := range group.Commands {
		pad := helpNameWidth - len(group.Token) - len(cmd.Name)
		if pad < 0 {
			pad = 0
		}
		lines = append(lines,
			fmt.Sprintf("    %c%s %s%s- %s (args: %d)",
				Sigil, group.Token, cmd.Name, strings.Repeat(" ", pad), cmd.Description, cmd.ArgCount),
			helpIndent+cmd.SampleUsage,
		)
	}
	lines = append(lines, helpRule)
	p.Console().Println(strings.Join(lines, "\n"))
}

// PrintAll lists every harvested group.
func (p *CommandParser) PrintAll() {
	p.Console().Println("\n===== All Available Commands =====")
	for _, g := range p.groups {
		p.PrintHelp(g.Token)
	}
	p.Console().Println("==================================")
}
