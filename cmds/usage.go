package cmds

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
)

func (p *Executor) PrintUsage() {
	p.WriteUsage(os.Stderr)
}

func (p *Executor) WriteUsage(w io.Writer) {
	writeCommands(w, p.commands, 0)
}

func writeCommands(w io.Writer, commands map[string]*Command, depth int) {
	printed := make(map[*Command]bool)
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		command := commands[name]
		if command == nil || printed[command] || slices.Contains(command.Aliases, name) {
			continue
		}
		printed[command] = true

		names := name
		if len(command.Aliases) > 0 {
			names += ", " + strings.Join(command.Aliases, ", ")
		}
		names += command.params()
		indent := strings.Repeat("  ", depth)
		if command.Description != "" {
			fmt.Fprintf(w, "%s%s\t%s\n", indent, names, command.Description)
		} else {
			fmt.Fprintf(w, "%s%s\n", indent, names)
		}
		if len(command.Subs) > 0 {
			writeCommands(w, command.Subs, depth+1)
		}
	}
}
