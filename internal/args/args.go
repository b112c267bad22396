// Package args splits a command line into a command, positional words and
// the recognized --key=value flags in a single pass.
package args

import (
	"path/filepath"
	"strings"

	"github.com/nibzard/rustybrain/internal/todo"
)

// Command names.
const (
	CmdAdd       = "add"
	CmdView      = "view"
	CmdEdit      = "edit"
	CmdDelete    = "delete"
	CmdMark      = "mark"
	CmdHelp      = "help"
	CmdMakeGroup = "--make-group"
	CmdVersion   = "version"
	CmdTUI       = "tui"
)

// DefaultProgram is used when argv is empty.
const DefaultProgram = "rustybrain"

const (
	flagGroup    = "--group="
	flagPriority = "--priority="
	flagSort     = "--sort="
)

// Flags holds the recognized flag values with defaults applied.
type Flags struct {
	Group    string // "default" unless --group was given
	GroupSet bool   // true when --group carried a non-empty value
	Priority todo.Priority
	Sort     todo.SortKey
}

// Invocation is a parsed command line.
type Invocation struct {
	Program     string // base name of argv[0]
	Command     string // empty when no command was given
	Positionals []string
	Flags       Flags
}

// Parse parses argv as received from the OS, where argv[0] is the program
// name. Tokens after the command that start with "--" are flags; unknown
// flags are dropped. Every other token is positional, in order.
func Parse(argv []string) Invocation {
	inv := Invocation{
		Program: DefaultProgram,
		Flags: Flags{
			Group:    todo.DefaultGroup,
			Priority: todo.PriorityLow,
			Sort:     todo.SortTime,
		},
	}
	if len(argv) == 0 {
		return inv
	}
	if base := filepath.Base(argv[0]); argv[0] != "" && base != "." {
		inv.Program = base
	}
	if len(argv) < 2 {
		return inv
	}

	inv.Command = argv[1]
	for _, tok := range argv[2:] {
		if !strings.HasPrefix(tok, "--") {
			inv.Positionals = append(inv.Positionals, tok)
			continue
		}
		inv.Flags.apply(tok)
	}
	return inv
}

func (f *Flags) apply(tok string) {
	switch {
	case strings.HasPrefix(tok, flagGroup):
		if v := strings.TrimPrefix(tok, flagGroup); v != "" {
			f.Group = v
			f.GroupSet = true
		}
	case strings.HasPrefix(tok, flagPriority):
		f.Priority = todo.ParsePriority(strings.TrimPrefix(tok, flagPriority))
	case strings.HasPrefix(tok, flagSort):
		f.Sort = todo.ParseSortKey(strings.TrimPrefix(tok, flagSort))
	}
}

// FilterGroup returns the group a view should filter on, or "" for all.
func (f Flags) FilterGroup() string {
	if f.GroupSet {
		return f.Group
	}
	return ""
}
