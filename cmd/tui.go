package cmd

import (
	"context"

	"github.com/nibzard/rustybrain/internal/todo"
	"github.com/nibzard/rustybrain/internal/ui"
)

// tuiCommand launches the interactive browser.
func (a *app) tuiCommand(ctx context.Context) error {
	if a.isTerminal == nil || !a.isTerminal(a.stdout) {
		a.say("The interactive browser needs a terminal. Try '%s view' instead.", a.inv.Program)
		return nil
	}

	opts := todo.ViewOptions{
		Group: a.inv.Flags.FilterGroup(),
		Sort:  a.inv.Flags.Sort,
	}
	return ui.Run(ctx, a.store, opts,
		ui.WithColor(a.cfg.Color),
		ui.WithOutput(a.stdout),
	)
}
