// Package cmd implements the CLI command structure for rustybrain.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/rustybrain/internal/args"
	"github.com/nibzard/rustybrain/internal/brainpath"
	"github.com/nibzard/rustybrain/internal/config"
	"github.com/nibzard/rustybrain/internal/logging"
	"github.com/nibzard/rustybrain/internal/todo"
	"github.com/nibzard/rustybrain/internal/utils"
	"github.com/nibzard/rustybrain/internal/view"
)

// Version is set via ldflags at build time.
var Version = "dev"

// env holds the process-level collaborators of one invocation.
type env struct {
	stdout     io.Writer
	stderr     io.Writer
	now        func() time.Time
	isTerminal func(io.Writer) bool
}

// app is one invocation after HOME, config and the store are resolved.
type app struct {
	env
	inv    args.Invocation
	cfg    *config.Config
	logger *log.Logger
	store  *todo.Store
}

// Run executes rustybrain. argv is the full command line including the
// program name. The returned error is non-nil only when HOME is unset, or
// when an existing store cannot be read or the store cannot be written;
// user mistakes are reported on stdout.
func Run(ctx context.Context, argv []string) error {
	return run(ctx, argv, env{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		now:        time.Now,
		isTerminal: view.IsTerminal,
	})
}

func run(ctx context.Context, argv []string, e env) error {
	inv := args.Parse(argv)

	home, err := brainpath.Home()
	if err != nil {
		return err
	}

	cfg, cfgErr := config.Load(home)
	logger := logging.NewFromConfig(e.stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	if cfgErr != nil {
		logger.Warn("ignoring config file", "err", cfgErr)
	} else if cfg.File != "" {
		logger.Debug("loaded config", "path", cfg.File)
	}

	store := todo.NewStore(
		brainpath.StorePath(home),
		todo.WithLogger(logger),
		todo.WithCorruptBackup(cfg.BackupCorrupt),
		todo.WithClock(e.now),
	)

	a := &app{env: e, inv: inv, cfg: cfg, logger: logger, store: store}
	logger.Debug("dispatch", "command", inv.Command, "args", len(inv.Positionals))
	return a.dispatch(ctx)
}

func (a *app) dispatch(ctx context.Context) error {
	switch a.inv.Command {
	case "":
		a.printWelcome()
		return nil
	case args.CmdAdd:
		return a.addCommand()
	case args.CmdView:
		return a.viewCommand()
	case args.CmdEdit:
		return a.editCommand()
	case args.CmdDelete:
		return a.deleteCommand()
	case args.CmdMark:
		return a.markCommand()
	case args.CmdMakeGroup:
		return a.makeGroupCommand()
	case args.CmdTUI:
		return a.tuiCommand(ctx)
	case args.CmdVersion:
		return a.versionCommand()
	case args.CmdHelp:
		a.printUsage()
		return nil
	default:
		a.say("Unknown command. Type '%s help' for available commands.", a.inv.Program)
		return nil
	}
}

// addCommand appends a new task.
func (a *app) addCommand() error {
	description := utils.JoinWords(a.inv.Positionals)
	if description == "" {
		a.say("Try again and maybe this time mention the task you want to add.")
		return nil
	}

	task, err := todo.NewTask(description, a.inv.Flags.Group, a.inv.Flags.Priority, a.now())
	if err != nil {
		if errors.Is(err, todo.ErrBeforeEpoch) {
			fmt.Fprintf(a.stderr, "Error getting system time: %v\n", err)
			return nil
		}
		a.say("Try again and maybe this time mention the task you want to add.")
		return nil
	}

	list, err := a.load()
	if err != nil {
		return err
	}
	list.Add(task)
	if err := a.save(list); err != nil {
		return err
	}
	a.say("Task added! No need to remember it anymore.")
	return nil
}

// viewCommand renders the filtered, sorted list.
func (a *app) viewCommand() error {
	list, err := a.load()
	if err != nil {
		a.logger.Warn("showing an empty list", "err", err)
	}
	entries := list.View(todo.ViewOptions{
		Group: a.inv.Flags.FilterGroup(),
		Sort:  a.inv.Flags.Sort,
	})
	if err := view.New(a.stdout, a.cfg.Color).Tasks(entries); err != nil {
		a.logger.Debug("writing view", "err", err)
	}
	return nil
}

// editCommand replaces the description of task n.
func (a *app) editCommand() error {
	pos := a.inv.Positionals
	description := ""
	if len(pos) > 1 {
		description = utils.JoinWords(pos[1:])
	}
	if description == "" {
		a.say("Your brain must be more rusty than I imagined. Try using the command properly or try %s help.", a.inv.Program)
		return nil
	}

	list, err := a.load()
	if err != nil {
		return err
	}
	i, err := list.Index(pos[0])
	if err != nil {
		a.logger.Debug("edit rejected", "err", err)
		a.say("I can't help you edit something that doesn't exist. But I can help you remove that rust in your brain. Try running %s help.", a.inv.Program)
		return nil
	}
	if err := list.Edit(i, description); err != nil {
		a.say("Your brain must be more rusty than I imagined. Try using the command properly or try %s help.", a.inv.Program)
		return nil
	}
	if err := a.save(list); err != nil {
		return err
	}
	a.say("Task %d has been updated.", i+1)
	return nil
}

// deleteCommand removes task n.
func (a *app) deleteCommand() error {
	if len(a.inv.Positionals) == 0 {
		a.say("Maybe provide a valid task to delete?")
		return nil
	}

	list, err := a.load()
	if err != nil {
		return err
	}
	i, err := list.Index(a.inv.Positionals[0])
	if err != nil {
		a.logger.Debug("delete rejected", "err", err)
		a.say("Task doesn't exist. Are you sure you don't have a rusty brain?")
		return nil
	}
	if _, err := list.Delete(i); err != nil {
		return err
	}
	if err := a.save(list); err != nil {
		return err
	}
	a.say("Task deleted! You're a little less rusty now.")
	return nil
}

// markCommand sets task n done. An already-done task is left untouched on disk.
func (a *app) markCommand() error {
	if len(a.inv.Positionals) == 0 {
		a.say("Can't mark a task if you don't tell me which one.")
		return nil
	}

	list, err := a.load()
	if err != nil {
		return err
	}
	i, err := list.Index(a.inv.Positionals[0])
	if err != nil {
		a.logger.Debug("mark rejected", "err", err)
		a.say("Doesn't exist. Maybe you're just imagining tasks?")
		return nil
	}
	changed, err := list.Mark(i)
	if err != nil {
		return err
	}
	if changed {
		if err := a.save(list); err != nil {
			return err
		}
	}
	a.say("Task marked as done! Keep up the good work.")
	return nil
}

// makeGroupCommand records a group through a placeholder task.
func (a *app) makeGroupCommand() error {
	name := ""
	if len(a.inv.Positionals) > 0 {
		name = a.inv.Positionals[0]
	}

	list, err := a.load()
	if err != nil {
		return err
	}
	_, err = list.MakeGroup(name)
	switch {
	case errors.Is(err, todo.ErrEmptyGroup):
		a.say("Tell me what to call the group: %s --make-group <name>", a.inv.Program)
		return nil
	case errors.Is(err, todo.ErrGroupExists):
		a.say("Group %q already exists.", name)
		return nil
	case err != nil:
		return err
	}
	if err := a.save(list); err != nil {
		return err
	}
	a.say("Group %q created.", name)
	return nil
}

// versionCommand prints the version.
func (a *app) versionCommand() error {
	fmt.Fprintf(a.stdout, "%s version %s\n", a.inv.Program, Version)
	return nil
}

// load reads the store. A store that exists but cannot be read is fatal for
// commands that would save over it.
func (a *app) load() (todo.List, error) {
	list, err := a.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading tasks from %s: %w", a.store.Path(), err)
	}
	return list, nil
}

func (a *app) save(list todo.List) error {
	if err := a.store.Save(list); err != nil {
		return fmt.Errorf("saving tasks to %s: %w", a.store.Path(), err)
	}
	return nil
}

// say prints a user-facing line on stdout.
func (a *app) say(format string, v ...any) {
	fmt.Fprintf(a.stdout, format+"\n", v...)
}

func (a *app) printWelcome() {
	fmt.Fprintln(a.stdout, "Welcome to RustyBrain!")
	fmt.Fprintln(a.stdout, "I remember things so you don't have to.")
	a.printUsage()
}

// printUsage prints the command list.
func (a *app) printUsage() {
	w := a.stdout
	p := a.inv.Program
	fmt.Fprintln(w, "Commands list:")
	fmt.Fprintf(w, "  %s add <task> [--group=G] [--priority=1|2|3] - Add a new task\n", p)
	fmt.Fprintf(w, "  %s view [--group=G] [--sort=priority|time] - View your tasks\n", p)
	fmt.Fprintf(w, "  %s edit <task_number> <edited_task> - Edit a saved task\n", p)
	fmt.Fprintf(w, "  %s delete <task_number> - Delete a task\n", p)
	fmt.Fprintf(w, "  %s mark <task_number> - Mark a task as done\n", p)
	fmt.Fprintf(w, "  %s --make-group <name> - Create an empty group\n", p)
	fmt.Fprintf(w, "  %s tui [--group=G] [--sort=priority|time] - Browse tasks interactively\n", p)
	fmt.Fprintf(w, "  %s version - Show version information\n", p)
	fmt.Fprintf(w, "  %s help - Show this help message\n", p)
}
