package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gabrielmiguelok/golivefolio/pkg/console"
	"github.com/gabrielmiguelok/golivefolio/pkg/content"
	"github.com/gabrielmiguelok/golivefolio/pkg/logging"
	"github.com/gabrielmiguelok/golivefolio/pkg/render"
	"github.com/gabrielmiguelok/golivefolio/pkg/state"
	"github.com/gabrielmiguelok/golivefolio/pkg/terminal"
	"github.com/gabrielmiguelok/golivefolio/pkg/theme"
)

const welcome = "Welcome! Type help to see available commands."

func newConsoleCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Run the portfolio console in this terminal",
		Long: `Runs the command console against the portfolio document. On a terminal
it opens a full-screen view; otherwise it reads one command per line
from standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}

			// The screen belongs to the console, so logs only go to a file.
			var logger logging.Logger = logging.NopLogger{}
			if cfg.Log.File != "" {
				if logger, err = newLogger(cfg.Log, io.Discard); err != nil {
					return err
				}
			}

			store := openPrefs(cfg.Console.PrefsFile, logger)
			defer store.Close()

			in, out := cmd.InOrStdin(), cmd.OutOrStdout()
			tty := isTerminal(in) && isTerminal(out)

			var hint theme.Hint = theme.Fixed(true)
			if tty {
				hint = theme.HintFunc(lipgloss.HasDarkBackground)
			}

			ctx := cmd.Context()
			c := openConsole(ctx, contentSource(cfg.Content), theme.StoreSlot{Store: store}, hint, logger)

			if tty {
				return runTUI(ctx, c, in, out)
			}
			return runREPL(ctx, c, in, out)
		},
	}
}

// openPrefs opens the preference file. An unreadable file is moved aside
// so the theme falls back to the terminal hint and later toggles persist.
// When even that fails, preferences live only for this run.
func openPrefs(path string, logger logging.Logger) state.Store {
	store, err := state.OpenFileStore(path)
	if err == nil {
		return store
	}
	logger.Warn("preferences unreadable, starting fresh", logging.String("path", path), logging.Err(err))

	if err := os.Rename(path, path+".bad"); err == nil {
		if store, err := state.OpenFileStore(path); err == nil {
			return store
		}
	}
	return state.NewMemoryStore()
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// consoleEnv is what both console front ends run on.
type consoleEnv struct {
	dispatcher *terminal.Dispatcher
	pref       *theme.Preference

	// loadErr is set when the portfolio document could not be loaded.
	loadErr error
}

func openConsole(ctx context.Context, src content.Source, slot theme.Slot, hint theme.Hint, logger logging.Logger) *consoleEnv {
	pref, err := theme.New(ctx, slot, hint)
	if err != nil {
		logger.Warn("theme preference unreadable", logging.Err(err))
	}

	doc, loadErr := content.NewRepository(src, content.WithLogger(logger)).Load(ctx)
	if loadErr != nil {
		logger.Warn("portfolio document unavailable", logging.Err(loadErr))
	}

	return &consoleEnv{
		dispatcher: terminal.NewDispatcher(
			terminal.Env{Document: doc, Theme: pref},
			terminal.WithLogger(logger),
		),
		pref:    pref,
		loadErr: loadErr,
	}
}

// lineSurface is the surface of the line-oriented console. Scrolling has
// nothing to move and the responses already say what happened.
type lineSurface struct {
	console.NopSurface
	w io.Writer
}

func (s lineSurface) ThemeApplied(mode theme.Mode) {
	fmt.Fprintf(s.w, "(theme: %s)\n", mode)
}

// runREPL reads commands line by line until in is exhausted.
func runREPL(ctx context.Context, c *consoleEnv, in io.Reader, out io.Writer) error {
	session := console.New(c.dispatcher, lineSurface{w: out})
	session.Toggle()

	if c.loadErr != nil {
		fmt.Fprintln(out, render.LoadErrorMessage)
	}
	fmt.Fprintln(out, welcome)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, console.Prompt)
		if !sc.Scan() {
			fmt.Fprintln(out)
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		session.SetInput(sc.Text())
		res, ok := session.Submit(ctx)
		if ok && res.Output != nil {
			fmt.Fprintln(out, res.Output.Text())
		}
	}
	return sc.Err()
}
