// Package terminal implements the portfolio's command console: a fixed set
// of parameterless commands resolved from the first word of a line.
package terminal

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gabrielmiguelok/golivefolio/pkg/logging"
	"github.com/gabrielmiguelok/golivefolio/pkg/portfolio"
	"github.com/gabrielmiguelok/golivefolio/pkg/render"
	"github.com/gabrielmiguelok/golivefolio/pkg/theme"
)

// Command is a console command name.
type Command string

const (
	Help     Command = "help"
	About    Command = "about"
	Projects Command = "projects"
	Skills   Command = "skills"
	Blog     Command = "blog"
	Contact  Command = "contact"
	Clear    Command = "clear"
	Theme    Command = "theme"
	Sudo     Command = "sudo"
)

// Messages.
const (
	MsgThemeToggled  = "Theme toggled."
	MsgSudo          = "Permission denied: You are not root. Nice try though."
	MsgUnavailable   = "Portfolio data is unavailable."
	notFoundTemplate = "Command not found: %s. Type 'help' for available commands."
)

// descriptionLimit is how many characters of a project description the
// projects listing shows.
const descriptionLimit = 50

// helpEntries is the help listing, in display order. sudo is not listed.
var helpEntries = []HelpEntry{
	{Help, "Show this help message"},
	{About, "Display about me info"},
	{Projects, "List featured projects"},
	{Skills, "List technical skills"},
	{Blog, "List recent blog posts"},
	{Clear, "Clear terminal history"},
	{Contact, "Show contact info"},
	{Theme, "Toggle light/dark mode"},
}

// EffectKind enumerates side effects a command asks the surface to perform.
type EffectKind int

const (
	// EffectScroll brings a page section into view.
	EffectScroll EffectKind = iota + 1
	// EffectClear empties the output log.
	EffectClear
	// EffectTheme reports that the display mode changed.
	EffectTheme
)

// Effect is a side effect requested by a command.
type Effect struct {
	Kind    EffectKind
	Section render.Section
	Mode    theme.Mode
}

// Result is the outcome of dispatching one line.
type Result struct {
	Command Command

	// Token is the first word as typed.
	Token string

	// Found is false for unrecognized commands.
	Found bool

	// Output is nil when the command prints nothing.
	Output  *Output
	Effects []Effect
}

// Invocation is a parsed input line.
type Invocation struct {
	Command Command
	Token   string
}

// Parse splits a line into its lowercased command and the ignored rest. ok
// is false for empty or whitespace-only input.
func Parse(input string) (Invocation, bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Invocation{}, false
	}
	return Invocation{
		Command: Command(strings.ToLower(fields[0])),
		Token:   fields[0],
	}, true
}

// Toggler flips the display mode.
type Toggler interface {
	Toggle(ctx context.Context) (theme.Mode, error)
}

// Env is what command handlers can read.
type Env struct {
	// Document is nil when the load failed.
	Document *portfolio.Document
	Theme    Toggler
}

type handler func(ctx context.Context, env Env) (*Output, []Effect)

// Dispatcher resolves input lines to commands.
type Dispatcher struct {
	env      Env
	handlers map[Command]handler
	logger   logging.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger logging.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher over env.
func NewDispatcher(env Env, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		env:    env,
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}

	d.handlers = map[Command]handler{
		Help:     help,
		About:    needsDocument(about),
		Projects: needsDocument(projects),
		Skills:   needsDocument(skills),
		Blog:     needsDocument(blog),
		Contact:  needsDocument(contact),
		Clear:    clearLog,
		Theme:    d.toggleTheme,
		Sudo:     sudo,
	}
	return d
}

// Commands lists the registered commands in help order, followed by the
// unlisted ones. The terminal console offers them as completions.
func (d *Dispatcher) Commands() []Command {
	cmds := make([]Command, 0, len(d.handlers))
	for _, e := range helpEntries {
		cmds = append(cmds, e.Name)
	}
	return append(cmds, Sudo)
}

// Dispatch runs the command named by the first word of input. It returns
// false, and does nothing, for empty or whitespace-only input. Unknown
// commands produce a not-found output, never an error.
func (d *Dispatcher) Dispatch(ctx context.Context, input string) (Result, bool) {
	inv, ok := Parse(input)
	if !ok {
		return Result{}, false
	}

	res := Result{Command: inv.Command, Token: inv.Token}

	h, found := d.handlers[inv.Command]
	if !found {
		res.Output = &Output{
			Tone:   ToneError,
			Lines:  []string{fmt.Sprintf(notFoundTemplate, inv.Token)},
			Escape: true,
		}
		d.logger.Debug("unknown command", logging.String("token", inv.Token))
		return res, true
	}

	res.Found = true
	res.Output, res.Effects = h(ctx, d.env)
	d.logger.Debug("command dispatched",
		logging.String("command", string(inv.Command)),
		logging.Int("effects", len(res.Effects)),
	)
	return res, true
}

func needsDocument(h handler) handler {
	return func(ctx context.Context, env Env) (*Output, []Effect) {
		if env.Document == nil {
			return &Output{Tone: ToneError, Lines: []string{MsgUnavailable}}, nil
		}
		return h(ctx, env)
	}
}

func scrollTo(section render.Section) []Effect {
	return []Effect{{Kind: EffectScroll, Section: section}}
}

func help(context.Context, Env) (*Output, []Effect) {
	return &Output{
		Tone:    ToneNeutral,
		Heading: "Available commands:",
		Entries: helpEntries,
	}, nil
}

func about(_ context.Context, env Env) (*Output, []Effect) {
	return &Output{Tone: ToneBlue, Lines: []string{env.Document.Profile.Description}}, nil
}

func projects(_ context.Context, env Env) (*Output, []Effect) {
	lines := make([]string, 0, len(env.Document.Projects))
	for i, p := range env.Document.Projects {
		lines = append(lines, fmt.Sprintf("%d. %s - %s...", i+1, p.Title, truncate(p.Description, descriptionLimit)))
	}

	return &Output{
		Tone:  TonePurple,
		Lines: lines,
		Note:  scrolledNote(render.SectionProjects),
	}, scrollTo(render.SectionProjects)
}

// scrolledNote names the section in title case. Casers are stateful, so
// each call gets its own.
func scrolledNote(section render.Section) string {
	return fmt.Sprintf("Scrolled to %s section...", cases.Title(language.English).String(string(section)))
}

func skills(_ context.Context, env Env) (*Output, []Effect) {
	return &Output{
		Tone:  ToneOrange,
		Lines: []string{strings.Join(env.Document.SkillNames(), ", ")},
	}, nil
}

func blog(_ context.Context, env Env) (*Output, []Effect) {
	lines := make([]string, 0, len(env.Document.Blog))
	for i, post := range env.Document.Blog {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", i+1, post.Title, post.Date))
	}
	return &Output{Tone: ToneGreen, Lines: lines}, scrollTo(render.SectionBlog)
}

func contact(_ context.Context, env Env) (*Output, []Effect) {
	return &Output{
		Tone:  ToneGreen,
		Lines: []string{env.Document.Profile.ContactText},
	}, scrollTo(render.SectionContact)
}

func clearLog(context.Context, Env) (*Output, []Effect) {
	return nil, []Effect{{Kind: EffectClear}}
}

func (d *Dispatcher) toggleTheme(ctx context.Context, env Env) (*Output, []Effect) {
	out := &Output{Tone: ToneYellow, Lines: []string{MsgThemeToggled}}
	if env.Theme == nil {
		return out, nil
	}

	mode, err := env.Theme.Toggle(ctx)
	if err != nil {
		d.logger.Warn("theme preference not saved", logging.Err(err))
	}
	return out, []Effect{{Kind: EffectTheme, Mode: mode}}
}

func sudo(context.Context, Env) (*Output, []Effect) {
	return &Output{Tone: ToneDenied, Lines: []string{MsgSudo}}, nil
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
