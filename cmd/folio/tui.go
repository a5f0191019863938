package main

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gabrielmiguelok/golivefolio/internal/site"
	"github.com/gabrielmiguelok/golivefolio/pkg/console"
	"github.com/gabrielmiguelok/golivefolio/pkg/render"
	"github.com/gabrielmiguelok/golivefolio/pkg/terminal"
	"github.com/gabrielmiguelok/golivefolio/pkg/theme"
)

// tuiSurface records what the session asked for during one update. The
// model applies and resets it afterwards.
type tuiSurface struct {
	focus   bool
	toEnd   bool
	section render.Section
	mode    theme.Mode
}

func (s *tuiSurface) Focus()                          { s.focus = true }
func (s *tuiSurface) ScrollLogToEnd()                 { s.toEnd = true }
func (s *tuiSurface) ScrollTo(section render.Section) { s.section = section }
func (s *tuiSurface) ThemeApplied(mode theme.Mode)    { s.mode = mode }

type palette struct {
	header  lipgloss.Style
	prompt  lipgloss.Style
	dir     lipgloss.Style
	input   lipgloss.Style
	dim     lipgloss.Style
	section lipgloss.Style
	tones   map[terminal.Tone]lipgloss.Style
}

func newPalette(mode theme.Mode) palette {
	text, dim := lipgloss.Color("252"), lipgloss.Color("244")
	if mode == theme.Light {
		text, dim = lipgloss.Color("236"), lipgloss.Color("242")
	}
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return palette{
		header: fg(dim).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("240")),
		prompt:  fg(lipgloss.Color(site.Colors["primary"])).Bold(true),
		dir:     fg(lipgloss.Color(site.Colors["secondary"])).Bold(true),
		input:   fg(text),
		dim:     fg(dim),
		section: fg(lipgloss.Color(site.Colors["secondary"])),
		tones: map[terminal.Tone]lipgloss.Style{
			terminal.ToneNeutral: fg(text),
			terminal.ToneBlue:    fg(lipgloss.Color("39")),
			terminal.TonePurple:  fg(lipgloss.Color("141")),
			terminal.ToneOrange:  fg(lipgloss.Color("214")),
			terminal.ToneGreen:   fg(lipgloss.Color("42")),
			terminal.ToneYellow:  fg(lipgloss.Color("220")),
			terminal.ToneDenied:  fg(lipgloss.Color("196")).Bold(true),
			terminal.ToneError:   fg(lipgloss.Color("203")),
		},
	}
}

// model is the full-screen console. Keys are turned into console events
// and the log is re-rendered from the session after each one.
type model struct {
	ctx     context.Context
	session *console.Session
	events  *console.Mux
	surface *tuiSurface

	mode    theme.Mode
	styles  palette
	banner  string
	section render.Section

	input    textinput.Model
	log      viewport.Model
	width    int
	quitting bool
}

func newModel(ctx context.Context, c *consoleEnv) *model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "help"
	ti.CharLimit = 256
	ti.ShowSuggestions = true
	names := make([]string, 0, 9)
	for _, cmd := range c.dispatcher.Commands() {
		names = append(names, string(cmd))
	}
	ti.SetSuggestions(names)

	surface := &tuiSurface{}
	session := console.New(c.dispatcher, surface)
	events := console.NewMux()
	console.Attach(ctx, session, events)

	m := &model{
		ctx:     ctx,
		session: session,
		events:  events,
		surface: surface,
		mode:    c.pref.Mode(),
		styles:  newPalette(c.pref.Mode()),
		input:   ti,
		log:     viewport.New(80, 20),
		width:   80,
	}
	if c.loadErr != nil {
		m.banner = render.LoadErrorMessage
	}

	m.events.Fire(console.EventToggle, "")
	m.sync()
	return m
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEsc:
			m.events.Fire(console.EventClose, "")
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			value := m.input.Value()
			m.events.Fire(console.EventSubmit, value)
			if strings.TrimSpace(value) != "" {
				m.input.Reset()
			}
			m.sync()
			return m, nil

		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.events.Fire(console.EventInput, m.input.Value())
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) resize(width, height int) {
	m.width = width
	m.log.Width = width
	m.log.Height = max(height-5, 3)
	m.input.Width = max(width-5, 1)
	m.sync()
}

// sync applies the surface requests and re-renders the log.
func (m *model) sync() {
	if m.surface.focus {
		m.input.Focus()
		m.surface.focus = false
	}
	if m.surface.mode != "" {
		m.mode = m.surface.mode
		m.styles = newPalette(m.mode)
		m.surface.mode = ""
	}
	if m.surface.section != "" {
		m.section = m.surface.section
		m.surface.section = ""
	}

	m.log.SetContent(m.renderLog())
	if m.surface.toEnd {
		m.log.GotoBottom()
		m.surface.toEnd = false
	}
}

func (m *model) promptLine(rest string) string {
	return m.styles.prompt.Render("➜") + " " + m.styles.dir.Render("~") + " " + rest
}

func (m *model) renderLog() string {
	var lines []string

	if m.banner != "" {
		lines = append(lines, m.styles.tones[terminal.ToneError].Render(m.banner))
	}
	lines = append(lines, m.styles.dim.Render(welcome))

	for _, e := range m.session.Log() {
		switch e.Kind {
		case console.EntryEcho:
			lines = append(lines, m.promptLine(m.styles.input.Render(e.Input)))
		case console.EntryResponse:
			lines = append(lines, m.styles.tones[e.Output.Tone].Width(m.log.Width).Render(e.Output.Text()))
		}
	}

	return strings.Join(lines, "\n")
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}

	header := "guest@portfolio: ~"
	if m.section != "" {
		header += "  " + m.styles.section.Render("#"+m.section.Anchor())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.header.Width(m.width).Render(header),
		m.log.View(),
		m.promptLine(m.input.View()),
		m.styles.dim.Render("enter run · esc quit · pgup/pgdn scroll · theme "+string(m.mode)),
	)
}

func runTUI(ctx context.Context, c *consoleEnv, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(newModel(ctx, c),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
