// Package live serves the portfolio as a live component: one console
// session, theme preference and document per connected page.
package live

import (
	"context"
	"fmt"
	"io"

	"github.com/gabrielmiguelok/golivefolio/internal/site"
	"github.com/gabrielmiguelok/golivefolio/pkg/console"
	"github.com/gabrielmiguelok/golivefolio/pkg/content"
	"github.com/gabrielmiguelok/golivefolio/pkg/core"
	"github.com/gabrielmiguelok/golivefolio/pkg/logging"
	"github.com/gabrielmiguelok/golivefolio/pkg/portfolio"
	"github.com/gabrielmiguelok/golivefolio/pkg/render"
	"github.com/gabrielmiguelok/golivefolio/pkg/router"
	"github.com/gabrielmiguelok/golivefolio/pkg/terminal"
	"github.com/gabrielmiguelok/golivefolio/pkg/theme"
)

// EventThemeToggle is the page's theme button.
const EventThemeToggle = "theme-toggle"

// ContentChanged tells open pages that the portfolio document changed.
// Their own document stays as loaded, so they are asked to reload.
type ContentChanged struct{}

// Config is shared by every Portfolio built from one factory.
type Config struct {
	Source content.Source
	Meta   site.Meta
	Logger logging.Logger
}

// NewFactory returns the component factory for router.Live.
func NewFactory(cfg Config) func() core.Component {
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger{}
	}
	return func() core.Component {
		return &Portfolio{cfg: cfg, logger: cfg.Logger}
	}
}

// Portfolio is the live portfolio page.
type Portfolio struct {
	core.BaseComponent

	cfg      Config
	logger   logging.Logger
	doc      *portfolio.Document
	sections render.Page
	pref     *theme.Preference
	console  *console.Session
	events   *console.Mux
	surface  *surface
	nonce    string
}

// Name returns the component name.
func (p *Portfolio) Name() string {
	return "portfolio"
}

// Mount loads the document, reads the theme preference and opens the
// console. A failed load is logged and leaves the page with the load error.
func (p *Portfolio) Mount(ctx context.Context, params core.Params, session core.Session) error {
	logger := p.cfg.Logger
	if s := core.SocketFromContext(ctx); s != nil {
		logger = logger.With(logging.String("socket", s.ID()))
	}
	p.logger = logger

	repo := content.NewRepository(p.cfg.Source, content.WithLogger(logger))
	doc, err := repo.Load(ctx)
	if err != nil {
		logger.Warn("portfolio load failed", logging.Err(err))
	}
	p.doc = doc
	p.sections = render.Sections(doc)

	p.surface = &surface{}
	slot := &cookieSlot{value: session.Cookie(ThemeCookie), surface: p.surface}
	pref, err := theme.New(ctx, slot, theme.HeaderHint(session.Header(theme.HintHeader)))
	if err != nil {
		logger.Warn("theme preference unreadable", logging.Err(err))
	}
	p.pref = pref

	dispatcher := terminal.NewDispatcher(terminal.Env{Document: doc, Theme: pref}, terminal.WithLogger(logger))
	p.console = console.New(dispatcher, p.surface)
	p.events = console.NewMux()
	console.Attach(ctx, p.console, p.events)

	p.nonce = router.GetCSPNonce(ctx)

	// The HTTP render may have guessed the mode without the client hint.
	if p.Socket() != nil {
		p.surface.ThemeApplied(pref.Mode())
	}

	return nil
}

// HandleEvent handles the page's events.
func (p *Portfolio) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	if event == EventThemeToggle {
		mode, err := p.pref.Toggle(ctx)
		if err != nil {
			p.logger.Warn("theme not saved", logging.Err(err))
		}
		p.surface.ThemeApplied(mode)
		return nil
	}

	value, _ := payload["value"].(string)
	wasVisible := p.console.Visible()

	if !p.events.Fire(console.EventKind(event), value) {
		return fmt.Errorf("unknown event %q", event)
	}

	if visible := p.console.Visible(); visible != wasVisible {
		p.surface.visibility(visible)
	}
	return nil
}

// HandleInfo handles server-side notifications.
func (p *Portfolio) HandleInfo(ctx context.Context, msg any) error {
	switch msg.(type) {
	case ContentChanged:
		p.surface.push("reload", nil)
	}
	return nil
}

// AfterRender sends the push events queued by the last event.
func (p *Portfolio) AfterRender(ctx context.Context) {
	for _, e := range p.surface.drain() {
		if err := p.Push(e.Event, e.Payload); err != nil {
			p.logger.Debug("push failed", logging.String("event", e.Event), logging.Err(err))
			return
		}
	}
}

// Render renders the full page.
func (p *Portfolio) Render(ctx context.Context) core.Renderer {
	view := site.View{
		Meta:            p.cfg.Meta,
		Dark:            p.pref.Dark(),
		Sections:        p.sections,
		Log:             console.LogHTML(p.console.Log()),
		TerminalVisible: p.console.Visible(),
		Live:            true,
		Nonce:           p.nonce,
	}
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		return site.Render(w, view)
	})
}
