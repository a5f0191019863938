package live

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielmiguelok/golivefolio/internal/site"
	"github.com/gabrielmiguelok/golivefolio/pkg/core"
	"github.com/gabrielmiguelok/golivefolio/pkg/render"
	"github.com/gabrielmiguelok/golivefolio/pkg/theme"
)

const testDocument = `{
  "profile": {"description": "I build <b>things</b>.", "skills_description": "Mostly Go.", "contact_text": "mail me"},
  "skills": [{"name": "Go"}, {"name": "SQL"}],
  "projects": [{"title": "Ledger", "description": "Books.", "image": "l.png", "tech": ["Go"], "links": {"repo": "r", "demo": "d"}}]
}`

type staticSource struct {
	data []byte
	err  error
}

func (s staticSource) Fetch(context.Context) ([]byte, error) { return s.data, s.err }
func (s staticSource) String() string                        { return "static" }

// recordingTransport keeps every message sent to the client.
type recordingTransport struct {
	mu   sync.Mutex
	sent []core.Message
}

func (t *recordingTransport) Send(msg core.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, msg)
	return nil
}

func (t *recordingTransport) Close() error      { return nil }
func (t *recordingTransport) IsConnected() bool { return true }

func (t *recordingTransport) take() []core.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.sent
	t.sent = nil
	return out
}

type pushed struct {
	Event   string
	Payload map[string]any
}

func events(msgs []core.Message) []pushed {
	out := make([]pushed, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, pushed{Event: m.Event, Payload: m.Payload})
	}
	return out
}

func mountLive(t *testing.T, src staticSource, session core.Session) (*Portfolio, *recordingTransport) {
	t.Helper()

	comp := NewFactory(Config{Source: src, Meta: site.Meta{Owner: "Ada"}})().(*Portfolio)
	tr := &recordingTransport{}
	comp.SetSocket(core.NewSocket("s1", tr))

	if session == nil {
		session = core.Session{}
	}
	require.NoError(t, comp.Mount(context.Background(), nil, session))
	return comp, tr
}

func renderPage(t *testing.T, p *Portfolio) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, p.Render(context.Background()).Render(context.Background(), &sb))
	return sb.String()
}

func TestPortfolio_HTTPRender(t *testing.T) {
	comp := NewFactory(Config{Source: staticSource{data: []byte(testDocument)}})()
	require.NoError(t, comp.Mount(context.Background(), nil, core.Session{"cookie:" + ThemeCookie: "dark"}))

	var sb strings.Builder
	require.NoError(t, comp.Render(context.Background()).Render(context.Background(), &sb))
	page := sb.String()

	assert.Contains(t, page, `<html lang="en" class="dark">`)
	assert.Contains(t, page, "I build <b>things</b>.")
	assert.Contains(t, page, "Ledger")
	assert.Contains(t, page, string(render.BlogPlaceholder))
	assert.Contains(t, page, site.ClientScript)
}

func TestPortfolio_MountPushesTheme(t *testing.T) {
	p, tr := mountLive(t, staticSource{data: []byte(testDocument)}, core.Session{"header:" + theme.HintHeader: "dark"})

	p.AfterRender(context.Background())

	assert.Equal(t, []pushed{{Event: "theme", Payload: map[string]any{"mode": "dark"}}}, events(tr.take()))
}

func TestPortfolio_LoadFailure(t *testing.T) {
	p, _ := mountLive(t, staticSource{err: errors.New("gone")}, nil)

	page := renderPage(t, p)
	assert.Contains(t, page, render.LoadErrorMessage)

	require.NoError(t, p.HandleEvent(context.Background(), "terminal-submit", map[string]any{"value": "about"}))
	assert.Contains(t, renderPage(t, p), "Portfolio data is unavailable.")
}

func TestPortfolio_TerminalToggle(t *testing.T) {
	p, tr := mountLive(t, staticSource{data: []byte(testDocument)}, nil)
	p.AfterRender(context.Background())
	tr.take()

	require.NoError(t, p.HandleEvent(context.Background(), "terminal-toggle", nil))
	p.AfterRender(context.Background())

	want := []pushed{
		{Event: "visibility", Payload: map[string]any{"target": site.TerminalOverlayID, "visible": true}},
		{Event: "focus", Payload: map[string]any{"target": site.TerminalInputID}},
		{Event: "scroll-end", Payload: map[string]any{"target": site.TerminalOutputID}},
	}
	if diff := cmp.Diff(want, events(tr.take())); diff != "" {
		t.Errorf("pushes mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, p.HandleEvent(context.Background(), "terminal-outside", nil))
	p.AfterRender(context.Background())
	assert.Equal(t, []pushed{{Event: "visibility", Payload: map[string]any{"target": site.TerminalOverlayID, "visible": false}}}, events(tr.take()))

	// Closing a closed terminal pushes nothing.
	require.NoError(t, p.HandleEvent(context.Background(), "terminal-close", nil))
	p.AfterRender(context.Background())
	assert.Empty(t, tr.take())
}

func TestPortfolio_SubmitCommand(t *testing.T) {
	p, tr := mountLive(t, staticSource{data: []byte(testDocument)}, nil)
	p.AfterRender(context.Background())
	tr.take()

	require.NoError(t, p.HandleEvent(context.Background(), "terminal-submit", map[string]any{"value": "projects"}))
	p.AfterRender(context.Background())

	got := events(tr.take())
	require.Len(t, got, 2)
	assert.Equal(t, pushed{Event: "scroll", Payload: map[string]any{"target": "projects"}}, got[0])
	assert.Equal(t, "scroll-end", got[1].Event)

	page := renderPage(t, p)
	assert.Contains(t, page, `<span class="text-white">projects</span>`)
	assert.Contains(t, page, "1. Ledger - Books.")
}

func TestPortfolio_ThemeToggle(t *testing.T) {
	p, tr := mountLive(t, staticSource{data: []byte(testDocument)}, nil)
	p.AfterRender(context.Background())
	tr.take()

	require.NoError(t, p.HandleEvent(context.Background(), EventThemeToggle, nil))
	p.AfterRender(context.Background())

	assert.Equal(t, []pushed{
		{Event: "prefs", Payload: map[string]any{"theme": "dark"}},
		{Event: "theme", Payload: map[string]any{"mode": "dark"}},
	}, events(tr.take()))
	assert.Contains(t, renderPage(t, p), site.ThemeIcon(true))

	// Back to the hinted mode clears the saved value.
	require.NoError(t, p.HandleEvent(context.Background(), EventThemeToggle, nil))
	p.AfterRender(context.Background())
	assert.Equal(t, []pushed{
		{Event: "prefs", Payload: map[string]any{"theme": ""}},
		{Event: "theme", Payload: map[string]any{"mode": "light"}},
	}, events(tr.take()))
}

func TestPortfolio_ContentChanged(t *testing.T) {
	p, tr := mountLive(t, staticSource{data: []byte(testDocument)}, nil)
	p.AfterRender(context.Background())
	tr.take()

	require.NoError(t, p.HandleInfo(context.Background(), ContentChanged{}))
	p.AfterRender(context.Background())

	got := tr.take()
	require.Len(t, got, 1)
	assert.Equal(t, "reload", got[0].Event)
}

func TestPortfolio_UnknownEvent(t *testing.T) {
	p, _ := mountLive(t, staticSource{data: []byte(testDocument)}, nil)

	assert.Error(t, p.HandleEvent(context.Background(), "explode", nil))
}
