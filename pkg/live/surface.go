package live

import (
	"github.com/gabrielmiguelok/golivefolio/internal/site"
	"github.com/gabrielmiguelok/golivefolio/pkg/render"
	"github.com/gabrielmiguelok/golivefolio/pkg/theme"
)

// pushEvent is a client event waiting for the end of the current render.
type pushEvent struct {
	Event   string
	Payload map[string]any
}

// surface queues the console's page effects as push events. It is only
// touched from the session loop.
type surface struct {
	pending []pushEvent
}

func (s *surface) push(event string, payload map[string]any) {
	s.pending = append(s.pending, pushEvent{Event: event, Payload: payload})
}

// pushFirst queues an event ahead of everything already pending.
func (s *surface) pushFirst(event string, payload map[string]any) {
	s.pending = append([]pushEvent{{Event: event, Payload: payload}}, s.pending...)
}

func (s *surface) drain() []pushEvent {
	out := s.pending
	s.pending = nil
	return out
}

func (s *surface) Focus() {
	s.push("focus", map[string]any{"target": site.TerminalInputID})
}

func (s *surface) ScrollLogToEnd() {
	s.push("scroll-end", map[string]any{"target": site.TerminalOutputID})
}

func (s *surface) ScrollTo(section render.Section) {
	s.push("scroll", map[string]any{"target": section.Anchor()})
}

func (s *surface) ThemeApplied(mode theme.Mode) {
	s.push("theme", map[string]any{"mode": mode.String()})
}

func (s *surface) visibility(visible bool) {
	s.pushFirst("visibility", map[string]any{"target": site.TerminalOverlayID, "visible": visible})
}
