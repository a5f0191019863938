// Package console holds the state of one command console: whether it is
// open, the pending input and the output log.
package console

import (
	"context"
	"sync"

	"github.com/gabrielmiguelok/golivefolio/pkg/render"
	"github.com/gabrielmiguelok/golivefolio/pkg/terminal"
	"github.com/gabrielmiguelok/golivefolio/pkg/theme"
)

// EntryKind distinguishes echoed input from command output.
type EntryKind int

const (
	EntryEcho EntryKind = iota
	EntryResponse
)

// Entry is one line group in the output log.
type Entry struct {
	Kind EntryKind

	// Input is set for echoes.
	Input string

	// Output is set for responses.
	Output *terminal.Output
}

// Surface is whatever displays the console. Calls are requests; the
// session does not wait for them to take effect.
type Surface interface {
	Focus()
	ScrollLogToEnd()
	ScrollTo(section render.Section)
	ThemeApplied(mode theme.Mode)
}

// NopSurface ignores every request.
type NopSurface struct{}

func (NopSurface) Focus()                  {}
func (NopSurface) ScrollLogToEnd()         {}
func (NopSurface) ScrollTo(render.Section) {}
func (NopSurface) ThemeApplied(theme.Mode) {}

// Dispatcher resolves input lines. *terminal.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, input string) (terminal.Result, bool)
}

// Session is the console state machine. It is safe for concurrent use,
// though every caller in this module drives it from a single goroutine.
type Session struct {
	dispatcher Dispatcher
	surface    Surface

	mu      sync.Mutex
	visible bool
	input   string
	log     []Entry
}

// New creates a hidden session with an empty log.
func New(dispatcher Dispatcher, surface Surface) *Session {
	if surface == nil {
		surface = NopSurface{}
	}
	return &Session{
		dispatcher: dispatcher,
		surface:    surface,
	}
}

// Visible reports whether the console is open.
func (s *Session) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Input returns the pending input.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Log returns a copy of the output log.
func (s *Session) Log() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.log...)
}

// Toggle flips visibility. Opening focuses the input and scrolls the log
// to its end.
func (s *Session) Toggle() {
	s.mu.Lock()
	s.visible = !s.visible
	opened := s.visible
	s.mu.Unlock()

	if opened {
		s.surface.Focus()
		s.surface.ScrollLogToEnd()
	}
}

// Close hides the console. It never opens it.
func (s *Session) Close() {
	s.mu.Lock()
	s.visible = false
	s.mu.Unlock()
}

// SetInput replaces the pending input.
func (s *Session) SetInput(input string) {
	s.mu.Lock()
	s.input = input
	s.mu.Unlock()
}

// Submit runs the pending input. Blank input changes nothing and returns
// false.
func (s *Session) Submit(ctx context.Context) (terminal.Result, bool) {
	s.mu.Lock()
	input := s.input
	s.mu.Unlock()

	res, ok := s.dispatcher.Dispatch(ctx, input)
	if !ok {
		return res, false
	}

	s.mu.Lock()
	s.log = append(s.log, Entry{Kind: EntryEcho, Input: trimmed(input)})
	s.mu.Unlock()

	for _, effect := range res.Effects {
		s.apply(effect)
	}

	s.mu.Lock()
	if res.Output != nil {
		s.log = append(s.log, Entry{Kind: EntryResponse, Output: res.Output})
	}
	s.input = ""
	s.mu.Unlock()

	s.surface.ScrollLogToEnd()
	return res, true
}

func (s *Session) apply(effect terminal.Effect) {
	switch effect.Kind {
	case terminal.EffectScroll:
		s.surface.ScrollTo(effect.Section)
	case terminal.EffectClear:
		s.mu.Lock()
		s.log = nil
		s.mu.Unlock()
	case terminal.EffectTheme:
		s.surface.ThemeApplied(effect.Mode)
	}
}
