package console

import (
	"context"
	"html"
	"strings"
)

// EventKind names an input the page or terminal front end can deliver.
type EventKind string

const (
	EventToggle       EventKind = "terminal-toggle"
	EventClose        EventKind = "terminal-close"
	EventOutsideClick EventKind = "terminal-outside"
	EventInput        EventKind = "terminal-input"
	EventSubmit       EventKind = "terminal-submit"
)

// Registrar is the event source a session is attached to.
type Registrar interface {
	On(kind EventKind, fn func(value string))
}

// Attach routes the console events from r to s. The submit event carries
// the current input value, which replaces the buffer before running.
func Attach(ctx context.Context, s *Session, r Registrar) {
	r.On(EventToggle, func(string) { s.Toggle() })
	r.On(EventClose, func(string) { s.Close() })
	r.On(EventOutsideClick, func(string) { s.Close() })
	r.On(EventInput, s.SetInput)
	r.On(EventSubmit, func(value string) {
		s.SetInput(value)
		s.Submit(ctx)
	})
}

// Mux is a Registrar that dispatches events by kind.
type Mux struct {
	handlers map[EventKind]func(string)
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{handlers: make(map[EventKind]func(string))}
}

// On implements Registrar. A later registration replaces an earlier one.
func (m *Mux) On(kind EventKind, fn func(value string)) {
	m.handlers[kind] = fn
}

// Fire runs the handler for kind and reports whether one was registered.
func (m *Mux) Fire(kind EventKind, value string) bool {
	fn, ok := m.handlers[kind]
	if !ok {
		return false
	}
	fn(value)
	return true
}

// Prompt is shown before echoed input in character terminals.
const Prompt = "➜ ~ "

// LogHTML renders the output log for the page. Echoed input is escaped.
func LogHTML(entries []Entry) string {
	var sb strings.Builder

	for _, e := range entries {
		switch e.Kind {
		case EntryEcho:
			sb.WriteString(`<div><span class="text-primary font-bold">➜</span> <span class="text-secondary font-bold">~</span> `)
			sb.WriteString(`<span class="text-white">` + html.EscapeString(e.Input) + `</span></div>`)
		case EntryResponse:
			sb.WriteString(`<div class="mb-2 animate-fade-in">` + e.Output.HTML() + `</div>`)
		}
	}

	return sb.String()
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
