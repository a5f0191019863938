// Package theme keeps the dark/light display preference.
//
// The preference lives in a Slot holding the literal "dark" or "light".
// When the slot is empty the system Hint decides, and the slot stays empty
// until the visitor toggles.
package theme

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gabrielmiguelok/golivefolio/pkg/state"
)

// Mode is a display mode.
type Mode string

const (
	Dark  Mode = "dark"
	Light Mode = "light"
)

// SlotKey is the key the preference is persisted under.
const SlotKey = "theme"

// ParseMode accepts exactly "dark" or "light", ignoring case and spaces.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Dark:
		return Dark, true
	case Light:
		return Light, true
	}
	return "", false
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

func (m Mode) String() string {
	return string(m)
}

// Slot is the persistent preference slot.
type Slot interface {
	// Load reports the stored mode. ok is false when nothing is stored.
	Load(ctx context.Context) (mode Mode, ok bool, err error)
	Save(ctx context.Context, mode Mode) error
	Clear(ctx context.Context) error
}

// Hint is the system-level signal used while the slot is empty.
type Hint interface {
	PrefersDark() bool
}

// HintFunc adapts a function to Hint.
type HintFunc func() bool

func (f HintFunc) PrefersDark() bool { return f() }

// Fixed is a Hint with a constant answer.
type Fixed bool

func (f Fixed) PrefersDark() bool { return bool(f) }

// HeaderHint is the browser's Sec-CH-Prefers-Color-Scheme client hint.
// Browsers only send it after the server lists it in Accept-CH.
type HeaderHint string

// HintHeader is the request header carrying the client hint.
const HintHeader = "Sec-CH-Prefers-Color-Scheme"

// PrefersDark reports whether the hint asks for dark.
func (h HeaderHint) PrefersDark() bool {
	return strings.EqualFold(strings.Trim(string(h), `" `), "dark")
}

// StoreSlot persists the preference in a state.Store.
type StoreSlot struct {
	Store state.Store
}

// Load implements Slot. Values other than "dark" and "light" count as unset.
func (s StoreSlot) Load(ctx context.Context) (Mode, bool, error) {
	data, err := s.Store.Get(ctx, SlotKey)
	if errors.Is(err, state.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load theme: %w", err)
	}
	mode, ok := ParseMode(string(data))
	return mode, ok, nil
}

// Save implements Slot.
func (s StoreSlot) Save(ctx context.Context, mode Mode) error {
	if err := s.Store.Set(ctx, SlotKey, []byte(mode)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Clear implements Slot.
func (s StoreSlot) Clear(ctx context.Context) error {
	if err := s.Store.Delete(ctx, SlotKey); err != nil {
		return fmt.Errorf("clear theme: %w", err)
	}
	return nil
}

// Preference is the current display mode of one session.
type Preference struct {
	slot Slot
	mode Mode

	// initial is the mode at start-up when the slot was empty, so toggling
	// back to it empties the slot again.
	initial Mode
	mu      sync.Mutex
}

// New reads the slot, falling back to hint when the slot is empty. A slot
// read error also falls back to the hint and is returned alongside a usable
// Preference.
func New(ctx context.Context, slot Slot, hint Hint) (*Preference, error) {
	p := &Preference{slot: slot}

	mode, ok, err := slot.Load(ctx)
	if ok && err == nil {
		p.mode = mode
		return p, nil
	}

	p.mode = Light
	if hint != nil && hint.PrefersDark() {
		p.mode = Dark
	}
	p.initial = p.mode
	return p, err
}

// Mode returns the current mode.
func (p *Preference) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Dark reports whether the current mode is dark.
func (p *Preference) Dark() bool {
	return p.Mode() == Dark
}

// Toggle flips the mode and persists it. The in-memory mode flips even if
// persisting fails.
func (p *Preference) Toggle(ctx context.Context) (Mode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.mode = p.mode.Toggle()

	var err error
	if p.initial != "" && p.mode == p.initial {
		err = p.slot.Clear(ctx)
	} else {
		err = p.slot.Save(ctx, p.mode)
	}
	return p.mode, err
}
