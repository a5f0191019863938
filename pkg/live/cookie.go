package live

import (
	"context"

	"github.com/gabrielmiguelok/golivefolio/pkg/theme"
)

// ThemeCookie holds the saved display mode in the browser.
const ThemeCookie = "folio_theme"

// cookieSlot is a theme.Slot backed by the browser cookie. The server only
// sees the cookie when the session starts; changes are sent as "prefs" push
// events and the client writes the cookie.
type cookieSlot struct {
	value   string
	surface *surface
}

func (c *cookieSlot) Load(context.Context) (theme.Mode, bool, error) {
	mode, ok := theme.ParseMode(c.value)
	return mode, ok, nil
}

func (c *cookieSlot) Save(_ context.Context, mode theme.Mode) error {
	c.value = mode.String()
	c.surface.push("prefs", map[string]any{"theme": c.value})
	return nil
}

func (c *cookieSlot) Clear(context.Context) error {
	c.value = ""
	c.surface.push("prefs", map[string]any{"theme": ""})
	return nil
}
