package site

import (
	"fmt"
	"strings"
)

// Colors is the palette shared by the utility config and the custom CSS.
var Colors = map[string]string{
	"bg":        "#0F172A", // page background in dark mode
	"card":      "#1E293B", // cards in dark mode
	"primary":   "#8B5CF6",
	"secondary": "#22D3EE",
}

// FontMono is used by the terminal.
var FontMono = `'SF Mono', SFMono-Regular, ui-monospace, 'DejaVu Sans Mono', Menlo, Consolas, monospace`

// tailwindConfig switches dark mode to the html class and registers the
// palette as utility colors.
func tailwindConfig() string {
	var colors strings.Builder
	for _, name := range []string{"primary", "secondary", "card"} {
		colors.WriteString(fmt.Sprintf("%s:%q,", name, Colors[name]))
	}
	return fmt.Sprintf(`tailwind.config={darkMode:"class",theme:{extend:{colors:{%s},fontFamily:{mono:[%q]}}}};`,
		colors.String(), FontMono)
}

var customCSS = `html { scroll-behavior: smooth; }
.animate-fade-in { animation: fade-in 0.3s ease-out; }
@keyframes fade-in {
  from { opacity: 0; transform: translateY(4px); }
  to { opacity: 1; transform: translateY(0); }
}
#terminal-output::-webkit-scrollbar { width: 6px; }
#terminal-output::-webkit-scrollbar-thumb { background: #334155; border-radius: 3px; }
.project-card img { background: #334155; }
`
