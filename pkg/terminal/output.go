package terminal

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Tone is the colour family of a response.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneBlue
	TonePurple
	ToneOrange
	ToneGreen
	ToneYellow
	ToneDenied
	ToneError
)

var toneClasses = map[Tone]string{
	ToneNeutral: "text-slate-300",
	ToneBlue:    "text-blue-400",
	TonePurple:  "text-purple-400",
	ToneOrange:  "text-orange-400",
	ToneGreen:   "text-green-400",
	ToneYellow:  "text-yellow-400",
	ToneDenied:  "text-red-500 font-bold",
	ToneError:   "text-red-400",
}

// Class returns the CSS classes for the tone.
func (t Tone) Class() string {
	return toneClasses[t]
}

// HelpEntry is one line of the help listing.
type HelpEntry struct {
	Name        Command
	Description string
}

// Output is the response to one command.
type Output struct {
	Tone Tone

	// Lines are shown one per row. They are trusted markup unless Escape
	// is set.
	Lines  []string
	Escape bool

	// Heading and Entries are used by the help listing.
	Heading string
	Entries []HelpEntry

	// Note is a dim line below the response.
	Note string
}

// HTML renders the output for the page terminal.
func (o *Output) HTML() string {
	var sb strings.Builder

	sb.WriteString(`<div class="` + o.Tone.Class() + `">`)
	if o.Heading != "" {
		sb.WriteString(`<span class="text-primary">` + html.EscapeString(o.Heading) + `</span>`)
	}
	for _, e := range o.Entries {
		sb.WriteString(`<br>- <span class="text-yellow-400">` + string(e.Name) + `</span>: ` + html.EscapeString(e.Description))
	}
	for i, line := range o.Lines {
		if i > 0 {
			sb.WriteString("<br>")
		}
		if o.Escape {
			line = html.EscapeString(line)
		}
		sb.WriteString(line)
	}
	sb.WriteString(`</div>`)

	if o.Note != "" {
		sb.WriteString(`<div class="text-xs text-slate-500 mt-1">` + html.EscapeString(o.Note) + `</div>`)
	}

	return sb.String()
}

// Text renders the output as plain lines for a character terminal. Markup
// in trusted lines is dropped and line breaks become newlines.
func (o *Output) Text() string {
	var lines []string

	if o.Heading != "" {
		lines = append(lines, o.Heading)
	}
	for _, e := range o.Entries {
		lines = append(lines, "- "+string(e.Name)+": "+e.Description)
	}
	for _, line := range o.Lines {
		if !o.Escape {
			line = plain(line)
		}
		lines = append(lines, line)
	}
	if o.Note != "" {
		lines = append(lines, o.Note)
	}

	return strings.Join(lines, "\n")
}

var (
	stripPolicy = bluemonday.StrictPolicy()
	breaks      = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n")
)

func plain(markup string) string {
	return html.UnescapeString(stripPolicy.Sanitize(breaks.Replace(markup)))
}
