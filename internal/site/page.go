// Package site composes the portfolio page around the rendered sections.
// The live component and the static export both render through it.
package site

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/gabrielmiguelok/golivefolio/pkg/render"
)

// Slot ids the live client patches.
const (
	SlotAbout     = "about"
	SlotSkills    = "skills"
	SlotProjects  = "projects"
	SlotBlog      = "blog"
	SlotLog       = "terminal-log"
	SlotThemeIcon = "theme-icon"
)

// Element ids the live client targets with push events.
const (
	TerminalOverlayID = "terminal-overlay"
	TerminalInputID   = "terminal-input"
	TerminalOutputID  = "terminal-output"
)

// ClientScript is the path of the live client.
const ClientScript = "/_live/folio.js"

// Meta describes the page owner and SEO metadata.
type Meta struct {
	Title       string
	Owner       string
	Description string
	Email       string
	URL         string
}

// View is everything one render of the page needs.
type View struct {
	Meta     Meta
	Dark     bool
	Sections render.Page

	// Log is the terminal output markup.
	Log             string
	TerminalVisible bool

	// Live adds the client script; static exports leave it out.
	Live  bool
	Nonce string
}

// Render writes the full page.
func Render(w io.Writer, v View) error {
	_, err := io.WriteString(w, Page(v))
	return err
}

// Page returns the full page markup.
func Page(v View) string {
	var sb strings.Builder

	htmlClass := ""
	if v.Dark {
		htmlClass = ` class="dark"`
	}

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString(fmt.Sprintf(`<html lang="en"%s>`+"\n", htmlClass))
	sb.WriteString(renderHead(v.Meta, v.Nonce))

	sb.WriteString(`<body class="bg-slate-50 dark:bg-[` + Colors["bg"] + `] text-slate-800 dark:text-slate-200 transition-colors" data-live-view="portfolio">` + "\n")
	sb.WriteString(renderNav(v))

	sb.WriteString(`<main class="max-w-5xl mx-auto px-6 pt-28 pb-20">` + "\n")
	writeSection(&sb, render.SectionAbout, "", `id="about-content"`, SlotAbout, v.Sections.About)
	writeSection(&sb, render.SectionSkills, "02. Skills", `id="skills-container" class="grid grid-cols-2 md:grid-cols-4 gap-4"`, SlotSkills, v.Sections.Skills)
	writeSection(&sb, render.SectionProjects, "03. Projects", `id="projects-container" class="grid md:grid-cols-2 gap-8"`, SlotProjects, v.Sections.Projects)
	writeSection(&sb, render.SectionBlog, "04. Blog", `id="blog-container" class="grid md:grid-cols-2 gap-8"`, SlotBlog, v.Sections.Blog)
	sb.WriteString(renderContact(v.Meta))
	sb.WriteString("</main>\n")

	sb.WriteString(renderFooter(v.Meta))
	sb.WriteString(renderTerminal(v))

	if v.Live {
		sb.WriteString(`<script src="` + ClientScript + `" defer></script>` + "\n")
	}

	sb.WriteString("</body>\n</html>")
	return sb.String()
}

func writeSection(sb *strings.Builder, section render.Section, heading, attrs, slot string, body render.Fragment) {
	sb.WriteString(fmt.Sprintf(`<section id="%s" class="py-16 scroll-mt-20">`+"\n", section.Anchor()))
	if heading != "" {
		num, title, _ := strings.Cut(heading, " ")
		sb.WriteString(`<h2 class="text-3xl font-bold text-slate-900 dark:text-white mb-8 flex items-center gap-3">`)
		sb.WriteString(`<span class="text-primary">` + num + `</span> ` + title + "</h2>\n")
	}
	sb.WriteString(fmt.Sprintf(`<div %s data-slot="%s">%s</div>`+"\n", attrs, slot, body))
	sb.WriteString("</section>\n")
}

func renderNav(v View) string {
	var sb strings.Builder

	owner := v.Meta.Owner
	if owner == "" {
		owner = "~"
	}

	sb.WriteString(`<nav class="fixed top-0 inset-x-0 z-40 backdrop-blur bg-white/70 dark:bg-slate-900/70 border-b border-slate-200 dark:border-slate-800">` + "\n")
	sb.WriteString(`<div class="max-w-5xl mx-auto px-6 h-16 flex items-center justify-between">` + "\n")
	sb.WriteString(fmt.Sprintf(`<a href="#about" class="font-mono font-bold text-primary">%s</a>`+"\n", html.EscapeString(owner)))
	sb.WriteString(`<div class="flex items-center gap-6 text-sm">` + "\n")

	for _, s := range []render.Section{render.SectionAbout, render.SectionSkills, render.SectionProjects, render.SectionBlog, render.SectionContact} {
		name := string(s)
		sb.WriteString(fmt.Sprintf(`<a href="#%s" class="hidden md:inline hover:text-primary transition-colors">%s</a>`+"\n",
			s.Anchor(), strings.ToUpper(name[:1])+name[1:]))
	}

	sb.WriteString(`<button id="terminal-toggle" lv-click="terminal-toggle" class="font-mono px-2 py-1 rounded border border-slate-300 dark:border-slate-700 hover:border-primary" aria-label="Open terminal">&gt;_</button>` + "\n")
	sb.WriteString(`<button id="theme-toggle" lv-click="theme-toggle" class="p-2 rounded hover:text-primary" aria-label="Toggle theme">`)
	sb.WriteString(`<span data-slot="` + SlotThemeIcon + `">` + ThemeIcon(v.Dark) + `</span></button>` + "\n")

	sb.WriteString("</div>\n</div>\n</nav>\n")
	return sb.String()
}

func renderContact(meta Meta) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<section id="%s" class="py-16 scroll-mt-20 text-center">`+"\n", render.SectionContact.Anchor()))
	sb.WriteString(`<h2 class="text-3xl font-bold text-slate-900 dark:text-white mb-6"><span class="text-primary">05.</span> Get In Touch</h2>` + "\n")
	sb.WriteString(`<p class="text-slate-600 dark:text-slate-400 mb-8">Type <code class="font-mono text-primary">contact</code> in the terminal, or say hello below.</p>` + "\n")
	if meta.Email != "" {
		sb.WriteString(fmt.Sprintf(`<a href="mailto:%s" class="inline-block px-6 py-3 rounded-lg border border-primary text-primary hover:bg-primary/10 transition-colors">Say Hello</a>`+"\n",
			html.EscapeString(meta.Email)))
	}
	sb.WriteString("</section>\n")

	return sb.String()
}

func renderFooter(meta Meta) string {
	owner := meta.Owner
	if owner == "" {
		return `<footer class="py-8"></footer>` + "\n"
	}
	return fmt.Sprintf(`<footer class="py-8 text-center text-xs font-mono text-slate-500">Built by %s</footer>`+"\n", html.EscapeString(owner))
}

func renderTerminal(v View) string {
	var sb strings.Builder

	hidden := " hidden"
	if v.TerminalVisible {
		hidden = ""
	}

	sb.WriteString(fmt.Sprintf(`<div id="%s" lv-click-self="terminal-outside" class="fixed inset-0 z-50 bg-black/60 backdrop-blur-sm flex items-center justify-center p-4%s">`+"\n",
		TerminalOverlayID, hidden))
	sb.WriteString(`<div class="w-full max-w-2xl rounded-xl overflow-hidden shadow-2xl border border-slate-700 bg-[` + Colors["bg"] + `] font-mono text-sm">` + "\n")

	sb.WriteString(`<div class="flex items-center justify-between px-4 py-2 bg-slate-800 border-b border-slate-700">`)
	sb.WriteString(`<div class="flex gap-2"><span class="w-3 h-3 rounded-full bg-red-500"></span><span class="w-3 h-3 rounded-full bg-yellow-500"></span><span class="w-3 h-3 rounded-full bg-green-500"></span></div>`)
	sb.WriteString(`<span class="text-slate-400 text-xs">guest@portfolio: ~</span>`)
	sb.WriteString(`<button id="close-terminal" lv-click="terminal-close" class="text-slate-400 hover:text-white" aria-label="Close terminal">&times;</button>`)
	sb.WriteString("</div>\n")

	sb.WriteString(fmt.Sprintf(`<div id="%s" class="h-80 overflow-y-auto p-4 text-slate-300">`, TerminalOutputID))
	sb.WriteString(`<div class="text-slate-500 mb-2">Welcome! Type <span class="text-yellow-400">help</span> to see available commands.</div>`)
	sb.WriteString(`<div data-slot="` + SlotLog + `">` + v.Log + `</div>`)
	sb.WriteString("</div>\n")

	sb.WriteString(`<form lv-submit="terminal-submit" class="flex items-center gap-2 px-4 py-3 border-t border-slate-800">`)
	sb.WriteString(`<span class="text-primary font-bold">➜</span> <span class="text-secondary font-bold">~</span>`)
	sb.WriteString(fmt.Sprintf(`<input id="%s" name="value" lv-change="terminal-input" autocomplete="off" spellcheck="false" class="flex-1 bg-transparent outline-none text-white caret-primary">`, TerminalInputID))
	sb.WriteString("</form>\n")

	sb.WriteString("</div>\n</div>\n")
	return sb.String()
}

const (
	sunIcon  = `<svg class="w-5 h-5" fill="none" stroke="currentColor" viewBox="0 0 24 24"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M12 3v1m0 16v1m9-9h-1M4 12H3m15.364 6.364l-.707-.707M6.343 6.343l-.707-.707m12.728 0l-.707.707M6.343 17.657l-.707.707M16 12a4 4 0 11-8 0 4 4 0 018 0z" /></svg>`
	moonIcon = `<svg class="w-5 h-5" fill="none" stroke="currentColor" viewBox="0 0 24 24"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M20.354 15.354A9 9 0 018.646 3.646 9.003 9.003 0 0012 21a9.003 9.003 0 008.354-5.646z" /></svg>`
)

// ThemeIcon is the toggle icon: a sun while dark, a moon while light.
func ThemeIcon(dark bool) string {
	if dark {
		return sunIcon
	}
	return moonIcon
}
