// Package render projects a portfolio document into HTML fragments.
//
// Every projection is a pure function of the document. Text from the
// document is inserted verbatim: the data file is same-origin site
// configuration, not visitor input.
package render

import (
	"fmt"
	"strings"

	"github.com/gabrielmiguelok/golivefolio/pkg/portfolio"
)

// Fragment is a piece of trusted HTML markup.
type Fragment string

func (f Fragment) String() string {
	return string(f)
}

// Section names a page region.
type Section string

const (
	SectionAbout    Section = "about"
	SectionSkills   Section = "skills"
	SectionProjects Section = "projects"
	SectionBlog     Section = "blog"
	SectionContact  Section = "contact"
)

// Anchor is the element id the page uses for the section.
func (s Section) Anchor() string {
	return string(s)
}

// BlogPlaceholder is shown when the document has no posts.
const BlogPlaceholder Fragment = `<p class="text-slate-500">Coming soon...</p>`

// Profile renders the about header with the description and skills text.
func Profile(doc *portfolio.Document) Fragment {
	var sb strings.Builder

	sb.WriteString(`<h2 class="text-3xl font-bold text-slate-900 dark:text-white mb-6 flex items-center gap-3">`)
	sb.WriteString(`<span class="text-primary">01.</span> About Me</h2>`)
	sb.WriteString(`<p class="text-slate-600 dark:text-slate-400 mb-6 leading-relaxed">`)
	sb.WriteString(doc.Profile.Description)
	sb.WriteString(`</p>`)
	sb.WriteString(`<p class="text-slate-600 dark:text-slate-400 mb-8 leading-relaxed">`)
	sb.WriteString(doc.Profile.SkillsDescription)
	sb.WriteString(`</p>`)

	return Fragment(sb.String())
}

// Skills renders one tile per skill.
func Skills(doc *portfolio.Document) Fragment {
	var sb strings.Builder

	for _, skill := range doc.Skills {
		sb.WriteString(`<div class="flex items-center gap-2 p-3 bg-white dark:bg-slate-800 rounded-lg shadow-sm border border-slate-100 dark:border-slate-700 hover:border-primary transition-colors">`)
		sb.WriteString(`<span class="text-primary text-xl">▹</span>`)
		sb.WriteString(fmt.Sprintf(`<span class="text-sm font-medium text-slate-700 dark:text-slate-300">%s</span>`, skill.Name))
		sb.WriteString(`</div>`)
	}

	return Fragment(sb.String())
}

const (
	repoIcon = `<svg class="w-5 h-5" fill="none" stroke="currentColor" viewBox="0 0 24 24"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M10 20l4-16m4 4l4 4-4 4M6 16l-4-4 4-4" /></svg>`
	demoIcon = `<svg class="w-5 h-5" fill="none" stroke="currentColor" viewBox="0 0 24 24"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M10 6H6a2 2 0 00-2 2v10a2 2 0 002 2h10a2 2 0 002-2v-4M14 4h6m0 0v6m0-6L10 14" /></svg>`
)

// Projects renders one card per project.
func Projects(doc *portfolio.Document) Fragment {
	var sb strings.Builder

	for _, p := range doc.Projects {
		writeProject(&sb, p)
	}

	return Fragment(sb.String())
}

func writeProject(sb *strings.Builder, p portfolio.Project) {
	sb.WriteString(`<div class="project-card group relative bg-white dark:bg-card rounded-xl overflow-hidden border border-slate-200 dark:border-slate-800 hover:border-primary/50 transition-all duration-300 hover:-translate-y-2 hover:shadow-2xl hover:shadow-primary/10 flex flex-col h-full">`)

	sb.WriteString(`<div class="h-48 bg-slate-100 dark:bg-slate-700 overflow-hidden relative">`)
	sb.WriteString(`<div class="absolute inset-0 bg-primary/20 group-hover:opacity-0 transition-opacity z-10"></div>`)
	sb.WriteString(fmt.Sprintf(`<img src="%s" alt="%s" class="w-full h-full object-cover transform group-hover:scale-110 transition-transform duration-500">`, p.Image, p.Title))
	sb.WriteString(`</div>`)

	sb.WriteString(`<div class="p-6 flex flex-col flex-1">`)
	sb.WriteString(`<div class="flex justify-between items-start mb-4">`)
	sb.WriteString(fmt.Sprintf(`<h3 class="text-xl font-bold text-slate-900 dark:text-white group-hover:text-primary transition-colors">%s</h3>`, p.Title))
	sb.WriteString(`<div class="flex gap-3 text-slate-400">`)
	sb.WriteString(fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener" class="hover:text-primary transition-colors">%s</a>`, p.Links.Repo, repoIcon))
	sb.WriteString(fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener" class="hover:text-primary transition-colors">%s</a>`, p.Links.Demo, demoIcon))
	sb.WriteString(`</div></div>`)

	sb.WriteString(`<p class="text-slate-600 dark:text-slate-400 text-sm mb-6 line-clamp-3 flex-1">`)
	sb.WriteString(p.Description)
	sb.WriteString(`</p>`)

	sb.WriteString(`<ul class="flex flex-wrap gap-2 text-xs font-mono text-primary/80">`)
	for _, tech := range p.Tech {
		sb.WriteString(fmt.Sprintf(`<li class="px-2 py-1 bg-primary/10 rounded">%s</li>`, tech))
	}
	sb.WriteString(`</ul>`)

	sb.WriteString(`</div></div>`)
}

// Blog renders one card per post, or BlogPlaceholder when there are none.
func Blog(doc *portfolio.Document) Fragment {
	if !doc.HasBlog() {
		return BlogPlaceholder
	}

	var sb strings.Builder
	for _, post := range doc.Blog {
		sb.WriteString(`<div class="blog-card bg-white dark:bg-card p-6 rounded-xl border border-slate-200 dark:border-slate-800 hover:border-primary/50 transition-all hover:shadow-lg">`)
		sb.WriteString(fmt.Sprintf(`<div class="text-xs font-mono text-primary mb-2">%s</div>`, post.Date))
		sb.WriteString(fmt.Sprintf(`<h3 class="text-xl font-bold text-slate-900 dark:text-white mb-3 hover:text-primary cursor-pointer transition-colors">%s</h3>`, post.Title))
		sb.WriteString(`<p class="text-slate-600 dark:text-slate-400 text-sm line-clamp-3">`)
		sb.WriteString(post.Excerpt)
		sb.WriteString(`</p>`)
		sb.WriteString(`<a href="#" class="inline-block mt-4 text-sm font-medium text-primary hover:underline">Read more →</a>`)
		sb.WriteString(`</div>`)
	}

	return Fragment(sb.String())
}

// LoadErrorMessage is the text shown when the document could not be loaded.
const LoadErrorMessage = "Failed to load projects."

// LoadError is the fragment placed in the projects region after a failed
// load. The error itself is logged, not shown.
func LoadError() Fragment {
	return Fragment(`<p class="text-red-500">` + LoadErrorMessage + `</p>`)
}

// Page holds the fragment for every rendered region. A zero field means the
// region stays empty.
type Page struct {
	About    Fragment
	Skills   Fragment
	Projects Fragment
	Blog     Fragment
}

// Sections renders every region. A nil document yields the load error in
// the projects region and leaves the others empty.
func Sections(doc *portfolio.Document) Page {
	if doc == nil {
		return Page{Projects: LoadError()}
	}
	return Page{
		About:    Profile(doc),
		Skills:   Skills(doc),
		Projects: Projects(doc),
		Blog:     Blog(doc),
	}
}
