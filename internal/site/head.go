package site

import (
	"fmt"
	"html"
	"strings"
)

// TailwindCDN serves the utility CSS runtime used by the page.
const TailwindCDN = "https://cdn.tailwindcss.com"

// renderHead generates the <head> section with SEO, Open Graph and JSON-LD.
func renderHead(meta Meta, nonce string) string {
	var sb strings.Builder

	title := meta.Title
	if title == "" {
		title = meta.Owner
	}

	sb.WriteString("<head>\n")
	sb.WriteString(`<meta charset="UTF-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(title)))

	if meta.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="description" content="%s">`+"\n", html.EscapeString(meta.Description)))
	}
	if meta.Owner != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="author" content="%s">`+"\n", html.EscapeString(meta.Owner)))
	}
	if meta.URL != "" {
		sb.WriteString(fmt.Sprintf(`<link rel="canonical" href="%s">`+"\n", html.EscapeString(meta.URL)))
	}
	sb.WriteString(fmt.Sprintf(`<meta name="theme-color" content="%s">`+"\n", Colors["bg"]))

	sb.WriteString(renderOpenGraph(meta, title))
	sb.WriteString(renderJSONLD(meta))

	sb.WriteString(`<link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>&gt;_</text></svg>">` + "\n")

	sb.WriteString(`<script src="` + TailwindCDN + `"></script>` + "\n")
	sb.WriteString(scriptTag(nonce, tailwindConfig()))

	sb.WriteString("<style>\n")
	sb.WriteString(customCSS)
	sb.WriteString("</style>\n")

	sb.WriteString("</head>\n")
	return sb.String()
}

func renderOpenGraph(meta Meta, title string) string {
	var sb strings.Builder

	sb.WriteString(`<meta property="og:type" content="profile">` + "\n")
	sb.WriteString(fmt.Sprintf(`<meta property="og:title" content="%s">`+"\n", html.EscapeString(title)))
	if meta.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:description" content="%s">`+"\n", html.EscapeString(meta.Description)))
	}
	if meta.URL != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:url" content="%s">`+"\n", html.EscapeString(meta.URL)))
	}

	return sb.String()
}

func renderJSONLD(meta Meta) string {
	if meta.Owner == "" {
		return ""
	}

	jsonLD := fmt.Sprintf(`{
  "@context": "https://schema.org",
  "@type": "Person",
  "name": %q,
  "description": %q,
  "url": %q
}`, meta.Owner, meta.Description, meta.URL)

	// A literal "</" would end the script element early.
	jsonLD = strings.ReplaceAll(jsonLD, "</", `<\/`)
	return fmt.Sprintf(`<script type="application/ld+json">%s</script>`+"\n", jsonLD)
}

func scriptTag(nonce, body string) string {
	if nonce == "" {
		return "<script>" + body + "</script>\n"
	}
	return fmt.Sprintf(`<script nonce="%s">%s</script>`+"\n", html.EscapeString(nonce), body)
}
