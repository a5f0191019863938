package router

import (
	"hash/fnv"
	"strings"

	"github.com/gabrielmiguelok/golivefolio/pkg/core"
)

// buildDiffPayload compares the slots of html against the hashes of the
// previous render and returns the ones that changed. Slots without any
// markup or entity go out as text; the rest as HTML.
func buildDiffPayload(session *LiveViewSession, html string) *core.DiffPayload {
	payload := &core.DiffPayload{
		Version:   session.nextVersion(),
		Slots:     make(map[string]string),
		HTMLSlots: make(map[string]string),
	}

	textSlots, htmlSlots := extractSlots(html)
	prev := session.GetSlotHashes()
	next := hashSlots(textSlots, htmlSlots)

	for id, content := range textSlots {
		if prev == nil || prev[id] != next[id] {
			payload.Slots[id] = content
		}
	}
	for id, content := range htmlSlots {
		if prev == nil || prev[id] != next[id] {
			payload.HTMLSlots[id] = content
		}
	}

	session.SetSlotHashes(next)

	// Without any slot the client can only replace the whole view.
	if len(textSlots) == 0 && len(htmlSlots) == 0 {
		payload.Full = html
	}

	return payload
}

func hashSlots(textSlots, htmlSlots map[string]string) map[string]uint64 {
	hashes := make(map[string]uint64, len(textSlots)+len(htmlSlots))
	for id, content := range textSlots {
		hashes[id] = hashSlotContent(content)
	}
	for id, content := range htmlSlots {
		hashes[id] = hashSlotContent(content)
	}
	return hashes
}

// hashSlotContent computes the FNV-64a hash of content.
func hashSlotContent(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(content))
	return h.Sum64()
}

// extractSlots extracts data-slot content in a single pass. A slot nested
// inside another slot is part of its parent's content and is not reported
// on its own.
func extractSlots(html string) (textSlots, htmlSlots map[string]string) {
	textSlots = make(map[string]string)
	htmlSlots = make(map[string]string)

	const marker = `data-slot="`
	markerLen := len(marker)
	htmlLen := len(html)
	pos := 0

	for pos < htmlLen {
		idx := strings.Index(html[pos:], marker)
		if idx == -1 {
			break
		}

		slotStart := pos + idx + markerLen
		slotEnd := strings.IndexByte(html[slotStart:], '"')
		if slotEnd == -1 {
			pos = slotStart
			continue
		}
		slotID := html[slotStart : slotStart+slotEnd]

		tagStart := pos + idx
		for tagStart > 0 && html[tagStart] != '<' {
			tagStart--
		}

		tagNameEnd := tagStart + 1
		for tagNameEnd < htmlLen && html[tagNameEnd] != ' ' && html[tagNameEnd] != '>' && html[tagNameEnd] != '/' {
			tagNameEnd++
		}
		tagName := html[tagStart+1 : tagNameEnd]

		closeAngle := strings.IndexByte(html[slotStart+slotEnd:], '>')
		if closeAngle == -1 {
			pos = slotStart + slotEnd
			continue
		}
		contentStart := slotStart + slotEnd + closeAngle + 1

		// Match the closing tag by depth so same-named children are skipped.
		openTag := "<" + tagName
		closeTag := "</" + tagName
		depth := 1
		searchPos := contentStart
		contentEnd := -1

		for depth > 0 && searchPos < htmlLen {
			nextOpen := strings.Index(html[searchPos:], openTag)
			nextClose := strings.Index(html[searchPos:], closeTag)
			if nextClose == -1 {
				break
			}

			if nextOpen != -1 {
				nextOpen += searchPos
			} else {
				nextOpen = htmlLen
			}
			nextClose += searchPos

			if nextOpen < nextClose {
				after := nextOpen + len(openTag)
				if after < htmlLen {
					switch html[after] {
					case ' ', '>', '/', '\t', '\n':
						depth++
					}
				}
				searchPos = nextOpen + len(openTag)
			} else {
				depth--
				if depth == 0 {
					contentEnd = nextClose
				}
				searchPos = nextClose + len(closeTag)
			}
		}

		if contentEnd == -1 {
			pos = contentStart
			continue
		}

		content := strings.TrimSpace(html[contentStart:contentEnd])
		if strings.ContainsAny(content, "<>&") {
			htmlSlots[slotID] = content
		} else {
			textSlots[slotID] = content
		}

		pos = searchPos
	}

	return textSlots, htmlSlots
}
