// Package portfolio defines the portfolio document: the profile, skills,
// projects and blog posts a page is rendered from.
//
// A Document is loaded once per session and never mutated afterwards.
// Renderers and command handlers only read from it.
package portfolio

import (
	"encoding/json"
	"fmt"
)

// Document is the root of the portfolio data source.
type Document struct {
	Profile  Profile    `json:"profile"`
	Skills   []Skill    `json:"skills"`
	Projects []Project  `json:"projects"`
	Blog     []BlogPost `json:"blog,omitempty"`
}

// Profile holds the free-form text blocks about the owner.
type Profile struct {
	Description       string `json:"description"`
	SkillsDescription string `json:"skills_description"`
	ContactText       string `json:"contact_text"`
}

// Skill is a single entry of the skills grid.
type Skill struct {
	Name string `json:"name"`
}

// Project is a showcased project card.
type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Tech        []string `json:"tech"`
	Links       Links    `json:"links"`
}

// Links are the outbound links of a project.
type Links struct {
	Repo string `json:"repo"`
	Demo string `json:"demo"`
}

// BlogPost is a blog card. Date is a display string, not a timestamp.
type BlogPost struct {
	Title   string `json:"title"`
	Date    string `json:"date"`
	Excerpt string `json:"excerpt"`
}

// HasBlog reports whether the document carries at least one post.
// An absent blog is a legal state, not an error.
func (d *Document) HasBlog() bool {
	return d != nil && len(d.Blog) > 0
}

// SkillNames returns the skill names in source order.
func (d *Document) SkillNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, len(d.Skills))
	for i, s := range d.Skills {
		names[i] = s.Name
	}
	return names
}

// Parse decodes a document from raw JSON bytes.
// Unknown keys are ignored; no further validation is applied.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode portfolio document: %w", err)
	}
	return &doc, nil
}
