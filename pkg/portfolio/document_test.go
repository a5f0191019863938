package portfolio

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleJSON = `{
  "profile": {
    "description": "Backend engineer.",
    "skills_description": "Mostly Go.",
    "contact_text": "mail me"
  },
  "skills": [{"name": "Go"}, {"name": "SQL"}, {"name": "Go"}],
  "projects": [
    {
      "title": "folio",
      "description": "A portfolio",
      "image": "/img/folio.png",
      "tech": ["go", "websocket"],
      "links": {"repo": "https://example.com/repo", "demo": "https://example.com/demo"}
    }
  ],
  "blog": [{"title": "Hello", "date": "Jan 2025", "excerpt": "First post"}],
  "unknown": true
}`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := &Document{
		Profile: Profile{
			Description:       "Backend engineer.",
			SkillsDescription: "Mostly Go.",
			ContactText:       "mail me",
		},
		Skills: []Skill{{Name: "Go"}, {Name: "SQL"}, {Name: "Go"}},
		Projects: []Project{{
			Title:       "folio",
			Description: "A portfolio",
			Image:       "/img/folio.png",
			Tech:        []string{"go", "websocket"},
			Links:       Links{Repo: "https://example.com/repo", Demo: "https://example.com/demo"},
		}},
		Blog: []BlogPost{{Title: "Hello", Date: "Jan 2025", Excerpt: "First post"}},
	}

	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_AbsentBlog(t *testing.T) {
	doc, err := Parse([]byte(`{"profile":{"description":"D"},"skills":[],"projects":[]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.HasBlog() {
		t.Error("expected HasBlog to be false for an absent blog")
	}
	if doc.Blog != nil {
		t.Errorf("expected nil blog, got %v", doc.Blog)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte(`{"profile":`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestParse_DuplicateSkills(t *testing.T) {
	doc, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := doc.SkillNames(); !cmp.Equal(got, []string{"Go", "SQL", "Go"}) {
		t.Errorf("SkillNames = %v, want source order with duplicates kept", got)
	}
}

func TestNilDocument(t *testing.T) {
	var doc *Document
	if doc.HasBlog() {
		t.Error("nil document has no blog")
	}
	if doc.SkillNames() != nil {
		t.Error("nil document has no skills")
	}
}
