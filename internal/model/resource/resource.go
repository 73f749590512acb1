package resource

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type classifies library entries.
type Type string

const (
	TypeArticle    Type = "article"
	TypeVideo      Type = "video"
	TypeExercise   Type = "exercise"
	TypeMeditation Type = "meditation"
	TypeCrisis     Type = "crisis"
)

// Resource is a read-only library entry.
type Resource struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Type        Type     `json:"type" yaml:"type"`
	Tags        []string `json:"tags" yaml:"tags"`
	Description string   `json:"description" yaml:"description"`
	Content     string   `json:"content" yaml:"content"`
	Duration    int      `json:"duration,omitempty" yaml:"duration,omitempty"`
	AudioURL    string   `json:"audioUrl,omitempty" yaml:"audioUrl,omitempty"`
}

// Hotline is a crisis line surfaced when crisis language is detected.
type Hotline struct {
	Name        string `json:"name" yaml:"name"`
	Contact     string `json:"contact" yaml:"contact"`
	Description string `json:"description" yaml:"description"`
}

// Catalog is the static library plus hotline list.
type Catalog struct {
	Resources []Resource `yaml:"resources"`
	Hotlines  []Hotline  `yaml:"hotlines"`
}

//go:embed catalog.yaml
var defaultCatalog []byte

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalog and validates entry types and ids.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode resource catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Resources))
	for _, r := range c.Resources {
		if r.ID == "" {
			return nil, fmt.Errorf("resource %q has no id", r.Title)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate resource id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
		if !ValidType(string(r.Type)) {
			return nil, fmt.Errorf("resource %q has unknown type %q", r.ID, r.Type)
		}
	}
	return &c, nil
}

// ValidType reports whether t names a known resource type.
func ValidType(t string) bool {
	switch Type(t) {
	case TypeArticle, TypeVideo, TypeExercise, TypeMeditation, TypeCrisis:
		return true
	}
	return false
}

// FindByID returns the resource with the given id.
func (c *Catalog) FindByID(id string) (Resource, bool) {
	for _, r := range c.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}

// Search filters by a case-insensitive query over title, description and tags.
// typ "" or "all" matches every type.
func (c *Catalog) Search(query, typ string) []Resource {
	q := strings.ToLower(strings.TrimSpace(query))
	typ = strings.ToLower(strings.TrimSpace(typ))

	out := make([]Resource, 0, len(c.Resources))
	for _, r := range c.Resources {
		if typ != "" && typ != "all" && string(r.Type) != typ {
			continue
		}
		if q != "" && !matches(r, q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// HotlineList returns a copy of the crisis hotline list.
func (c *Catalog) HotlineList() []Hotline {
	return append([]Hotline(nil), c.Hotlines...)
}

func matches(r Resource, q string) bool {
	if strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Description), q) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
