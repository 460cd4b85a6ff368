package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// CatalogSource provides the badge catalog. The catalog is read-only and rarely changes.
type CatalogSource interface {
	AllBadgeDefinitions(ctx context.Context) ([]BadgeDefinition, error)
}

// StaticCatalog serves a fixed list of definitions.
type StaticCatalog []BadgeDefinition

func (c StaticCatalog) AllBadgeDefinitions(ctx context.Context) ([]BadgeDefinition, error) {
	out := make([]BadgeDefinition, len(c))
	copy(out, c)
	return out, nil
}

type catalogFile struct {
	Badges []badgeEntry `yaml:"badges"`
}

type badgeEntry struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Icon        string           `yaml:"icon"`
	Category    string           `yaml:"category"`
	Requirement requirementEntry `yaml:"requirement"`
}

type requirementEntry struct {
	Type      string  `yaml:"type"`
	Threshold float64 `yaml:"threshold"`
	Category  string  `yaml:"category"`
}

// ParseCatalog decodes a YAML badge catalog.
//
//	badges:
//	  - id: calm_mind
//	    name: Calm Mind
//	    requirement: {type: level, category: mental, threshold: 5}
//
// Unknown requirement types and duplicate ids are rejected. Requirement categories are kept as
// written; an unknown category makes that badge evaluate to zero progress.
func ParseCatalog(r io.Reader) ([]BadgeDefinition, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := map[string]bool{}
	out := make([]BadgeDefinition, 0, len(f.Badges))
	for i, e := range f.Badges {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog entry %d: id is required", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, id)
		}
		seen[id] = true

		req, err := e.Requirement.toRequirement()
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", id, err)
		}
		out = append(out, BadgeDefinition{
			ID:          id,
			Name:        e.Name,
			Description: e.Description,
			Icon:        e.Icon,
			Category:    strings.TrimSpace(strings.ToLower(e.Category)),
			Requirement: req,
		})
	}
	return out, nil
}

func (e requirementEntry) toRequirement() (Requirement, error) {
	kind := RequirementKind(strings.TrimSpace(strings.ToLower(e.Type)))
	switch kind {
	case RequirementLevel:
		cat := Category(strings.TrimSpace(strings.ToLower(e.Category)))
		return LevelRequirement{Threshold: e.Threshold, Category: cat}, nil
	case RequirementStreak:
		return StreakRequirement{Threshold: e.Threshold}, nil
	case RequirementCompletion:
		return CompletionRequirement{Threshold: e.Threshold}, nil
	case RequirementPrestige:
		return PrestigeRequirement{Threshold: e.Threshold}, nil
	default:
		return nil, fmt.Errorf("unknown requirement type %q", e.Type)
	}
}

// FileCatalog loads a YAML catalog from disk on every call.
type FileCatalog struct {
	Path string
}

func (c FileCatalog) AllBadgeDefinitions(ctx context.Context) ([]BadgeDefinition, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

// CachedCatalog memoizes the first successful load of another source.
type CachedCatalog struct {
	src CatalogSource

	mu     sync.Mutex
	loaded bool
	defs   []BadgeDefinition
}

func NewCachedCatalog(src CatalogSource) *CachedCatalog {
	return &CachedCatalog{src: src}
}

func (c *CachedCatalog) AllBadgeDefinitions(ctx context.Context) ([]BadgeDefinition, error) {
	if c == nil || c.src == nil {
		return nil, ErrNoCatalog
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		defs, err := c.src.AllBadgeDefinitions(ctx)
		if err != nil {
			return nil, err
		}
		c.defs = defs
		c.loaded = true
	}
	out := make([]BadgeDefinition, len(c.defs))
	copy(out, c.defs)
	return out, nil
}
