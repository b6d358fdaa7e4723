// Package catalog holds the read-only list of portfolio projects. The list is
// loaded once at startup and never changes afterwards.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gitlab.com/symplylade/portfolio-api/pkg/model"
	"gopkg.in/yaml.v3"
)

//go:embed projects.yaml
var defaultProjects []byte

// Catalog is an immutable, ordered list of projects.
type Catalog struct {
	projects []model.Project
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultProjects)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads the catalog from a YAML file. An empty path selects the default
// catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path) // nosemgrep
	if err != nil {
		return nil, fmt.Errorf("read project catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML list of projects and checks that ids are positive and
// unique and that every project has a title.
func Parse(data []byte) (*Catalog, error) {
	var projects []model.Project
	if err := yaml.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("decode project catalog: %w", err)
	}
	seen := make(map[int]bool, len(projects))
	var errs []error
	for i, p := range projects {
		if p.Id < 1 {
			errs = append(errs, fmt.Errorf("project %d: invalid id %d", i, p.Id))
		}
		if seen[p.Id] {
			errs = append(errs, fmt.Errorf("project %d: duplicate id %d", i, p.Id))
		}
		seen[p.Id] = true
		if strings.TrimSpace(p.Title) == "" {
			errs = append(errs, fmt.Errorf("project %d: missing title", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Catalog{projects: projects}, nil
}

// Projects returns a copy of the catalog in its defined order. Modifying the
// result does not affect the catalog.
func (c *Catalog) Projects() []model.Project {
	out := make([]model.Project, len(c.projects))
	for i, p := range c.projects {
		p.Tech = append([]string(nil), p.Tech...)
		out[i] = p
	}
	return out
}
