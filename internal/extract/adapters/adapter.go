package adapters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/fundscrape/internal/extract"
	"github.com/ppiankov/fundscrape/internal/input"
	"github.com/ppiankov/fundscrape/internal/model"
)

// Site defines the rules for scraping one organization's project pages
type Site interface {
	// Name returns the adapter name used on the command line
	Name() string

	// Title returns the organization's display name
	Title() string

	// ProjectURL builds the record page URL for a project id
	ProjectURL(id string) string

	// Tables returns the table layouts in output sheet order
	Tables() []*extract.Table

	// Gate returns the table whose missing container suppresses the project
	// from every table. An empty kind means each table is validated on its own.
	Gate() model.TableKind

	// InputFormat describes the project list columns
	InputFormat() input.Format

	// DefaultInput returns the conventional project list file name
	DefaultInput() string

	// DefaultOutput returns the conventional workbook file name
	DefaultOutput() string
}

// BaseSite provides the data-only parts of a Site
type BaseSite struct {
	name          string
	title         string
	prefix        string
	tables        []*extract.Table
	gate          model.TableKind
	format        input.Format
	defaultInput  string
	defaultOutput string
}

// Name returns the adapter name
func (b *BaseSite) Name() string {
	return b.name
}

// Title returns the organization's display name
func (b *BaseSite) Title() string {
	return b.title
}

// ProjectURL appends the id to the site's project prefix
func (b *BaseSite) ProjectURL(id string) string {
	return b.prefix + id
}

// Tables returns the table layouts
func (b *BaseSite) Tables() []*extract.Table {
	return b.tables
}

// Gate returns the gating table kind
func (b *BaseSite) Gate() model.TableKind {
	return b.gate
}

// InputFormat returns the project list layout
func (b *BaseSite) InputFormat() input.Format {
	return b.format
}

// DefaultInput returns the conventional input file name
func (b *BaseSite) DefaultInput() string {
	return b.defaultInput
}

// DefaultOutput returns the conventional output file name
func (b *BaseSite) DefaultOutput() string {
	return b.defaultOutput
}

// Registry manages site adapters
type Registry struct {
	sites map[string]Site
}

// NewRegistry creates a registry with the built-in sites
func NewRegistry() *Registry {
	registry := &Registry{
		sites: make(map[string]Site),
	}

	registry.Register(NewGCFSite())
	registry.Register(NewGEFSite())

	return registry
}

// Register registers a new site
func (r *Registry) Register(site Site) {
	r.sites[strings.ToLower(site.Name())] = site
}

// Get finds a site by name
func (r *Registry) Get(name string) (Site, error) {
	site, ok := r.sites[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown site %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return site, nil
}

// Names returns the registered site names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sites))
	for name := range r.sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
