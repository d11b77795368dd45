// Package publish implements the batch publisher that fans a content item
// out to the configured external platforms.
package publish

import "strings"

// PlatformConfig is one publishing target's configuration.
type PlatformConfig struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	APIURL       string            `yaml:"api_url"`
	APIKey       string            `yaml:"api_key"`
	Headers      map[string]string `yaml:"headers"`
	Capabilities []string          `yaml:"capabilities"`
}

// PlatformSummary is the public catalog entry shape.
type PlatformSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog resolves platform names to their configuration. Lookups are
// case-insensitive. A platform listed in the catalog may legitimately have
// no resolvable config (empty API URL); that is a distinct failure mode
// handled at publish time.
type Catalog struct {
	entries map[string]PlatformConfig
	order   []string
}

// NewCatalog builds a catalog from the configured platforms, preserving
// their configured order for listing.
func NewCatalog(platforms []PlatformConfig) *Catalog {
	c := &Catalog{
		entries: make(map[string]PlatformConfig, len(platforms)),
		order:   make([]string, 0, len(platforms)),
	}
	for _, platform := range platforms {
		if platform.ID == "" {
			platform.ID = strings.ToLower(platform.Name)
		}
		key := strings.ToLower(platform.Name)
		c.entries[key] = platform
		c.order = append(c.order, key)
	}
	return c
}

// Resolve looks up a platform by name, case-insensitively.
func (c *Catalog) Resolve(name string) (PlatformConfig, bool) {
	platform, ok := c.entries[strings.ToLower(name)]
	if !ok || platform.APIURL == "" {
		return PlatformConfig{}, false
	}
	return platform, true
}

// List returns the catalog in configured order.
func (c *Catalog) List() []PlatformSummary {
	summaries := make([]PlatformSummary, 0, len(c.order))
	for _, key := range c.order {
		entry := c.entries[key]
		summaries = append(summaries, PlatformSummary{ID: entry.ID, Name: entry.Name})
	}
	return summaries
}
