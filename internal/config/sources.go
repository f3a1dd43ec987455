package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScrapeSource is an HTML listing page mined with a per-source selector.
type ScrapeSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Selector string `yaml:"selector"`
	Base     string `yaml:"base"`
}

// ArchiveSource is a paginated archive used by the historical backfill.
// Pattern contains a {page} placeholder.
type ArchiveSource struct {
	Name     string `yaml:"name"`
	Base     string `yaml:"base"`
	Pattern  string `yaml:"pattern"`
	Pages    int    `yaml:"pages"`
	Selector string `yaml:"selector"`
}

// Sources is the static acquisition configuration: feed endpoints, scrape
// listings, backfill archives and the relevance keyword set.
type Sources struct {
	Feeds    []string        `yaml:"feeds"`
	Scrape   []ScrapeSource  `yaml:"scrape"`
	Archives []ArchiveSource `yaml:"archives"`
	Keywords []string        `yaml:"keywords"`
}

// LoadSources reads the source configuration from a YAML file.
func LoadSources(path string) (*Sources, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src Sources
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&src); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if len(src.Feeds) == 0 && len(src.Scrape) == 0 && len(src.Archives) == 0 {
		return nil, fmt.Errorf("%s defines no sources", path)
	}
	return &src, nil
}
