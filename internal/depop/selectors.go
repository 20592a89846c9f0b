package depop

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed selectors.yaml
var defaultSelectorsYAML []byte

// Selectors holds the CSS selector profile used to pick content out of
// rendered pages. Each field is an ordered fallback chain.
type Selectors struct {
	ListingLinks []string `yaml:"listing_links"`
	Description  []string `yaml:"description"`
	Price        []string `yaml:"price"`
	Image        []string `yaml:"image"`
	Seller       []string `yaml:"seller"`
	SoldSignal   []string `yaml:"sold_signal"`
	ListedTime   []string `yaml:"listed_time"`
}

// LoadSelectors returns the selector profile. When path is empty the
// embedded default profile is used; otherwise the file at path overrides it,
// letting operators track site markup changes without a rebuild.
func LoadSelectors(path string) (*Selectors, error) {
	data := defaultSelectorsYAML
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read selector profile %s: %w", path, err)
		}
		data = fileData
	}

	var s Selectors
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse selector profile: %w", err)
	}

	if len(s.ListingLinks) == 0 {
		return nil, fmt.Errorf("selector profile has no listing_links selectors")
	}
	return &s, nil
}
