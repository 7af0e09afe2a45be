package llm

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

// Catalog is the built-in model registry behind --models.
type Catalog struct {
	providers map[string][]string
}

type catalogFile struct {
	Providers map[string][]string `yaml:"providers"`
}

// LoadCatalog parses the embedded registry.
func LoadCatalog() (*Catalog, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(modelsYAML, &cf); err != nil {
		return nil, fmt.Errorf("parsing embedded model catalog: %w", err)
	}
	return &Catalog{providers: cf.Providers}, nil
}

// Names returns canonical model identifiers, sorted: bare names for the
// default provider, provider-prefixed for everything else.
func (c *Catalog) Names() []string {
	var names []string
	for provider, models := range c.providers {
		for _, m := range models {
			if provider == DefaultProvider {
				names = append(names, m)
			} else {
				names = append(names, provider+"/"+m)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Filter returns the catalog names containing filter, case-insensitively.
// An empty filter returns everything.
func (c *Catalog) Filter(filter string) []string {
	names := c.Names()
	if filter == "" {
		return names
	}
	needle := strings.ToLower(filter)
	matched := names[:0]
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), needle) {
			matched = append(matched, n)
		}
	}
	return matched
}

// FormatModelList renders the --models listing.
func FormatModelList(names []string, filter string) string {
	if len(names) == 0 {
		if filter != "" {
			return fmt.Sprintf("No models found matching '%s'\n", filter)
		}
		return "No models found\n"
	}
	var b strings.Builder
	b.WriteString("Available models:\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  - %s\n", n)
	}
	return b.String()
}
