// Package catalog holds the salon's service price list. The same catalog
// backs intake pricing and the public services endpoint.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed services.yaml
var defaultCatalog []byte

// Service is one bookable service or add-on.
type Service struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Category    string  `yaml:"category" json:"category"`
	MinPrice    float64 `yaml:"min_price" json:"minPrice"`
	MaxPrice    float64 `yaml:"max_price" json:"maxPrice"`
	Description string  `yaml:"description" json:"description"`
}

// Catalog is a versioned price list.
type Catalog struct {
	Version  string    `yaml:"version" json:"version"`
	Currency string    `yaml:"currency" json:"currency"`
	Services []Service `yaml:"services" json:"services"`

	byID map[string]Service
}

// Estimate is the derived price of a set of selected services.
type Estimate struct {
	Min     float64
	Max     float64
	Matched []string
	Unknown []string
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, falling back to the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("catalog has no services")
	}
	c.byID = make(map[string]Service, len(c.Services))
	for _, s := range c.Services {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return fmt.Errorf("catalog service %q has no id", s.Name)
		}
		if _, dup := c.byID[id]; dup {
			return fmt.Errorf("duplicate catalog service id %q", id)
		}
		if s.MinPrice < 0 || s.MaxPrice < s.MinPrice {
			return fmt.Errorf("catalog service %q: invalid price range %v-%v", id, s.MinPrice, s.MaxPrice)
		}
		c.byID[id] = s
	}
	return nil
}

// Lookup finds a service by id.
func (c *Catalog) Lookup(id string) (Service, bool) {
	s, ok := c.byID[strings.TrimSpace(id)]
	return s, ok
}

// Quote sums the min and max prices of the selected services independently.
// Unknown ids contribute nothing and are reported in Estimate.Unknown.
func (c *Catalog) Quote(ids []string) Estimate {
	var est Estimate
	for _, id := range ids {
		s, ok := c.Lookup(id)
		if !ok {
			est.Unknown = append(est.Unknown, id)
			continue
		}
		est.Min += s.MinPrice
		est.Max += s.MaxPrice
		est.Matched = append(est.Matched, s.ID)
	}
	return est
}

// Empty reports whether no known service was selected.
func (e Estimate) Empty() bool {
	return len(e.Matched) == 0
}

// IsRange reports whether the estimate spans a range rather than a single price.
func (e Estimate) IsRange() bool {
	return e.Min != e.Max
}

// String renders "$40" for a single price and "$45-$55" for a range.
func (e Estimate) String() string {
	if e.Empty() {
		return ""
	}
	if !e.IsRange() {
		return FormatPrice(e.Min)
	}
	return FormatPrice(e.Min) + "-" + FormatPrice(e.Max)
}

// FormatPrice renders a dollar amount without trailing zeros.
func FormatPrice(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', -1, 64)
}
