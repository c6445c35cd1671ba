package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML catalog file from the given path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog

	err := yaml.Unmarshal(data, &c)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	applyDefaults(&c)

	return &c, nil
}

// LoadRegistry reads a catalog file and builds a Registry from it.
func LoadRegistry(path string) (*Registry, error) {
	c, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	return NewRegistry(*c)
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(c *Catalog) {
	if c.Version == "" {
		c.Version = "1"
	}

	for i := range c.Pages {
		p := &c.Pages[i]
		for j := range p.Sheets {
			s := &p.Sheets[j]
			for k := range s.Fields {
				f := &s.Fields[k]
				switch {
				case f.Type != "":
				case f.Compute != nil:
					f.Type = TypeNumber
				default:
					f.Type = TypeString
				}
			}
		}
	}
}
