package routespec

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type routeFile struct {
	Routes []Route `yaml:"routes"`
}

// Parse reads a YAML (or JSON) route document.
func Parse(data []byte, opts Options) (*Set, error) {
	var doc routeFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode route file: %w", err)
	}

	return Build(doc.Routes, opts)
}

// LoadFile reads the route file at path.
func LoadFile(path string, opts Options) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route file: %w", err)
	}
	return Parse(data, opts)
}
