// Package contracts embeds the OpenAPI documents served and enforced by the API.
package contracts

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed *.yaml
var files embed.FS

// Bandi is the name of the bandi contract.
const Bandi = "bandi"

// Names lists the embedded contracts, sorted.
func Names() []string {
	entries, _ := files.ReadDir(".")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Load parses and validates the named contract. Each call returns a fresh document.
func Load(name string) (*openapi3.T, error) {
	raw, err := files.ReadFile(name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown contract %q: %w", name, err)
	}

	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("load contract %s: %w", name, err)
	}
	if err := spec.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate contract %s: %w", name, err)
	}
	return spec, nil
}
