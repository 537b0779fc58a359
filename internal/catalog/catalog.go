// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package catalog defines the sub-agents a question can be delegated to and the
// decomposition contract between the map stage and the query stage.
//
// A catalog is loaded once per run and never mutated. Its key set is the single
// source of truth for the decomposition: the map stage output is validated
// against it, and the JSON schema offered to the model is generated from it.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"seedfast/dataorch/internal/errors"
)

//go:embed default.yaml
var defaultYAML []byte

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SubAgent is a domain agent specialised in one table.
type SubAgent struct {
	// Name is the key used in the decomposition.
	Name string `yaml:"name" json:"name"`
	// Description tells the map stage what the agent can answer.
	Description string `yaml:"description" json:"description"`
	// Table is the table the agent queries.
	Table string `yaml:"table" json:"table"`
	// TableContext describes the table to the agent itself.
	TableContext string `yaml:"table_context" json:"table_context"`
}

// Catalog is an ordered set of sub-agents with unique names.
type Catalog struct {
	Agents []SubAgent `yaml:"agents" json:"agents"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid, "read catalog "+path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid, "parse catalog", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that the catalog is non-empty, that every field is set and
// that names are unique identifiers.
func (c *Catalog) Validate() error {
	if len(c.Agents) == 0 {
		return errors.New(errors.ConfigInvalid, "catalog has no sub-agents")
	}

	seen := make(map[string]bool, len(c.Agents))
	for i, a := range c.Agents {
		switch {
		case !identRe.MatchString(a.Name):
			return errors.New(errors.ConfigInvalid, fmt.Sprintf("sub-agent %d: invalid name %q", i+1, a.Name))
		case seen[a.Name]:
			return errors.New(errors.ConfigInvalid, fmt.Sprintf("duplicate sub-agent %q", a.Name))
		case strings.TrimSpace(a.Description) == "":
			return errors.New(errors.ConfigInvalid, fmt.Sprintf("sub-agent %q: description is required", a.Name))
		case !identRe.MatchString(a.Table):
			return errors.New(errors.ConfigInvalid, fmt.Sprintf("sub-agent %q: invalid table %q", a.Name, a.Table))
		case strings.TrimSpace(a.TableContext) == "":
			return errors.New(errors.ConfigInvalid, fmt.Sprintf("sub-agent %q: table_context is required", a.Name))
		}
		seen[a.Name] = true
	}
	return nil
}

// Names returns the sub-agent names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Agents))
	for i, a := range c.Agents {
		names[i] = a.Name
	}
	return names
}

// Get returns the sub-agent with the given name.
func (c *Catalog) Get(name string) (SubAgent, bool) {
	for _, a := range c.Agents {
		if a.Name == name {
			return a, true
		}
	}
	return SubAgent{}, false
}

// JSONSchema returns a closed JSON schema for the decomposition: one required
// string property per sub-agent and no additional properties.
func (c *Catalog) JSONSchema() map[string]any {
	props := make(map[string]any, len(c.Agents))
	for _, a := range c.Agents {
		props[a.Name] = map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": a.Description,
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             c.Names(),
		"additionalProperties": false,
	}
}
