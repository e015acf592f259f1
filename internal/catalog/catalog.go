// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

// Package catalog provides read-only access to supplement reference data.
//
// The catalog maps a supplement identifier to its descriptive and scientific
// metadata. It is consumed, never mutated, by the scoring engine. The data
// ships compiled into the binary; a deployment can override it with a JSON
// file via Load.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned when a supplement identifier has no catalog entry.
var ErrNotFound = errors.New("supplement not found")

// SupplementInfo describes a single supplement in the reference catalog.
type SupplementInfo struct {
	// ID is the stable supplement identifier (e.g. "magnesium-glycinate").
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Category groups supplements by primary effect (e.g. "calming").
	Category string `json:"category"`

	// Benefits lists the documented benefit statements.
	Benefits []string `json:"benefits"`

	// Evidence is a coarse evidence grade: "strong", "moderate", "limited".
	Evidence string `json:"evidence,omitempty"`

	// Vegan indicates the formulation is free of animal products.
	Vegan bool `json:"vegan"`

	// GlutenFree indicates the formulation contains no gluten.
	GlutenFree bool `json:"gluten_free"`
}

// Catalog is an immutable supplement lookup table. It is safe for
// concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	items map[string]SupplementInfo
}

// New returns a catalog backed by the built-in reference data.
func New() *Catalog {
	items := make(map[string]SupplementInfo, len(builtinSupplements))
	for _, s := range builtinSupplements {
		items[s.ID] = s
	}
	return &Catalog{items: items}
}

// Load returns a catalog read from a JSON file containing an array of
// SupplementInfo entries. Entries replace the built-in data entirely.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var entries []SupplementInfo
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	items := make(map[string]SupplementInfo, len(entries))
	for _, s := range entries {
		if s.ID == "" {
			return nil, fmt.Errorf("catalog entry %q has empty id", s.Name)
		}
		items[s.ID] = s
	}

	return &Catalog{items: items}, nil
}

// Supplement returns the catalog entry for id, or ErrNotFound.
func (c *Catalog) Supplement(id string) (SupplementInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.items[id]
	if !ok {
		return SupplementInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Has reports whether id exists in the catalog.
func (c *Catalog) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.items[id]
	return ok
}

// IDs returns all supplement identifiers in sorted order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
