// Package catalog holds the immutable product catalog the simulation
// consumes. Products never change after world generation.
package catalog

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

// Tier classifies a product's production stage.
type Tier uint8

const (
	TierRaw Tier = iota
	TierSemiRaw
	TierManufactured
)

// TierName returns a display name for a tier.
func TierName(t Tier) string {
	switch t {
	case TierRaw:
		return "RAW"
	case TierSemiRaw:
		return "SEMI_RAW"
	case TierManufactured:
		return "MANUFACTURED"
	}
	return "UNKNOWN"
}

// Product is one catalog entry. Inputs maps input product ID to the
// quantity consumed per unit produced; empty for raw goods.
type Product struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Tier           Tier               `json:"tier"`
	BasePrice      float64            `json:"base_price"`
	Inputs         map[string]float64 `json:"inputs,omitempty"`
	ProductionHrs  int                `json:"production_hours"`
	NecessityIndex float64            `json:"necessity_index"` // 1.0 = essential, 0 = pure luxury
}

// Catalog is the read-only product lookup. Built once, never mutated.
type Catalog struct {
	products map[string]*Product
	ordered  []*Product // stable ID order for iteration
	names    []string   // parallel to ordered, for fuzzy search
}

// New builds a catalog from a product list. Later duplicates of an ID
// are ignored.
func New(products []Product) *Catalog {
	c := &Catalog{products: make(map[string]*Product, len(products))}
	for i := range products {
		p := products[i]
		if _, dup := c.products[p.ID]; dup {
			continue
		}
		cp := p
		c.products[p.ID] = &cp
	}
	for _, p := range c.products {
		c.ordered = append(c.ordered, p)
	}
	sort.Slice(c.ordered, func(i, j int) bool { return c.ordered[i].ID < c.ordered[j].ID })
	for _, p := range c.ordered {
		c.names = append(c.names, p.Name)
	}
	return c
}

// Get returns the product for an ID, or nil.
func (c *Catalog) Get(id string) *Product {
	return c.products[id]
}

// All returns every product in stable ID order.
func (c *Catalog) All() []*Product {
	return c.ordered
}

// ByTier returns products of one tier in stable ID order.
func (c *Catalog) ByTier(t Tier) []*Product {
	var out []*Product
	for _, p := range c.ordered {
		if p.Tier == t {
			out = append(out, p)
		}
	}
	return out
}

// Search returns up to limit products whose names fuzzy-match the query,
// best matches first.
func (c *Catalog) Search(query string, limit int) []*Product {
	matches := fuzzy.Find(query, c.names)
	var out []*Product
	for _, m := range matches {
		out = append(out, c.ordered[m.Index])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Default returns the standard world catalog: raw extraction and growth
// goods, semi-processed intermediates, and finished consumer goods.
func Default() *Catalog {
	return New([]Product{
		// Raw tier — extracted, logged, or grown.
		{ID: "iron_ore", Name: "Iron Ore", Tier: TierRaw, BasePrice: 4, ProductionHrs: 1, NecessityIndex: 0.3},
		{ID: "coal", Name: "Coal", Tier: TierRaw, BasePrice: 4, ProductionHrs: 1, NecessityIndex: 0.5},
		{ID: "timber", Name: "Timber", Tier: TierRaw, BasePrice: 3, ProductionHrs: 1, NecessityIndex: 0.4},
		{ID: "grain", Name: "Grain", Tier: TierRaw, BasePrice: 2, ProductionHrs: 1, NecessityIndex: 1.0},
		{ID: "livestock", Name: "Livestock", Tier: TierRaw, BasePrice: 6, ProductionHrs: 1, NecessityIndex: 0.8},
		{ID: "cotton", Name: "Cotton", Tier: TierRaw, BasePrice: 3, ProductionHrs: 1, NecessityIndex: 0.6},

		// Semi-raw tier — one conversion step from raw inputs.
		{
			ID: "steel", Name: "Steel", Tier: TierSemiRaw, BasePrice: 14, ProductionHrs: 3,
			NecessityIndex: 0.3,
			Inputs:         map[string]float64{"iron_ore": 2, "coal": 1},
		},
		{
			ID: "lumber", Name: "Lumber", Tier: TierSemiRaw, BasePrice: 8, ProductionHrs: 2,
			NecessityIndex: 0.5,
			Inputs:         map[string]float64{"timber": 2},
		},
		{
			ID: "flour", Name: "Flour", Tier: TierSemiRaw, BasePrice: 5, ProductionHrs: 2,
			NecessityIndex: 0.9,
			Inputs:         map[string]float64{"grain": 2},
		},
		{
			ID: "fabric", Name: "Fabric", Tier: TierSemiRaw, BasePrice: 9, ProductionHrs: 2,
			NecessityIndex: 0.6,
			Inputs:         map[string]float64{"cotton": 2},
		},

		// Manufactured tier — finished consumer goods.
		{
			ID: "tools", Name: "Tools", Tier: TierManufactured, BasePrice: 32, ProductionHrs: 5,
			NecessityIndex: 0.5,
			Inputs:         map[string]float64{"steel": 1, "lumber": 1},
		},
		{
			ID: "furniture", Name: "Furniture", Tier: TierManufactured, BasePrice: 40, ProductionHrs: 6,
			NecessityIndex: 0.4,
			Inputs:         map[string]float64{"lumber": 3, "fabric": 1},
		},
		{
			ID: "bread", Name: "Bread", Tier: TierManufactured, BasePrice: 8, ProductionHrs: 2,
			NecessityIndex: 1.0,
			Inputs:         map[string]float64{"flour": 1},
		},
		{
			ID: "clothing", Name: "Clothing", Tier: TierManufactured, BasePrice: 24, ProductionHrs: 4,
			NecessityIndex: 0.7,
			Inputs:         map[string]float64{"fabric": 2},
		},
		{
			ID: "luxury_goods", Name: "Luxury Goods", Tier: TierManufactured, BasePrice: 90, ProductionHrs: 10,
			NecessityIndex: 0.05,
			Inputs:         map[string]float64{"fabric": 1, "steel": 1},
		},
	})
}
