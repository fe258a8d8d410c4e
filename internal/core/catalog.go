package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Catalog is the immutable retail price list, loaded once at startup and
// shared read-only by pricing, fulfillment, and reporting. It is never
// written after LoadCatalog returns.
type Catalog struct {
	items map[string]CatalogItem
	names []string // sorted, for stable iteration
}

// LoadCatalog reads the catalog_items table into memory.
func LoadCatalog(ctx context.Context, pool *pgxpool.Pool) (*Catalog, error) {
	rows, err := pool.Query(ctx, `
		SELECT item_name, category, unit_price
		FROM catalog_items
		ORDER BY item_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	c := &Catalog{items: make(map[string]CatalogItem)}
	for rows.Next() {
		var it CatalogItem
		if err := rows.Scan(&it.ItemName, &it.Category, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		c.items[it.ItemName] = it
		c.names = append(c.names, it.ItemName)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog rows: %w", err)
	}
	if len(c.items) == 0 {
		return nil, fmt.Errorf("catalog_items is empty — run cmd/seed first")
	}
	return c, nil
}

// NewCatalog builds a Catalog from a fixed item list. Used by tests and the
// seed tool, which needs the canonical list before the table exists.
func NewCatalog(items []CatalogItem) *Catalog {
	c := &Catalog{items: make(map[string]CatalogItem, len(items))}
	for _, it := range items {
		c.items[it.ItemName] = it
		c.names = append(c.names, it.ItemName)
	}
	sort.Strings(c.names)
	return c
}

// UnitPrice returns the retail unit price for an item.
func (c *Catalog) UnitPrice(itemName string) (decimal.Decimal, bool) {
	it, ok := c.items[itemName]
	if !ok {
		return decimal.Zero, false
	}
	return it.UnitPrice, true
}

// Item returns the full catalog record for an item.
func (c *Catalog) Item(itemName string) (CatalogItem, bool) {
	it, ok := c.items[itemName]
	return it, ok
}

// Names returns all item names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Categories returns the distinct item categories, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range c.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	sort.Strings(out)
	return out
}

// NamesByCategory returns item names in the given category, sorted.
func (c *Catalog) NamesByCategory(category string) []string {
	var out []string
	for _, name := range c.names {
		if c.items[name].Category == category {
			out = append(out, name)
		}
	}
	return out
}

// Len returns the number of catalog items.
func (c *Catalog) Len() int { return len(c.items) }
