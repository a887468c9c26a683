package models

import "sort"

// Cart maps a product id to the requested quantity.
// Entries with quantity <= 0 are never kept.
type Cart map[string]int

// CartLine is a cart entry resolved against the catalog
type CartLine struct {
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	LineTotal int64   `json:"lineTotal"`
}

// Set stores qty for productID, removing the entry when qty <= 0
func (c Cart) Set(productID string, qty int) {
	if qty <= 0 {
		delete(c, productID)
		return
	}
	c[productID] = qty
}

// Add increments the quantity of productID by delta
func (c Cart) Add(productID string, delta int) {
	c.Set(productID, c[productID]+delta)
}

// Remove drops productID from the cart
func (c Cart) Remove(productID string) {
	delete(c, productID)
}

// Quantity returns the quantity stored for productID
func (c Cart) Quantity(productID string) int {
	return c[productID]
}

// ProductIDs returns the ids in the cart in ascending order
func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy of the cart
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, qty := range c {
		out.Set(id, qty)
	}
	return out
}

// CamerasCount sums the quantities of cart products carrying any of cameraTags.
// Ids that are not in products are ignored.
func (c Cart) CamerasCount(products []Product, cameraTags []string) int {
	count := 0
	for _, p := range products {
		qty := c[p.ID]
		if qty > 0 && p.HasAnyTag(cameraTags) {
			count += qty
		}
	}
	return count
}

// ApplySuggestions adds required and recommended suggestions to the cart,
// and optional ones only when includeOptional is set. A suggestion raises
// the quantity to at least the suggested amount; it never lowers it.
func (c Cart) ApplySuggestions(suggestions []Suggestion, includeOptional bool) {
	for _, s := range suggestions {
		if s.Bucket == BucketOptional && !includeOptional {
			continue
		}
		if c[s.ProductID] < s.Quantity {
			c.Set(s.ProductID, s.Quantity)
		}
	}
}

// Lines resolves the cart against catalog, dropping ids the catalog no longer has
func (c Cart) Lines(catalog Catalog) []CartLine {
	lines := make([]CartLine, 0, len(c))
	for _, id := range c.ProductIDs() {
		p, ok := catalog.ProductByID(id)
		if !ok {
			continue
		}
		qty := c[id]
		lines = append(lines, CartLine{
			Product:   p,
			Quantity:  qty,
			LineTotal: int64(qty) * p.PriceNet,
		})
	}
	return lines
}
