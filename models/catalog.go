package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Subcategory is a second-level grouping inside a Category
type Subcategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category groups products in the equipment catalog
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Product represents a single item in the equipment catalog.
// CategoryID may reference a category that no longer exists.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Model         string   `json:"model"`
	SKU           string   `json:"sku"`
	CategoryID    string   `json:"categoryId"`
	SubcategoryID string   `json:"subcategoryId"`
	PriceNet      int64    `json:"priceNet"`
	Features      []string `json:"features"`
	Tags          []string `json:"tags"`
	ImageURL      string   `json:"imageUrl"`
	DatasheetURL  string   `json:"datasheetUrl"`
	VideoURL      string   `json:"videoUrl"`
	Active        bool     `json:"active"`
}

// Catalog holds the ordered categories and products of the site
type Catalog struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}

// HasTag reports whether the product carries tag (case-insensitive)
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// HasAllTags reports whether the product carries every tag in tags.
// An empty tag list never matches.
func (p Product) HasAllTags(tags []string) bool {
	if len(tags) == 0 {
		return false
	}
	for _, tag := range tags {
		if !p.HasTag(tag) {
			return false
		}
	}
	return true
}

// HasAnyTag reports whether the product carries at least one tag in tags
func (p Product) HasAnyTag(tags []string) bool {
	for _, tag := range tags {
		if p.HasTag(tag) {
			return true
		}
	}
	return false
}

// MatchesKeyword reports whether keyword appears as whole words in the product's
// name, brand, model, one of its features or one of its tags. Matching ignores
// case and accents; "ups" matches "UPS 1kVA" but not "Backups".
func (p Product) MatchesKeyword(keyword string) bool {
	want := words(keyword)
	if len(want) == 0 {
		return false
	}
	fields := make([]string, 0, 3+len(p.Features)+len(p.Tags))
	fields = append(fields, p.Name, p.Brand, p.Model)
	fields = append(fields, p.Features...)
	fields = append(fields, p.Tags...)
	for _, f := range fields {
		if containsRun(words(f), want) {
			return true
		}
	}
	return false
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// words splits s into lower-case, accent-free words of letters and digits
func words(s string) []string {
	folded, _, err := transform.String(foldAccents, s)
	if err != nil {
		folded = s
	}
	return strings.FieldsFunc(strings.ToLower(folded), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsRun reports whether want occurs in have as consecutive words
func containsRun(have, want []string) bool {
	for i := 0; i+len(want) <= len(have); i++ {
		match := true
		for j := range want {
			if have[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// ActiveProducts returns the products visible to non-admin views, in catalog order
func (c Catalog) ActiveProducts() []Product {
	active := make([]Product, 0, len(c.Products))
	for _, p := range c.Products {
		if p.Active {
			active = append(active, p)
		}
	}
	return active
}

// Validate checks the catalog invariants every stored document must hold
func (c Catalog) Validate() error {
	for i, p := range c.Products {
		if p.PriceNet < 0 {
			return NewValidationError("catalog.products[%d] (%s): priceNet must not be negative", i, p.ID)
		}
	}
	return nil
}

// ProductByID looks up a product by id
func (c Catalog) ProductByID(id string) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// CategoryName returns the name of the category with the given id,
// or "" when the id is dangling
func (c Catalog) CategoryName(id string) string {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat.Name
		}
	}
	return ""
}

// Clone returns a deep copy of the catalog
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Categories: cloneSlice(c.Categories),
		Products:   cloneSlice(c.Products),
	}
	for i := range out.Categories {
		out.Categories[i].Subcategories = cloneSlice(out.Categories[i].Subcategories)
	}
	for i := range out.Products {
		out.Products[i].Features = cloneSlice(out.Products[i].Features)
		out.Products[i].Tags = cloneSlice(out.Products[i].Tags)
	}
	return out
}
