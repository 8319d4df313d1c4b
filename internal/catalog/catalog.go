package catalog

import (
	"bytes"
	"cmp"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slices"
)

// ErrProductNotFound reports a product id that is not in the catalog.
var ErrProductNotFound = errors.New("product not found")

//go:embed products.json
var seedProducts []byte

// DefaultRelatedLimit is the number of related products shown on a product page.
const DefaultRelatedLimit = 4

// Catalog is an immutable, in-memory product list. Safe for concurrent reads.
type Catalog struct {
	byID     map[int]int
	products []Product
}

// New builds a catalog from products. Later duplicates of an id are ignored.
func New(products []Product) *Catalog {
	c := &Catalog{byID: make(map[int]int, len(products))}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// Load decodes a JSON array of products.
func Load(r io.Reader) (*Catalog, error) {
	var products []Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(products), nil
}

// LoadFile loads the catalog at path, or the built-in catalog when path is empty.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(seedProducts))
}

// All returns a copy of every product in catalog order.
func (c *Catalog) All() []Product {
	return slices.Clone(c.products)
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// ByID looks a product up by id.
func (c *Catalog) ByID(id int) (Product, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[idx], true
}

// Filter selects products. The zero value of every field means "no constraint".
type Filter struct {
	MinPrice   *float64 // inclusive
	MaxPrice   *float64 // inclusive
	Categories []string // any of
	PetTypes   []string // any of
	InStock    bool     // only in-stock products when set
	IsNew      bool     // only new products when set
	IsSale     bool     // only sale products when set
}

// Match reports whether p satisfies every constraint of f.
func (f Filter) Match(p Product) bool {
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if len(f.PetTypes) > 0 && !slices.Contains(f.PetTypes, p.PetType) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.InStock && !p.InStock {
		return false
	}
	if f.IsNew && !p.IsNew {
		return false
	}
	if f.IsSale && !p.IsSale {
		return false
	}
	return true
}

// Find returns the products matching f, sorted by mode.
func (c *Catalog) Find(f Filter, mode SortMode) []Product {
	var out []Product
	for _, p := range c.products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	Sort(out, mode)
	return out
}

// Search matches query case-insensitively against name, category, pet type
// and description. An empty query matches everything.
func (c *Catalog) Search(query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Product
	for _, p := range c.products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) ||
			strings.Contains(strings.ToLower(p.PetType), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

// Related returns up to limit other products sharing p's category or pet type.
// A non-positive limit means DefaultRelatedLimit.
func (c *Catalog) Related(p Product, limit int) []Product {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	var out []Product
	for _, other := range c.products {
		if len(out) == limit {
			break
		}
		if other.ID == p.ID {
			continue
		}
		if other.Category == p.Category || other.PetType == p.PetType {
			out = append(out, other)
		}
	}
	return out
}

// SortMode names a product ordering.
type SortMode string

const (
	SortPopular   SortMode = "popular"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortRating    SortMode = "rating"
	SortNew       SortMode = "new"
)

// Sort orders products in place. Unknown modes keep the input order.
// All orderings are stable.
func Sort(products []Product, mode SortMode) {
	var compare func(a, b Product) int
	switch mode {
	case SortPopular:
		compare = func(a, b Product) int { return cmp.Compare(b.Popularity(), a.Popularity()) }
	case SortPriceAsc:
		compare = func(a, b Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		compare = func(a, b Product) int { return cmp.Compare(b.Price, a.Price) }
	case SortRating:
		compare = func(a, b Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortNew:
		compare = func(a, b Product) int {
			switch {
			case a.IsNew && !b.IsNew:
				return -1
			case !a.IsNew && b.IsNew:
				return 1
			}
			return 0
		}
	default:
		return
	}
	slices.SortStableFunc(products, compare)
}
