// Package catalog holds the read-only product catalog: lookup, filtering,
// sorting, search and related-product suggestions.
package catalog

// Product is catalog data. Carts, favorites and orders store Product values
// as snapshots, so a later catalog change never rewrites history.
type Product struct {
	OldPrice     *float64 `json:"oldPrice"`
	ThumbnailURL *string  `json:"thumbnailUrl,omitempty"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	PetType      string   `json:"petType"`
	Description  string   `json:"description"`
	ImageURL     string   `json:"imageUrl"`
	Features     []string `json:"features"`
	Price        float64  `json:"price"`
	Rating       float64  `json:"rating"`
	ID           int      `json:"id"`
	ReviewCount  int      `json:"reviewCount"`
	InStock      bool     `json:"inStock"`
	IsNew        bool     `json:"isNew"`
	IsSale       bool     `json:"isSale"`
}

// EffectivePrice is the price a buyer pays: the lower of Price and OldPrice
// when OldPrice is set, otherwise Price.
func (p Product) EffectivePrice() float64 {
	if p.OldPrice != nil && *p.OldPrice < p.Price {
		return *p.OldPrice
	}
	return p.Price
}

// Popularity orders the "popular" sort mode.
func (p Product) Popularity() float64 {
	return p.Rating * float64(p.ReviewCount)
}
