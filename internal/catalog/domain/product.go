package domain

import "time"

const DefaultCurrency = "IDR"

type Money struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

// Components references the parts a product is built from. Empty ids mean "not set".
type Components struct {
	CPUID     string `json:"cpu_id,omitempty"`
	RAMID     string `json:"ram_id,omitempty"`
	StorageID string `json:"storage_id,omitempty"`
	GPUID     string `json:"gpu_id,omitempty"`
	DisplayID string `json:"display_id,omitempty"`
}

// ComponentRef is a (kind, id) pair; kind matches the component context's kind names.
type ComponentRef struct {
	Kind string
	ID   string
}

func (c Components) Refs() []ComponentRef {
	all := []ComponentRef{
		{"cpu", c.CPUID},
		{"ram", c.RAMID},
		{"storage", c.StorageID},
		{"gpu", c.GPUID},
		{"display", c.DisplayID},
	}
	out := all[:0]
	for _, r := range all {
		if r.ID != "" {
			out = append(out, r)
		}
	}
	return out
}

type Image struct {
	URL       string `json:"url"`
	SortOrder int    `json:"sort_order"`
}

type Product struct {
	ID             string     `json:"id"`
	CategoryID     string     `json:"category_id,omitempty"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	SKU            string     `json:"sku,omitempty"`
	Brand          string     `json:"brand"`
	Description    string     `json:"description"`
	Currency       string     `json:"currency"`
	Price          int64      `json:"price"`
	SalePrice      int64      `json:"sale_price"`
	EffectivePrice int64      `json:"effective_price"`
	Stock          int        `json:"stock"`
	WeightGrams    int        `json:"weight_grams"`
	Status         Status     `json:"status"`
	Components     Components `json:"components"`
	Images         []Image    `json:"images"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Effective is the sale price when it undercuts the list price, otherwise the list price.
func Effective(price, sale int64) int64 {
	if sale > 0 && sale < price {
		return sale
	}
	return price
}

func (p Product) UnitPrice() Money {
	return Money{Currency: p.Currency, Amount: Effective(p.Price, p.SalePrice)}
}

// ComponentSpec is a component summary shown on the product page.
type ComponentSpec struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Brand   string `json:"brand"`
	Summary string `json:"summary"`
}

type Detail struct {
	Product
	Specs []ComponentSpec `json:"specs"`
}

type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortName      Sort = "name"
)

type Filter struct {
	Query      string
	CategoryID string
	Brand      string
	MinPrice   *int64
	MaxPrice   *int64
	Components Components
	InStock    bool
	Statuses   []Status
	Sort       Sort
	Limit      int
	Offset     int
}
