package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type Variant struct {
	ID        string
	Title     string
	Price     decimal.Decimal
	Currency  string
	Available bool
}

type Product struct {
	ID              string
	Handle          string
	Title           string
	DescriptionHTML string
	ImageURL        string
	Variants        []Variant
}

// DefaultVariant is the first available variant, or the first variant.
func (p *Product) DefaultVariant() (Variant, bool) {
	for _, v := range p.Variants {
		if v.Available {
			return v, true
		}
	}
	if len(p.Variants) > 0 {
		return p.Variants[0], true
	}
	return Variant{}, false
}

// Variant looks up a variant by id.
func (p *Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}
