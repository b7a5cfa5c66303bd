package reconcile

import (
	"strings"

	"github.com/freitasmatheusrn/supplier-sync/pkg/formula"
)

const (
	StatusMatches   = "Matches"
	StatusDifferent = "Different"
)

// SupplierUpdate carries the supplier link and price to write back for an
// existing item.
type SupplierUpdate struct {
	ItemID int    `json:"item_id"`
	EAN    string `json:"ean"`
	URL    string `json:"url"`
	Price  string `json:"price"`
}

func (p Pair) URLDiffers() bool {
	return strings.TrimSpace(p.DB.URL) != strings.TrimSpace(p.CSV.URL)
}

// PriceDiffers compares numerically when both prices parse, textually
// otherwise.
func (p Pair) PriceDiffers() bool {
	a, okA := formula.ParseNumber(p.DB.PriceRMB)
	b, okB := formula.ParseNumber(p.CSV.Price)
	if okA && okB {
		return !a.Equal(b)
	}
	return strings.TrimSpace(p.DB.PriceRMB) != strings.TrimSpace(p.CSV.Price)
}

func (p Pair) URLStatus() string {
	return status(p.URLDiffers())
}

func (p Pair) PriceStatus() string {
	return status(p.PriceDiffers())
}

func (p Pair) Matches() bool {
	return !p.URLDiffers() && !p.PriceDiffers()
}

func status(differs bool) string {
	if differs {
		return StatusDifferent
	}
	return StatusMatches
}

// AllMatch reports whether no pair needs an update.
func AllMatch(pairs []Pair) bool {
	for _, p := range pairs {
		if !p.Matches() {
			return false
		}
	}
	return true
}

// PendingUpdates lists the updates needed to align master data with the
// upload for every pair that differs.
func PendingUpdates(pairs []Pair) []SupplierUpdate {
	var out []SupplierUpdate
	for _, p := range pairs {
		if p.Matches() {
			continue
		}
		out = append(out, SupplierUpdate{
			ItemID: p.DB.ItemID,
			EAN:    p.DB.EAN,
			URL:    p.CSV.URL,
			Price:  p.CSV.Price,
		})
	}
	return out
}

// ApplyConfirmed copies the uploaded link and price into the master rows of
// the pairs whose item ids are in confirmed.
func ApplyConfirmed(pairs []Pair, confirmed map[int]struct{}) []Pair {
	out := make([]Pair, len(pairs))
	for i, p := range pairs {
		if _, ok := confirmed[p.DB.ItemID]; ok {
			p.DB.URL = p.CSV.URL
			p.DB.PriceRMB = p.CSV.Price
		}
		out[i] = p
	}
	return out
}
