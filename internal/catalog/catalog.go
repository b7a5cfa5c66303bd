// Package catalog keeps products collected from supplier sites together with
// their priced attribute combinations.
package catalog

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/freitasmatheusrn/supplier-sync/internal/normalizer"
)

var (
	ErrInvalidLink    = errors.New("invalid product link")
	ErrMissingPrice   = errors.New("combination without price")
	ErrDuplicateCombo = errors.New("duplicate combination")
)

type Combination struct {
	Attribute1 string `json:"attribute1,omitempty"`
	Attribute2 string `json:"attribute2,omitempty"`
	Attribute3 string `json:"attribute3,omitempty"`
	Attribute4 string `json:"attribute4,omitempty"`
	Attribute5 string `json:"attribute5,omitempty"`
	Price      string `json:"price"`
}

// signature identifies a combination by price and all five attributes.
type signature [6]string

func (c Combination) signature() signature {
	return signature{c.Price, c.Attribute1, c.Attribute2, c.Attribute3, c.Attribute4, c.Attribute5}
}

func (c Combination) attributes() [5]string {
	return [5]string{c.Attribute1, c.Attribute2, c.Attribute3, c.Attribute4, c.Attribute5}
}

type Product struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Image        string        `json:"image,omitempty"`
	Link         string        `json:"link"`
	SubClassID   string        `json:"sub_class_id,omitempty"`
	Combinations []Combination `json:"combinations"`
}

// ProcessLink normalizes a product url so the same listing always maps to the
// same link. Only the id query parameter survives.
func ProcessLink(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidLink, link)
	}
	if id := u.Query().Get("id"); id != "" {
		u.RawQuery = url.Values{"id": {id}}.Encode()
	} else {
		u.RawQuery = ""
	}
	u.Fragment = ""
	return u.String(), nil
}

// ValidateCombinations requires a price on every combination and rejects
// repeated signatures.
func ValidateCombinations(combos []Combination) error {
	seen := make(map[signature]struct{}, len(combos))
	for i, c := range combos {
		if c.Price == "" {
			return fmt.Errorf("combination %d: %w", i, ErrMissingPrice)
		}
		sig := c.signature()
		if _, ok := seen[sig]; ok {
			return fmt.Errorf("combination %d: %w", i, ErrDuplicateCombo)
		}
		seen[sig] = struct{}{}
	}
	return nil
}

// MergeCombinations appends the combinations of fresh not yet present in
// current and reports how many were added.
func MergeCombinations(current, fresh []Combination) ([]Combination, int) {
	seen := make(map[signature]struct{}, len(current)+len(fresh))
	out := make([]Combination, 0, len(current)+len(fresh))
	for _, c := range current {
		seen[c.signature()] = struct{}{}
		out = append(out, c)
	}
	added := 0
	for _, c := range fresh {
		sig := c.signature()
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, c)
		added++
	}
	return out, added
}

// ToRows flattens the combinations of products into upload rows numbered in
// order.
func ToRows(products []Product) []normalizer.Row {
	var rows []normalizer.Row
	for _, p := range products {
		for _, c := range p.Combinations {
			row := normalizer.NewRow(len(rows))
			row.URL = p.Link
			row.Price = c.Price
			row.Attributes = c.attributes()
			rows = append(rows, row)
		}
	}
	return rows
}

// ToRecords is ToRows keyed by column name, the shape produced by a parsed
// upload.
func ToRecords(products []Product) []map[string]string {
	rows := ToRows(products)
	out := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		rec := map[string]string{
			normalizer.ColNo:    r.No,
			normalizer.ColURL:   r.URL,
			normalizer.ColPrice: r.Price,
		}
		for i, v := range r.Attributes {
			rec[fmt.Sprintf("Attributes%d", i+1)] = v
		}
		out = append(out, rec)
	}
	return out
}
