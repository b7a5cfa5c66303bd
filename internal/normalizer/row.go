package normalizer

import (
	"strconv"

	"github.com/freitasmatheusrn/supplier-sync/internal/rules"
)

const (
	ColNo          = "No"
	ColAttributes1 = "Attributes1"
	ColAttributes2 = "Attributes2"
	ColAttributes3 = "Attributes3"
	ColAttributes4 = "Attributes4"
	ColAttributes5 = "Attributes5"
	ColURL         = "URL"
	ColPrice       = "price"
	ColWeight      = "weight"
	ColHeight      = "height"
	ColWidth       = "width"
	ColLength      = "length"
)

var attributeColumns = [5]string{ColAttributes1, ColAttributes2, ColAttributes3, ColAttributes4, ColAttributes5}

// DimensionColumns default to "0" when a row has no value for them.
var DimensionColumns = []string{ColWeight, ColHeight, ColWidth, ColLength}

// Row is one supplier combination in canonical form.
type Row struct {
	No         string    `json:"No"`
	URL        string    `json:"URL"`
	Price      string    `json:"price"`
	Attributes [5]string `json:"attributes"`
	Weight     string    `json:"weight"`
	Height     string    `json:"height"`
	Width      string    `json:"width"`
	Length     string    `json:"length"`
}

func NewRow(index int) Row {
	return Row{
		No:     strconv.Itoa(index + 1),
		Weight: "0",
		Height: "0",
		Width:  "0",
		Length: "0",
	}
}

// Get returns the value stored under a canonical column name.
func (r Row) Get(column string) string {
	switch column {
	case ColNo:
		return r.No
	case ColURL:
		return r.URL
	case ColPrice:
		return r.Price
	case ColWeight:
		return r.Weight
	case ColHeight:
		return r.Height
	case ColWidth:
		return r.Width
	case ColLength:
		return r.Length
	}
	if i := AttributeIndex(column); i >= 0 {
		return r.Attributes[i]
	}
	return ""
}

// Set stores v under a canonical column name. Unknown columns are ignored.
func (r *Row) Set(column, v string) {
	switch column {
	case ColNo:
		r.No = v
	case ColURL:
		r.URL = v
	case ColPrice:
		r.Price = v
	case ColWeight:
		r.Weight = v
	case ColHeight:
		r.Height = v
	case ColWidth:
		r.Width = v
	case ColLength:
		r.Length = v
	default:
		if i := AttributeIndex(column); i >= 0 {
			r.Attributes[i] = v
		}
	}
}

func (r Row) Positional() rules.Positional {
	return rules.Positional{r.Attributes[0], r.Attributes[1], r.Attributes[2]}
}

// AttributeIndex returns the zero based slot of an AttributesN column, or -1.
func AttributeIndex(column string) int {
	for i, c := range attributeColumns {
		if c == column {
			return i
		}
	}
	return -1
}

func IsDimension(column string) bool {
	for _, c := range DimensionColumns {
		if c == column {
			return true
		}
	}
	return false
}

// IsAllowed reports whether column is one of the recognized upload headers.
func IsAllowed(column string) bool {
	return column == ColURL || column == ColPrice || AttributeIndex(column) >= 0 || IsDimension(column)
}
