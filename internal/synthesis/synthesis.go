// Package synthesis turns uploaded rows missing from master data into the
// records inserted for new items.
package synthesis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/freitasmatheusrn/supplier-sync/internal/identifier"
	"github.com/freitasmatheusrn/supplier-sync/internal/normalizer"
	"github.com/freitasmatheusrn/supplier-sync/internal/rules"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrZeroWeight = errors.New("weight resolves to zero")
	ErrNoSupplier = errors.New("parent has no supplier data")
)

// ValidationError rejects a whole batch. URLs lists the offending rows when
// the error is row specific.
type ValidationError struct {
	Err  error
	URLs []string
}

func (e *ValidationError) Error() string {
	if len(e.URLs) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), strings.Join(e.URLs, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type Batch struct {
	Missing []normalizer.Row
	// Existing holds records already synthesized for the session. Missing
	// rows whose URL appears there are skipped.
	Existing   []Record
	Parent     ParentMeta
	Suppliers  []SupplierMeta
	Operations DimensionOperations
	Constants  map[string]decimal.Decimal
}

type Synthesizer struct {
	engine *rules.Engine
	logger *zap.Logger
}

func NewSynthesizer(engine *rules.Engine, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{engine: engine, logger: logger}
}

// Synthesize builds one record per missing row, minting identifiers from reg.
// Rows whose URL is already in b.Existing or earlier in the batch are skipped
// first. The batch is rejected when any remaining record ends up with a zero
// weight.
func (s *Synthesizer) Synthesize(b Batch, reg *identifier.Registry) ([]Record, error) {
	if len(b.Missing) == 0 {
		return nil, nil
	}
	if len(b.Suppliers) == 0 {
		return nil, &ValidationError{Err: ErrNoSupplier}
	}
	supplier := b.Suppliers[0]

	seen := make(map[string]struct{}, len(b.Existing)+len(b.Missing))
	for _, r := range b.Existing {
		if r.SupplierItem.URL != "" {
			seen[r.SupplierItem.URL] = struct{}{}
		}
	}

	records := make([]Record, 0, len(b.Missing))
	for _, row := range b.Missing {
		if row.URL != "" {
			if _, dup := seen[row.URL]; dup {
				continue
			}
			seen[row.URL] = struct{}{}
		}

		ean, err := reg.NextEAN()
		if err != nil {
			return nil, fmt.Errorf("minting ean for row %s: %w", row.No, err)
		}
		itemNo, err := reg.NextItemID()
		if err != nil {
			return nil, fmt.Errorf("minting item id for row %s: %w", row.No, err)
		}

		attrs := row.Positional()
		records = append(records, Record{
			SupplierItem: SupplierItem{
				SupplierID: supplier.SupplierID,
				URL:        row.URL,
				PriceRMB:   row.Price,
			},
			TItem: TItem{
				ParentID:   b.Parent.ID,
				ItemIDDE:   ean,
				ParentNoDE: b.Parent.ParentNoDE,
				SuppCat:    supplier.SuppCat,
				EAN:        ean,
				TariffCode: supplier.TariffCode,
				TaricID:    supplier.TaricID,
				Weight:     s.dimension(row.Weight, b.Operations.Weight, b.Constants, attrs),
				Width:      s.dimension(row.Width, b.Operations.Width, b.Constants, attrs),
				Height:     s.dimension(row.Height, b.Operations.Height, b.Constants, attrs),
				Length:     s.dimension(row.Length, b.Operations.Length, b.Constants, attrs),
				ItemNameCN: DisplayName(b.Parent.NameCN, attrs[:]...),
				ItemNameDE: DisplayName(b.Parent.NameDE, attrs[:]...),
				ItemName:   DisplayName(b.Parent.NameEN, attrs[:]...),
				RMBPrice:   row.Price,
			},
			VariationValues: VariationValues{
				ItemIDDE: ean,
				ItemNoDE: itemNo,
				ValueDE:  attrs[0],
				ValueDE2: attrs[1],
				ValueDE3: attrs[2],
				ValueEN:  attrs[0],
				ValueEN2: attrs[1],
				ValueEN3: attrs[2],
			},
		})
	}

	if err := ValidateWeights(records); err != nil {
		return nil, err
	}

	s.logger.Info("records synthesized",
		zap.String("parent_no_de", b.Parent.ParentNoDE),
		zap.Int("count", len(records)),
	)
	return records, nil
}

// ApplyDimensionOperations re-evaluates the dimension formulas on records
// that were already synthesized, with x bound to the stored value.
func (s *Synthesizer) ApplyDimensionOperations(records []Record, ops DimensionOperations, constants map[string]decimal.Decimal) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		attrs := rules.Positional{r.VariationValues.ValueDE, r.VariationValues.ValueDE2, r.VariationValues.ValueDE3}
		r.TItem.Weight = s.dimension(formatDimension(r.TItem.Weight), ops.Weight, constants, attrs)
		r.TItem.Height = s.dimension(formatDimension(r.TItem.Height), ops.Height, constants, attrs)
		r.TItem.Width = s.dimension(formatDimension(r.TItem.Width), ops.Width, constants, attrs)
		r.TItem.Length = s.dimension(formatDimension(r.TItem.Length), ops.Length, constants, attrs)
		out[i] = r
	}
	return out
}

func (s *Synthesizer) dimension(raw, expr string, constants map[string]decimal.Decimal, attrs rules.Positional) float64 {
	if expr != "" {
		raw = s.engine.Formula(raw, expr, constants, attrs)
	}
	return ParseDimension(raw)
}

// ParseDimension reads a dimension value; blank or non numeric input is 0.
func ParseDimension(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func formatDimension(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// DisplayName joins the non empty attributes with "-" and appends them to the
// parent name.
func DisplayName(parent string, attrs ...string) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if a = strings.TrimSpace(a); a != "" {
			parts = append(parts, a)
		}
	}
	suffix := strings.Join(parts, "-")
	switch {
	case suffix == "":
		return parent
	case parent == "":
		return suffix
	default:
		return parent + " " + suffix
	}
}

// ValidateWeights rejects records whose weight is exactly zero.
func ValidateWeights(records []Record) error {
	var urls []string
	for _, r := range records {
		if r.TItem.Weight == 0 {
			urls = append(urls, r.SupplierItem.URL)
		}
	}
	if len(urls) > 0 {
		return &ValidationError{Err: ErrZeroWeight, URLs: urls}
	}
	return nil
}

// Merge appends fresh to acc, dropping records whose supplier URL is already
// present in acc or earlier in fresh. Records without a URL are always kept.
func Merge(acc, fresh []Record) []Record {
	seen := make(map[string]struct{}, len(acc)+len(fresh))
	for _, r := range acc {
		if r.SupplierItem.URL != "" {
			seen[r.SupplierItem.URL] = struct{}{}
		}
	}
	out := append([]Record(nil), acc...)
	for _, r := range fresh {
		url := r.SupplierItem.URL
		if url != "" {
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}
