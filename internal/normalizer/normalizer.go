// Package normalizer reshapes uploaded supplier sheets into canonical rows and
// keeps the untouched upload around so every rule change is recomputed from
// the original values.
package normalizer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/freitasmatheusrn/supplier-sync/internal/rules"
	"github.com/shopspring/decimal"
)

var (
	ErrColumnOutOfRange = errors.New("column position out of range")
	ErrUnknownColumn    = errors.New("unknown column")
)

var baseColumns = []string{ColAttributes1, ColAttributes2, ColAttributes3, ColURL, ColPrice}

// Table is a normalized upload. Headers lists the canonical columns in display
// order and Sources[i] names the upload column that feeds Headers[i].
type Table struct {
	Headers  []string            `json:"headers"`
	Sources  []string            `json:"sources"`
	Rules    rules.RuleSet       `json:"rules"`
	Rows     []Row               `json:"rows"`
	Original []map[string]string `json:"original"`
}

// Normalize builds a table from parsed rows. headers carries the upload's
// column order; when nil the union of row keys is used in sorted order.
func Normalize(headers []string, raw []map[string]string) *Table {
	if headers == nil {
		headers = collectHeaders(raw)
	}

	var recognized []string
	seen := make(map[string]struct{})
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if !IsAllowed(h) {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		recognized = append(recognized, h)
	}

	var attrSources []string
	for _, h := range recognized {
		if AttributeIndex(h) >= 0 && len(attrSources) < 3 {
			attrSources = append(attrSources, h)
		}
	}
	used := make(map[string]struct{}, 3)
	for _, s := range attrSources {
		used[s] = struct{}{}
	}
	for _, c := range baseColumns[:3] {
		if len(attrSources) == 3 {
			break
		}
		if _, ok := used[c]; ok {
			continue
		}
		attrSources = append(attrSources, c)
		used[c] = struct{}{}
	}

	t := &Table{
		Headers: append([]string(nil), baseColumns...),
		Sources: append(attrSources, ColURL, ColPrice),
	}
	for _, h := range recognized {
		if h == ColURL || h == ColPrice {
			continue
		}
		if i := AttributeIndex(h); i >= 0 && i < 3 {
			continue
		}
		if _, consumed := used[h]; consumed {
			continue
		}
		t.Headers = append(t.Headers, h)
		t.Sources = append(t.Sources, h)
	}

	t.Original = make([]map[string]string, len(raw))
	for i, r := range raw {
		t.Original[i] = trimKeys(r)
	}
	t.Rules = rules.IdentitySet(t.Headers)
	t.Rows = t.project()
	return t
}

// MoveColumn moves the header at position from to position to. Values stay
// in place by position, so the moved label now names the values found at its
// new position. Rows keep the previous layout until Recompute is called.
func (t *Table) MoveColumn(from, to int) error {
	n := len(t.Headers)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d with %d columns", ErrColumnOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}

	moved := t.Headers[from]
	headers := append(append([]string(nil), t.Headers[:from]...), t.Headers[from+1:]...)
	headers = append(headers[:to], append([]string{moved}, headers[to:]...)...)
	t.Headers = headers
	return nil
}

func (t *Table) SetRule(column string, rule rules.Rule) error {
	if !t.hasHeader(column) {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	if t.Rules == nil {
		t.Rules = rules.IdentitySet(t.Headers)
	}
	t.Rules[column] = rule
	return nil
}

// Recompute rebuilds every row from the original upload and applies the
// current rules. Formulas see the positional attributes as projected, before
// any rule ran.
func (t *Table) Recompute(engine *rules.Engine, constants map[string]decimal.Decimal) {
	rows := t.project()
	for i := range rows {
		attrs := rows[i].Positional()
		for _, h := range t.Headers {
			rule := t.Rules.For(h)
			if rule.IsIdentity() {
				continue
			}
			rows[i].Set(h, engine.Apply(rows[i].Get(h), rule, constants, attrs))
		}
	}
	t.Rows = rows
}

func (t *Table) project() []Row {
	rows := make([]Row, len(t.Original))
	for i, orig := range t.Original {
		row := NewRow(i)
		for p, h := range t.Headers {
			v := orig[t.Sources[p]]
			if v == "" && IsDimension(h) {
				v = "0"
			}
			row.Set(h, v)
		}
		rows[i] = row
	}
	return rows
}

func (t *Table) hasHeader(column string) bool {
	for _, h := range t.Headers {
		if h == column {
			return true
		}
	}
	return false
}

func trimKeys(r map[string]string) map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[strings.TrimSpace(k)] = v
	}
	return out
}

func collectHeaders(raw []map[string]string) []string {
	seen := make(map[string]struct{})
	var headers []string
	for _, r := range raw {
		for k := range r {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			headers = append(headers, k)
		}
	}
	sort.Strings(headers)
	return headers
}
