package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestApply_StepOrder(t *testing.T) {
	e := NewEngine(zap.NewNop())

	rule := Rule{Remove: "X", Find: "A", Replace: "B", Formula: "x*2", Prefix: "P", Suffix: "S"}
	if got := e.Apply("XA5", rule, nil, Positional{}); got != "PB5S" {
		t.Errorf("Apply = %q, want PB5S", got)
	}
}

func TestApply(t *testing.T) {
	e := NewEngine(zap.NewNop())
	constants := map[string]decimal.Decimal{
		"rate": decimal.RequireFromString("1.5"),
		"x":    decimal.NewFromInt(100),
	}

	tests := []struct {
		name  string
		raw   string
		rule  Rule
		attrs Positional
		want  string
	}{
		{
			name: "identity",
			raw:  "Red",
			rule: Rule{},
			want: "Red",
		},
		{
			name: "remove then formula",
			raw:  "12cm",
			rule: Rule{Remove: "cm", Formula: "x/2"},
			want: "6",
		},
		{
			name: "find replace is literal",
			raw:  "a-b-c",
			rule: Rule{Find: "-", Replace: "$1"},
			want: "a$1b$1c",
		},
		{
			name: "find without replace deletes",
			raw:  "10 pcs",
			rule: Rule{Find: `\s*pcs`},
			want: "10",
		},
		{
			name: "constant in formula",
			raw:  "4",
			rule: Rule{Formula: "x * rate"},
			want: "6",
		},
		{
			name: "x shadows constant named x",
			raw:  "2",
			rule: Rule{Formula: "x + 1"},
			want: "3",
		},
		{
			name:  "positional attribute",
			raw:   "3",
			rule:  Rule{Formula: "x * attr2"},
			attrs: Positional{"a", "4", ""},
			want:  "12",
		},
		{
			name:  "non numeric attribute fails soft",
			raw:   "3",
			rule:  Rule{Formula: "x * attr1"},
			attrs: Positional{"Red", "", ""},
			want:  "3",
		},
		{
			name: "formula skipped for text",
			raw:  "Large",
			rule: Rule{Formula: "x * 2"},
			want: "Large",
		},
		{
			name: "formula reads leading number",
			raw:  "5kg",
			rule: Rule{Formula: "x*2"},
			want: "10",
		},
		{
			name: "formula reads leading number after spaces",
			raw:  " 12.5 cm",
			rule: Rule{Formula: "x * 2", Suffix: "cm"},
			want: "25cm",
		},
		{
			name: "formula skipped without leading number",
			raw:  "B5",
			rule: Rule{Formula: "x*2"},
			want: "B5",
		},
		{
			name: "unknown constant fails soft",
			raw:  "2",
			rule: Rule{Formula: "x * missing", Suffix: "kg"},
			want: "2kg",
		},
		{
			name: "rejected token fails soft",
			raw:  "2",
			rule: Rule{Formula: "x; drop"},
			want: "2",
		},
		{
			name: "bad remove pattern keeps value",
			raw:  "a(b",
			rule: Rule{Remove: "(", Prefix: ">"},
			want: ">a(b",
		},
		{
			name: "bad find pattern keeps value",
			raw:  "abc",
			rule: Rule{Find: "[", Replace: "x"},
			want: "abc",
		},
		{
			name: "prefix and suffix on empty value",
			raw:  "",
			rule: Rule{Prefix: "<", Suffix: ">"},
			want: "<>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Apply(tt.raw, tt.rule, constants, tt.attrs)
			if got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRuleSet(t *testing.T) {
	rs := IdentitySet([]string{"Attributes1", "price"})
	if len(rs) != 2 {
		t.Fatalf("len = %d, want 2", len(rs))
	}
	if !rs.For("Attributes1").IsIdentity() {
		t.Error("expected identity rule")
	}
	if !rs.For("unknown").IsIdentity() {
		t.Error("expected missing column to be identity")
	}

	clone := rs.Clone()
	clone["price"] = Rule{Prefix: "$"}
	if !rs.For("price").IsIdentity() {
		t.Error("clone shares storage with original")
	}
}
