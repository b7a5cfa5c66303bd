package identifier

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
)

// zeroSource always returns 0.
type zeroSource struct{}

func (zeroSource) IntN(int) int { return 0 }

func TestChecksum(t *testing.T) {
	tests := []struct {
		first12 string
		want    int
	}{
		{"623000000000", 0},
		{"400638133393", 1},
		{"590123412345", 7},
	}
	for _, tt := range tests {
		if got := Checksum(tt.first12); got != tt.want {
			t.Errorf("Checksum(%q) = %d, want %d", tt.first12, got, tt.want)
		}
	}
}

func TestGenerateEAN13_ZeroDigits(t *testing.T) {
	if got := GenerateEAN13(zeroSource{}); got != "6230000000000" {
		t.Errorf("GenerateEAN13 = %q, want 6230000000000", got)
	}
}

func TestGenerateEAN13_ChecksumHolds(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		ean := GenerateEAN13(r)
		if !strings.HasPrefix(ean, EANPrefix) {
			t.Fatalf("ean %q is missing prefix", ean)
		}
		if !Valid(ean) {
			t.Fatalf("ean %q has a wrong check digit", ean)
		}
	}
}

func TestValid(t *testing.T) {
	if Valid("6230000000001") {
		t.Error("expected wrong check digit to be invalid")
	}
	if Valid("62300000000") {
		t.Error("expected short code to be invalid")
	}
	if Valid("623000000000a") {
		t.Error("expected non digit code to be invalid")
	}
}

func TestUniqueItemID_Distinct(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	used := make(map[int]struct{})
	const n = 500

	seen := make(map[int]struct{})
	for range n {
		id, err := UniqueItemID(r, used, 1, 9999, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id < 1 || id > 9999 {
			t.Fatalf("id %d out of range", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("id %d returned twice", id)
		}
		seen[id] = struct{}{}
	}
	if len(used) != n {
		t.Errorf("len(used) = %d, want %d", len(used), n)
	}
}

func TestUniqueItemID_FillsWholeRange(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	used := make(map[int]struct{})
	for range 10 {
		if _, err := UniqueItemID(r, used, 1, 10, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(used) != 10 {
		t.Fatalf("len(used) = %d, want 10", len(used))
	}

	_, err := UniqueItemID(r, used, 1, 10, 2)
	if !errors.Is(err, ErrCapacityExhausted) {
		t.Errorf("expected ErrCapacityExhausted, got %v", err)
	}
}

func TestUniqueEAN13_Exhausted(t *testing.T) {
	used := map[string]struct{}{"6230000000000": {}}
	_, err := UniqueEAN13(zeroSource{}, used, 5)
	if !errors.Is(err, ErrCapacityExhausted) {
		t.Errorf("expected ErrCapacityExhausted, got %v", err)
	}
}

func TestRegistry_DoesNotMutateSnapshot(t *testing.T) {
	usedIDs := []int{1, 2, 3}
	reg := NewRegistry(rand.New(rand.NewPCG(9, 9)), []string{"6230000000000"}, usedIDs, WithItemIDRange(1, 5))

	a, err := reg.NextItemID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := reg.NextItemID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b || a < 4 || b < 4 {
		t.Errorf("expected ids 4 and 5, got %d and %d", a, b)
	}
	if _, err := reg.NextItemID(); !errors.Is(err, ErrCapacityExhausted) {
		t.Errorf("expected ErrCapacityExhausted, got %v", err)
	}
	if len(usedIDs) != 3 {
		t.Errorf("snapshot was modified: %v", usedIDs)
	}

	ean, err := reg.NextEAN()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ean == "6230000000000" || !reg.HasEAN(ean) {
		t.Errorf("unexpected ean %q", ean)
	}
}
