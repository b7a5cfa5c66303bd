package reconcile

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/freitasmatheusrn/supplier-sync/internal/normalizer"
)

func csvRow(no, a1, a2, a3 string) normalizer.Row {
	r := normalizer.NewRow(0)
	r.No = no
	r.Attributes[0], r.Attributes[1], r.Attributes[2] = a1, a2, a3
	r.URL = "https://s/" + no
	return r
}

func master(id int, a1, a2, a3 string) MasterRow {
	return MasterRow{ItemID: id, ValueDE: a1, ValueDE2: a2, ValueDE3: a3}
}

// naive mirrors the linear scan with removal that the index based matcher
// must agree with.
func naive(db []MasterRow, csv []normalizer.Row) Result {
	work := append([]normalizer.Row(nil), csv...)
	res := Result{}
	for _, m := range db {
		for i, r := range work {
			if rowKey(r) == m.key() {
				res.Common = append(res.Common, Pair{DB: m, CSV: r})
				work = append(work[:i], work[i+1:]...)
				break
			}
		}
	}
	res.Missing = append(res.Missing, work...)
	return res
}

func TestReconcile_Partition(t *testing.T) {
	csv := []normalizer.Row{
		csvRow("1", "Red", "S", ""),
		csvRow("2", "Red", "M", ""),
		csvRow("3", "Blue", "S", ""),
	}
	db := []MasterRow{
		master(10, "Red", "M", ""),
		master(11, "Green", "S", ""),
	}

	res := Reconcile(db, csv)
	if len(res.Common) != 1 || res.Common[0].DB.ItemID != 10 || res.Common[0].CSV.No != "2" {
		t.Fatalf("unexpected common: %+v", res.Common)
	}
	if len(res.Missing) != 2 || res.Missing[0].No != "1" || res.Missing[1].No != "3" {
		t.Fatalf("unexpected missing: %+v", res.Missing)
	}
}

func TestReconcile_AtMostOnceConsumption(t *testing.T) {
	csv := []normalizer.Row{csvRow("1", "Red", "", "")}
	db := []MasterRow{master(1, "Red", "", ""), master(2, "Red", "", "")}

	res := Reconcile(db, csv)
	if len(res.Common) != 1 {
		t.Fatalf("len(Common) = %d, want 1", len(res.Common))
	}
	if res.Common[0].DB.ItemID != 1 {
		t.Errorf("matched item %d, want the first master row", res.Common[0].DB.ItemID)
	}
	if len(res.Missing) != 0 {
		t.Errorf("len(Missing) = %d, want 0", len(res.Missing))
	}
}

func TestReconcile_DuplicateUploadRows(t *testing.T) {
	csv := []normalizer.Row{
		csvRow("1", "Red", "", ""),
		csvRow("2", "Red", "", ""),
	}
	db := []MasterRow{master(1, "Red", "", "")}

	res := Reconcile(db, csv)
	if len(res.Common) != 1 || res.Common[0].CSV.No != "1" {
		t.Fatalf("expected first upload row to be consumed: %+v", res.Common)
	}
	if len(res.Missing) != 1 || res.Missing[0].No != "2" {
		t.Fatalf("expected second upload row to be missing: %+v", res.Missing)
	}
}

func TestReconcile_OrderSensitive(t *testing.T) {
	csv := []normalizer.Row{csvRow("1", "S", "Red", "")}
	db := []MasterRow{master(1, "Red", "S", "")}

	res := Reconcile(db, csv)
	if len(res.Common) != 0 || len(res.Missing) != 1 {
		t.Errorf("permuted attributes must not match: %+v", res)
	}
}

func TestReconcile_AgreesWithLinearScan(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 42))
	values := []string{"", "a", "b"}
	pick := func() string { return values[r.IntN(len(values))] }

	for iter := range 200 {
		var csv []normalizer.Row
		for i := range r.IntN(15) {
			csv = append(csv, csvRow(string(rune('A'+i)), pick(), pick(), pick()))
		}
		var db []MasterRow
		for i := range r.IntN(15) {
			db = append(db, master(i, pick(), pick(), pick()))
		}

		got := Reconcile(db, csv)
		want := naive(db, csv)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("iteration %d: got %+v, want %+v", iter, got, want)
		}
		if len(got.Common)+len(got.Missing) != len(csv) {
			t.Fatalf("iteration %d: partition lost rows", iter)
		}
		if again := Reconcile(db, csv); !reflect.DeepEqual(got, again) {
			t.Fatalf("iteration %d: result is not deterministic", iter)
		}
	}
}

func TestCheckAttributeCounts(t *testing.T) {
	two := []normalizer.Row{csvRow("1", "Red", "S", "")}
	three := []MasterRow{master(1, "Red", "S", "Cotton")}
	gap := []MasterRow{master(1, "Red", "", "Cotton")}

	if err := CheckAttributeCounts(two, three); !errors.Is(err, ErrAttributeCountMismatch) {
		t.Errorf("expected ErrAttributeCountMismatch, got %v", err)
	}
	if err := CheckAttributeCounts(two, []MasterRow{master(1, "Blue", "L", "")}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckAttributeCounts(nil, three); !errors.Is(err, ErrNoUploadRows) {
		t.Errorf("expected ErrNoUploadRows, got %v", err)
	}
	if err := CheckAttributeCounts(two, nil); err != nil {
		t.Errorf("empty master data should pass, got %v", err)
	}
	if UsedAttributes(gap[0].key()) != 3 {
		t.Errorf("UsedAttributes counts the highest filled slot")
	}
	if AttributesEqual(nil, three) {
		t.Error("AttributesEqual on empty upload should be false")
	}
}

func TestPendingUpdates(t *testing.T) {
	same := Pair{
		DB:  MasterRow{ItemID: 1, URL: "https://s/1", PriceRMB: "12.50"},
		CSV: normalizer.Row{URL: "https://s/1", Price: "12.5"},
	}
	changed := Pair{
		DB:  MasterRow{ItemID: 2, EAN: "6230000000000", URL: "https://old", PriceRMB: "3"},
		CSV: normalizer.Row{URL: "https://new", Price: "3"},
	}

	if same.PriceStatus() != StatusMatches || same.URLStatus() != StatusMatches {
		t.Errorf("expected matching pair, got url=%s price=%s", same.URLStatus(), same.PriceStatus())
	}
	if changed.URLStatus() != StatusDifferent || changed.PriceStatus() != StatusMatches {
		t.Errorf("unexpected statuses url=%s price=%s", changed.URLStatus(), changed.PriceStatus())
	}
	if AllMatch([]Pair{same, changed}) {
		t.Error("AllMatch should be false")
	}
	if !AllMatch([]Pair{same}) {
		t.Error("AllMatch should be true")
	}

	updates := PendingUpdates([]Pair{same, changed})
	want := []SupplierUpdate{{ItemID: 2, EAN: "6230000000000", URL: "https://new", Price: "3"}}
	if !reflect.DeepEqual(updates, want) {
		t.Errorf("PendingUpdates = %+v, want %+v", updates, want)
	}

	applied := ApplyConfirmed([]Pair{same, changed}, map[int]struct{}{2: {}})
	if applied[1].DB.URL != "https://new" || changed.DB.URL != "https://old" {
		t.Errorf("ApplyConfirmed did not copy or mutated input: %+v", applied[1].DB)
	}
	if !AllMatch(applied) {
		t.Error("all pairs should match after applying updates")
	}
}
