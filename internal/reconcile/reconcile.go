// Package reconcile partitions uploaded supplier rows into those already
// present in master data and those that still have to be created.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/freitasmatheusrn/supplier-sync/internal/normalizer"
)

var (
	ErrAttributeCountMismatch = errors.New("attribute count mismatch")
	ErrNoUploadRows           = errors.New("no uploaded rows to compare")
)

// MasterRow is one existing item of a parent product family. Null columns
// are read as empty strings.
type MasterRow struct {
	ItemID     int    `json:"item_id"`
	EAN        string `json:"ean"`
	ValueDE    string `json:"value_de"`
	ValueDE2   string `json:"value_de_2"`
	ValueDE3   string `json:"value_de_3"`
	ValueEN    string `json:"value_en"`
	ValueEN2   string `json:"value_en_2"`
	ValueEN3   string `json:"value_en_3"`
	URL        string `json:"url"`
	PriceRMB   string `json:"price_rmb"`
	ParentNoDE string `json:"parent_no_de"`
	ItemName   string `json:"item_name"`
	SupplierID int    `json:"supplier_id"`
	SuppCat    string `json:"supp_cat"`
	TariffCode string `json:"tariff_code"`
	TaricID    string `json:"taric_id"`
}

func (m MasterRow) key() [3]string {
	return [3]string{m.ValueDE, m.ValueDE2, m.ValueDE3}
}

func rowKey(r normalizer.Row) [3]string {
	return [3]string{r.Attributes[0], r.Attributes[1], r.Attributes[2]}
}

// Pair is a master row together with the uploaded row it matched.
type Pair struct {
	DB  MasterRow      `json:"db"`
	CSV normalizer.Row `json:"csv"`
}

type Result struct {
	Common  []Pair           `json:"common"`
	Missing []normalizer.Row `json:"missing"`
}

// Reconcile walks db in order and pairs each master row with the first
// uploaded row that has the same three attribute values. An uploaded row is
// consumed by at most one master row. Master rows without a partner are not
// reported; uploaded rows left over are Missing, in upload order.
func Reconcile(db []MasterRow, csv []normalizer.Row) Result {
	queues := make(map[[3]string][]int, len(csv))
	for i, r := range csv {
		k := rowKey(r)
		queues[k] = append(queues[k], i)
	}

	consumed := make([]bool, len(csv))
	res := Result{}
	for _, m := range db {
		k := m.key()
		q := queues[k]
		if len(q) == 0 {
			continue
		}
		idx := q[0]
		queues[k] = q[1:]
		consumed[idx] = true
		res.Common = append(res.Common, Pair{DB: m, CSV: csv[idx]})
	}

	for i, r := range csv {
		if !consumed[i] {
			res.Missing = append(res.Missing, r)
		}
	}
	return res
}

// UsedAttributes returns the highest positional attribute slot holding a
// value, so {a, "", c} counts as 3.
func UsedAttributes(values [3]string) int {
	n := 0
	for i, v := range values {
		if v != "" {
			n = i + 1
		}
	}
	return n
}

// AttributesEqual compares how many positional attributes the first row of
// each side uses.
func AttributesEqual(csv []normalizer.Row, db []MasterRow) bool {
	if len(csv) == 0 || len(db) == 0 {
		return false
	}
	return UsedAttributes(rowKey(csv[0])) == UsedAttributes(db[0].key())
}

// CheckAttributeCounts refuses a comparison whose sides use a different
// number of attributes. With no master rows every upload row is missing, so
// there is nothing to check.
func CheckAttributeCounts(csv []normalizer.Row, db []MasterRow) error {
	if len(csv) == 0 {
		return ErrNoUploadRows
	}
	if len(db) == 0 {
		return nil
	}
	if !AttributesEqual(csv, db) {
		return fmt.Errorf("%w: upload uses %d, master data uses %d",
			ErrAttributeCountMismatch,
			UsedAttributes(rowKey(csv[0])),
			UsedAttributes(db[0].key()),
		)
	}
	return nil
}
