package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var ErrItemNotFound = errors.New("item not found")

// InsertItemParams carries one item row with its supplier link and variation
// values.
type InsertItemParams struct {
	ParentID   int32
	ItemIDDE   string
	ParentNoDE string
	SuppCat    string
	EAN        string
	TariffCode string
	TaricID    string
	Weight     float64
	Width      float64
	Height     float64
	Length     float64
	ItemNameCN string
	ItemNameDE string
	ItemName   string
	RMBPrice   string

	SupplierID int32
	URL        string
	PriceRMB   string

	ItemNoDE int32
	ValueDE  string
	ValueDE2 string
	ValueDE3 string
	ValueEN  string
	ValueEN2 string
	ValueEN3 string
}

const insertItem = `
WITH t AS (
    INSERT INTO titems (parent_id, item_id_de, parent_no_de, supp_cat, ean, tariff_code, taric_id,
                        weight, width, height, length, item_name_cn, item_name_de, item_name, rmb_price)
    VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''),
            $8, $9, $10, $11, NULLIF($12, ''), NULLIF($13, ''), NULLIF($14, ''), NULLIF($15, ''))
    RETURNING id
), s AS (
    INSERT INTO supplier_items (titem_id, supplier_id, url, price_rmb)
    SELECT id, $16, $17, NULLIF($18, '') FROM t
)
INSERT INTO variation_values (titem_id, item_id_de, item_no_de,
                              value_de, value_de_2, value_de_3, value_en, value_en_2, value_en_3)
SELECT id, $2, $19, NULLIF($20, ''), NULLIF($21, ''), NULLIF($22, ''), NULLIF($23, ''), NULLIF($24, ''), NULLIF($25, '')
FROM t`

func (p InsertItemParams) args() []any {
	return []any{
		p.ParentID, p.ItemIDDE, p.ParentNoDE, p.SuppCat, p.EAN, p.TariffCode, p.TaricID,
		p.Weight, p.Width, p.Height, p.Length, p.ItemNameCN, p.ItemNameDE, p.ItemName, p.RMBPrice,
		p.SupplierID, p.URL, p.PriceRMB,
		p.ItemNoDE, p.ValueDE, p.ValueDE2, p.ValueDE3, p.ValueEN, p.ValueEN2, p.ValueEN3,
	}
}

func (q *Queries) InsertItem(ctx context.Context, p InsertItemParams) error {
	_, err := q.db.Exec(ctx, insertItem, p.args()...)
	return err
}

// InsertItems writes all items in a single round trip. Callers wanting all or
// nothing semantics run it inside a transaction.
func (q *Queries) InsertItems(ctx context.Context, items []InsertItemParams) error {
	b := &pgx.Batch{}
	for _, p := range items {
		b.Queue(insertItem, p.args()...)
	}
	results := q.db.SendBatch(ctx, b)
	for i := range items {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("item %d (ean %s): %w", i, items[i].EAN, err)
		}
	}
	return results.Close()
}

type UpdateSupplierItemParams struct {
	ItemNoDE int32
	URL      string
	PriceRMB string
}

// UpdateSupplierItem rewrites url and price of the supplier rows linked to
// the item. ErrItemNotFound is returned when no row matched.
func (q *Queries) UpdateSupplierItem(ctx context.Context, p UpdateSupplierItemParams) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE supplier_items s
		 SET url = $2, price_rmb = NULLIF($3, ''), updated_at = now()
		 FROM variation_values v
		 WHERE v.titem_id = s.titem_id AND v.item_no_de = $1`,
		p.ItemNoDE, p.URL, p.PriceRMB)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Store adds transactional helpers on top of Queries.
type Store struct {
	*Queries
	db TxBeginner
}

func NewStore(db TxBeginner) *Store {
	return &Store{Queries: New(db), db: db}
}

// InsertItemsTx inserts items atomically: either every item is stored or
// none is.
func (s *Store) InsertItemsTx(ctx context.Context, items []InsertItemParams) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.WithTx(tx).InsertItems(ctx, items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
