package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type Parent struct {
	ID           int32
	ParentNoDE   string
	ParentNameEN string
	ParentNameDE pgtype.Text
	ParentNameCN pgtype.Text
	SubClassID   pgtype.UUID
}

type ParentSupplier struct {
	SupplierID int32
	SuppCat    pgtype.Text
	TariffCode pgtype.Text
	TaricID    pgtype.Text
}

// MasterItem is one existing item of a parent with its supplier link.
type MasterItem struct {
	ItemNoDE   int32
	EAN        string
	ValueDE    pgtype.Text
	ValueDE2   pgtype.Text
	ValueDE3   pgtype.Text
	ValueEN    pgtype.Text
	ValueEN2   pgtype.Text
	ValueEN3   pgtype.Text
	URL        pgtype.Text
	PriceRMB   pgtype.Text
	ParentNoDE pgtype.Text
	ItemName   pgtype.Text
	SupplierID pgtype.Int4
	SuppCat    pgtype.Text
	TariffCode pgtype.Text
	TaricID    pgtype.Text
}

const parentColumns = `id, parent_no_de, parent_name_en, parent_name_de, parent_name_cn, sub_class_id`

func (q *Queries) FindParentByNameEN(ctx context.Context, name string) (Parent, error) {
	var p Parent
	err := q.db.QueryRow(ctx,
		`SELECT `+parentColumns+` FROM parents WHERE parent_name_en = $1 ORDER BY id LIMIT 1`, name,
	).Scan(&p.ID, &p.ParentNoDE, &p.ParentNameEN, &p.ParentNameDE, &p.ParentNameCN, &p.SubClassID)
	return p, err
}

func (q *Queries) SearchParents(ctx context.Context, term string, limit int32) ([]Parent, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+parentColumns+` FROM parents
		 WHERE parent_name_en ILIKE '%' || $1 || '%'
		 ORDER BY parent_name_en LIMIT $2`, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Parent
	for rows.Next() {
		var p Parent
		if err := rows.Scan(&p.ID, &p.ParentNoDE, &p.ParentNameEN, &p.ParentNameDE, &p.ParentNameCN, &p.SubClassID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *Queries) ListParentSuppliers(ctx context.Context, parentID int32) ([]ParentSupplier, error) {
	rows, err := q.db.Query(ctx,
		`SELECT supplier_id, supp_cat, tariff_code, taric_id FROM parent_suppliers
		 WHERE parent_id = $1 ORDER BY position, supplier_id`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ParentSupplier
	for rows.Next() {
		var s ParentSupplier
		if err := rows.Scan(&s.SupplierID, &s.SuppCat, &s.TariffCode, &s.TaricID); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListMasterItems returns the items of a parent in creation order.
func (q *Queries) ListMasterItems(ctx context.Context, parentID int32) ([]MasterItem, error) {
	rows, err := q.db.Query(ctx,
		`SELECT v.item_no_de, t.ean,
		        v.value_de, v.value_de_2, v.value_de_3,
		        v.value_en, v.value_en_2, v.value_en_3,
		        s.url, s.price_rmb, t.parent_no_de, t.item_name,
		        s.supplier_id, t.supp_cat, t.tariff_code, t.taric_id
		 FROM titems t
		 JOIN variation_values v ON v.titem_id = t.id
		 LEFT JOIN supplier_items s ON s.titem_id = t.id
		 WHERE t.parent_id = $1
		 ORDER BY t.id, s.id`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MasterItem
	for rows.Next() {
		var m MasterItem
		if err := rows.Scan(
			&m.ItemNoDE, &m.EAN,
			&m.ValueDE, &m.ValueDE2, &m.ValueDE3,
			&m.ValueEN, &m.ValueEN2, &m.ValueEN3,
			&m.URL, &m.PriceRMB, &m.ParentNoDE, &m.ItemName,
			&m.SupplierID, &m.SuppCat, &m.TariffCode, &m.TaricID,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (q *Queries) ListUsedEANs(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, `SELECT ean FROM titems`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ean string
		if err := rows.Scan(&ean); err != nil {
			return nil, err
		}
		out = append(out, ean)
	}
	return out, rows.Err()
}

func (q *Queries) ListUsedItemIDs(ctx context.Context) ([]int, error) {
	rows, err := q.db.Query(ctx, `SELECT item_no_de FROM variation_values`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, int(id))
	}
	return out, rows.Err()
}
