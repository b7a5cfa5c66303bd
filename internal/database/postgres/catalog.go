package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type CatalogProduct struct {
	ID           pgtype.UUID
	Title        string
	Image        pgtype.Text
	Link         string
	Combinations []byte
	SubClassID   pgtype.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateCatalogProductParams struct {
	Title        string
	Image        string
	Link         string
	Combinations []byte
	SubClassID   pgtype.UUID
}

const catalogColumns = `id, title, image, link, combinations, sub_class_id, created_at, updated_at`

func scanCatalogProduct(row pgx.Row) (CatalogProduct, error) {
	var p CatalogProduct
	err := row.Scan(&p.ID, &p.Title, &p.Image, &p.Link, &p.Combinations, &p.SubClassID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) CreateCatalogProduct(ctx context.Context, arg CreateCatalogProductParams) (CatalogProduct, error) {
	return scanCatalogProduct(q.db.QueryRow(ctx,
		`INSERT INTO catalog_products (title, image, link, combinations, sub_class_id)
		 VALUES ($1, NULLIF($2, ''), $3, $4::jsonb, $5)
		 RETURNING `+catalogColumns,
		arg.Title, arg.Image, arg.Link, string(arg.Combinations), arg.SubClassID))
}

func (q *Queries) FindCatalogProductByLink(ctx context.Context, link string) (CatalogProduct, error) {
	return scanCatalogProduct(q.db.QueryRow(ctx,
		`SELECT `+catalogColumns+` FROM catalog_products WHERE link = $1`, link))
}

func (q *Queries) FindCatalogProductByID(ctx context.Context, id pgtype.UUID) (CatalogProduct, error) {
	return scanCatalogProduct(q.db.QueryRow(ctx,
		`SELECT `+catalogColumns+` FROM catalog_products WHERE id = $1`, id))
}

func (q *Queries) UpdateCatalogCombinations(ctx context.Context, id pgtype.UUID, combinations []byte) (CatalogProduct, error) {
	return scanCatalogProduct(q.db.QueryRow(ctx,
		`UPDATE catalog_products SET combinations = $2::jsonb, updated_at = now()
		 WHERE id = $1 RETURNING `+catalogColumns,
		id, string(combinations)))
}

func (q *Queries) ListCatalogProducts(ctx context.Context) ([]CatalogProduct, error) {
	return q.listCatalog(ctx, `SELECT `+catalogColumns+` FROM catalog_products ORDER BY created_at`)
}

func (q *Queries) ListCatalogProductsBySubClass(ctx context.Context, subClassID pgtype.UUID) ([]CatalogProduct, error) {
	return q.listCatalog(ctx,
		`SELECT `+catalogColumns+` FROM catalog_products WHERE sub_class_id = $1 ORDER BY created_at`, subClassID)
}

func (q *Queries) listCatalog(ctx context.Context, sql string, args ...any) ([]CatalogProduct, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CatalogProduct
	for rows.Next() {
		p, err := scanCatalogProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
