package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// SubClass stores its rule configuration as raw JSON documents; decoding is
// left to the caller.
type SubClass struct {
	ID                     pgtype.UUID
	Name                   string
	AttributeModifications []byte
	DimensionOperations    []byte
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

const subClassColumns = `id, name, attribute_modifications, dimension_operations, created_at, updated_at`

func scanSubClass(row pgx.Row) (SubClass, error) {
	var s SubClass
	err := row.Scan(&s.ID, &s.Name, &s.AttributeModifications, &s.DimensionOperations, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) CreateSubClass(ctx context.Context, name string) (SubClass, error) {
	return scanSubClass(q.db.QueryRow(ctx,
		`INSERT INTO sub_classes (name) VALUES ($1) RETURNING `+subClassColumns, name))
}

func (q *Queries) ListSubClasses(ctx context.Context) ([]SubClass, error) {
	rows, err := q.db.Query(ctx, `SELECT `+subClassColumns+` FROM sub_classes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SubClass
	for rows.Next() {
		s, err := scanSubClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (q *Queries) FindSubClassByID(ctx context.Context, id pgtype.UUID) (SubClass, error) {
	return scanSubClass(q.db.QueryRow(ctx,
		`SELECT `+subClassColumns+` FROM sub_classes WHERE id = $1`, id))
}

func (q *Queries) UpdateAttributeModifications(ctx context.Context, id pgtype.UUID, doc []byte) (SubClass, error) {
	return scanSubClass(q.db.QueryRow(ctx,
		`UPDATE sub_classes SET attribute_modifications = $2::jsonb, updated_at = now()
		 WHERE id = $1 RETURNING `+subClassColumns,
		id, string(doc)))
}

func (q *Queries) UpdateDimensionOperations(ctx context.Context, id pgtype.UUID, doc []byte) (SubClass, error) {
	return scanSubClass(q.db.QueryRow(ctx,
		`UPDATE sub_classes SET dimension_operations = $2::jsonb, updated_at = now()
		 WHERE id = $1 RETURNING `+subClassColumns,
		id, string(doc)))
}
