package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type Constant struct {
	ID        int32
	Name      string
	Value     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

const constantColumns = `id, name, value, created_at, updated_at`

func scanConstant(row pgx.Row) (Constant, error) {
	var c Constant
	var value pgtype.Numeric
	if err := row.Scan(&c.ID, &c.Name, &value, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Constant{}, err
	}
	c.Value = numericToDecimal(value)
	return c, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func (q *Queries) ListConstants(ctx context.Context) ([]Constant, error) {
	rows, err := q.db.Query(ctx, `SELECT `+constantColumns+` FROM constants ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Constant
	for rows.Next() {
		c, err := scanConstant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) FindConstantByID(ctx context.Context, id int32) (Constant, error) {
	return scanConstant(q.db.QueryRow(ctx,
		`SELECT `+constantColumns+` FROM constants WHERE id = $1`, id))
}

func (q *Queries) CreateConstant(ctx context.Context, name string, value decimal.Decimal) (Constant, error) {
	return scanConstant(q.db.QueryRow(ctx,
		`INSERT INTO constants (name, value) VALUES ($1, $2::numeric) RETURNING `+constantColumns,
		name, value.String()))
}

func (q *Queries) UpdateConstant(ctx context.Context, id int32, name string, value decimal.Decimal) (Constant, error) {
	return scanConstant(q.db.QueryRow(ctx,
		`UPDATE constants SET name = $2, value = $3::numeric, updated_at = now()
		 WHERE id = $1 RETURNING `+constantColumns,
		id, name, value.String()))
}

// DeleteConstant returns the number of rows removed.
func (q *Queries) DeleteConstant(ctx context.Context, id int32) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM constants WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
