package session

import (
	"context"

	"github.com/freitasmatheusrn/supplier-sync/internal/database"
	"github.com/freitasmatheusrn/supplier-sync/internal/database/postgres"
	"github.com/freitasmatheusrn/supplier-sync/internal/reconcile"
	"github.com/freitasmatheusrn/supplier-sync/internal/synthesis"
	"github.com/freitasmatheusrn/supplier-sync/pkg/batch"
)

// Gateway is the write side of the inventory schema.
type Gateway interface {
	// InsertRecords stores records atomically and returns how many were
	// written.
	InsertRecords(ctx context.Context, records []synthesis.Record) (int, error)
	// UpdateSupplierFields writes every update independently. itemErrs has
	// one entry per update even when err is set; err reports that at least
	// one update could not reach the database.
	UpdateSupplierFields(ctx context.Context, updates []reconcile.SupplierUpdate) (itemErrs []error, err error)
}

type gatewayStore interface {
	InsertItemsTx(ctx context.Context, items []postgres.InsertItemParams) error
	UpdateSupplierItem(ctx context.Context, p postgres.UpdateSupplierItemParams) error
}

type PostgresGateway struct {
	store       gatewayStore
	concurrency int
}

func NewPostgresGateway(store gatewayStore, concurrency int) *PostgresGateway {
	return &PostgresGateway{store: store, concurrency: concurrency}
}

func (g *PostgresGateway) InsertRecords(ctx context.Context, records []synthesis.Record) (int, error) {
	params := make([]postgres.InsertItemParams, len(records))
	for i, r := range records {
		params[i] = insertParams(r)
	}
	if err := g.store.InsertItemsTx(ctx, params); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (g *PostgresGateway) UpdateSupplierFields(ctx context.Context, updates []reconcile.SupplierUpdate) ([]error, error) {
	errs := batch.Settle(ctx, updates, g.concurrency, func(ctx context.Context, u reconcile.SupplierUpdate) error {
		return g.store.UpdateSupplierItem(ctx, postgres.UpdateSupplierItemParams{
			ItemNoDE: int32(u.ItemID),
			URL:      u.URL,
			PriceRMB: u.Price,
		})
	})
	for _, err := range errs {
		if database.IsUnavailable(err) {
			return errs, err
		}
	}
	return errs, nil
}

func insertParams(r synthesis.Record) postgres.InsertItemParams {
	return postgres.InsertItemParams{
		ParentID:   int32(r.TItem.ParentID),
		ItemIDDE:   r.TItem.ItemIDDE,
		ParentNoDE: r.TItem.ParentNoDE,
		SuppCat:    r.TItem.SuppCat,
		EAN:        r.TItem.EAN,
		TariffCode: r.TItem.TariffCode,
		TaricID:    r.TItem.TaricID,
		Weight:     r.TItem.Weight,
		Width:      r.TItem.Width,
		Height:     r.TItem.Height,
		Length:     r.TItem.Length,
		ItemNameCN: r.TItem.ItemNameCN,
		ItemNameDE: r.TItem.ItemNameDE,
		ItemName:   r.TItem.ItemName,
		RMBPrice:   r.TItem.RMBPrice,

		SupplierID: int32(r.SupplierItem.SupplierID),
		URL:        r.SupplierItem.URL,
		PriceRMB:   r.SupplierItem.PriceRMB,

		ItemNoDE: int32(r.VariationValues.ItemNoDE),
		ValueDE:  r.VariationValues.ValueDE,
		ValueDE2: r.VariationValues.ValueDE2,
		ValueDE3: r.VariationValues.ValueDE3,
		ValueEN:  r.VariationValues.ValueEN,
		ValueEN2: r.VariationValues.ValueEN2,
		ValueEN3: r.VariationValues.ValueEN3,
	}
}

// insertChunk adapts InsertRecords to the submission contract. A chunk is
// written in one transaction, so a rejected statement fails every item of
// the chunk while an unreachable database aborts the whole submission.
func insertChunk(g Gateway) func(ctx context.Context, chunk []synthesis.Record) ([]error, error) {
	return func(ctx context.Context, chunk []synthesis.Record) ([]error, error) {
		_, err := g.InsertRecords(ctx, chunk)
		if err == nil {
			return nil, nil
		}
		if database.IsUnavailable(err) {
			return nil, err
		}
		errs := make([]error, len(chunk))
		for i := range errs {
			errs[i] = err
		}
		return errs, nil
	}
}

// updateChunk adapts UpdateSupplierFields to the submission contract. Updates
// are independent, so the settled items of a chunk are reported even when
// one of them hit an unreachable database and the submission stops.
func updateChunk(g Gateway) func(ctx context.Context, chunk []reconcile.SupplierUpdate) ([]error, error) {
	return func(ctx context.Context, chunk []reconcile.SupplierUpdate) ([]error, error) {
		errs, err := g.UpdateSupplierFields(ctx, chunk)
		if err != nil && len(errs) != len(chunk) {
			return nil, err
		}
		return errs, err
	}
}
