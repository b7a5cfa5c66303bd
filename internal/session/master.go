package session

import (
	"context"
	"strings"

	"github.com/freitasmatheusrn/supplier-sync/internal/database/postgres"
	"github.com/freitasmatheusrn/supplier-sync/internal/reconcile"
	"github.com/freitasmatheusrn/supplier-sync/internal/synthesis"
)

const (
	searchLimit = 50
	// noAttr marks an english attribute slot that has no value.
	noAttr = "noAttr"
)

// MasterData is the read side of the inventory schema.
type MasterData interface {
	// FetchByParentName loads the parent, its suppliers and its existing
	// items. pgx.ErrNoRows is returned when the parent does not exist.
	FetchByParentName(ctx context.Context, name string) (synthesis.ParentMeta, []synthesis.SupplierMeta, []reconcile.MasterRow, error)
	SearchParents(ctx context.Context, term string) ([]ParentSummary, error)
	// UsedIdentifiers snapshots every EAN and item number already taken.
	UsedIdentifiers(ctx context.Context) (eans []string, itemIDs []int, err error)
}

type masterQueries interface {
	FindParentByNameEN(ctx context.Context, name string) (postgres.Parent, error)
	SearchParents(ctx context.Context, term string, limit int32) ([]postgres.Parent, error)
	ListParentSuppliers(ctx context.Context, parentID int32) ([]postgres.ParentSupplier, error)
	ListMasterItems(ctx context.Context, parentID int32) ([]postgres.MasterItem, error)
	ListUsedEANs(ctx context.Context) ([]string, error)
	ListUsedItemIDs(ctx context.Context) ([]int, error)
}

type PostgresMasterData struct {
	q masterQueries
}

func NewPostgresMasterData(q masterQueries) *PostgresMasterData {
	return &PostgresMasterData{q: q}
}

func (m *PostgresMasterData) FetchByParentName(ctx context.Context, name string) (synthesis.ParentMeta, []synthesis.SupplierMeta, []reconcile.MasterRow, error) {
	p, err := m.q.FindParentByNameEN(ctx, strings.TrimSpace(name))
	if err != nil {
		return synthesis.ParentMeta{}, nil, nil, err
	}
	parent := synthesis.ParentMeta{
		ID:         int(p.ID),
		ParentNoDE: p.ParentNoDE,
		NameEN:     p.ParentNameEN,
		NameDE:     p.ParentNameDE.String,
		NameCN:     p.ParentNameCN.String,
	}

	items, err := m.q.ListMasterItems(ctx, p.ID)
	if err != nil {
		return parent, nil, nil, err
	}
	rows := make([]reconcile.MasterRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, reconcile.MasterRow{
			ItemID:     int(it.ItemNoDE),
			EAN:        it.EAN,
			ValueDE:    it.ValueDE.String,
			ValueDE2:   it.ValueDE2.String,
			ValueDE3:   it.ValueDE3.String,
			ValueEN:    CleanValue(it.ValueEN.String),
			ValueEN2:   CleanValue(it.ValueEN2.String),
			ValueEN3:   CleanValue(it.ValueEN3.String),
			URL:        it.URL.String,
			PriceRMB:   it.PriceRMB.String,
			ParentNoDE: it.ParentNoDE.String,
			ItemName:   it.ItemName.String,
			SupplierID: int(it.SupplierID.Int32),
			SuppCat:    it.SuppCat.String,
			TariffCode: it.TariffCode.String,
			TaricID:    it.TaricID.String,
		})
	}

	stored, err := m.q.ListParentSuppliers(ctx, p.ID)
	if err != nil {
		return parent, nil, rows, err
	}
	suppliers := make([]synthesis.SupplierMeta, 0, len(stored))
	for _, s := range stored {
		suppliers = append(suppliers, synthesis.SupplierMeta{
			SupplierID: int(s.SupplierID),
			SuppCat:    s.SuppCat.String,
			TariffCode: s.TariffCode.String,
			TaricID:    s.TaricID.String,
		})
	}
	if len(suppliers) == 0 {
		suppliers = suppliersFromRows(rows)
	}
	return parent, suppliers, rows, nil
}

// suppliersFromRows derives supplier data from existing items when the
// parent has no explicit supplier list.
func suppliersFromRows(rows []reconcile.MasterRow) []synthesis.SupplierMeta {
	var out []synthesis.SupplierMeta
	seen := make(map[int]struct{})
	for _, r := range rows {
		if r.SupplierID == 0 {
			continue
		}
		if _, ok := seen[r.SupplierID]; ok {
			continue
		}
		seen[r.SupplierID] = struct{}{}
		out = append(out, synthesis.SupplierMeta{
			SupplierID: r.SupplierID,
			SuppCat:    r.SuppCat,
			TariffCode: r.TariffCode,
			TaricID:    r.TaricID,
		})
	}
	return out
}

func (m *PostgresMasterData) SearchParents(ctx context.Context, term string) ([]ParentSummary, error) {
	parents, err := m.q.SearchParents(ctx, strings.TrimSpace(term), searchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]ParentSummary, 0, len(parents))
	for _, p := range parents {
		out = append(out, ParentSummary{ID: int(p.ID), ParentNoDE: p.ParentNoDE, NameEN: p.ParentNameEN})
	}
	return out, nil
}

func (m *PostgresMasterData) UsedIdentifiers(ctx context.Context) ([]string, []int, error) {
	eans, err := m.q.ListUsedEANs(ctx)
	if err != nil {
		return nil, nil, err
	}
	ids, err := m.q.ListUsedItemIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	return eans, ids, nil
}

// CleanValue strips the diameter sign from an english attribute and marks
// empty values.
func CleanValue(v string) string {
	v = strings.TrimSpace(strings.ReplaceAll(v, "Ø", ""))
	if v == "" {
		return noAttr
	}
	return v
}
