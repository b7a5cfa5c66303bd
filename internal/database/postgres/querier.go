package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type Querier interface {
	ListConstants(ctx context.Context) ([]Constant, error)
	FindConstantByID(ctx context.Context, id int32) (Constant, error)
	CreateConstant(ctx context.Context, name string, value decimal.Decimal) (Constant, error)
	UpdateConstant(ctx context.Context, id int32, name string, value decimal.Decimal) (Constant, error)
	DeleteConstant(ctx context.Context, id int32) (int64, error)

	CreateSubClass(ctx context.Context, name string) (SubClass, error)
	ListSubClasses(ctx context.Context) ([]SubClass, error)
	FindSubClassByID(ctx context.Context, id pgtype.UUID) (SubClass, error)
	UpdateAttributeModifications(ctx context.Context, id pgtype.UUID, doc []byte) (SubClass, error)
	UpdateDimensionOperations(ctx context.Context, id pgtype.UUID, doc []byte) (SubClass, error)

	FindParentByNameEN(ctx context.Context, name string) (Parent, error)
	SearchParents(ctx context.Context, term string, limit int32) ([]Parent, error)
	ListParentSuppliers(ctx context.Context, parentID int32) ([]ParentSupplier, error)
	ListMasterItems(ctx context.Context, parentID int32) ([]MasterItem, error)
	ListUsedEANs(ctx context.Context) ([]string, error)
	ListUsedItemIDs(ctx context.Context) ([]int, error)

	InsertItem(ctx context.Context, p InsertItemParams) error
	InsertItems(ctx context.Context, items []InsertItemParams) error
	UpdateSupplierItem(ctx context.Context, p UpdateSupplierItemParams) error

	CreateCatalogProduct(ctx context.Context, arg CreateCatalogProductParams) (CatalogProduct, error)
	FindCatalogProductByLink(ctx context.Context, link string) (CatalogProduct, error)
	FindCatalogProductByID(ctx context.Context, id pgtype.UUID) (CatalogProduct, error)
	UpdateCatalogCombinations(ctx context.Context, id pgtype.UUID, combinations []byte) (CatalogProduct, error)
	ListCatalogProducts(ctx context.Context) ([]CatalogProduct, error)
	ListCatalogProductsBySubClass(ctx context.Context, subClassID pgtype.UUID) ([]CatalogProduct, error)
}

var _ Querier = (*Queries)(nil)
