package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/freitasmatheusrn/supplier-sync/internal/database"
	"github.com/freitasmatheusrn/supplier-sync/internal/database/postgres"
	"github.com/freitasmatheusrn/supplier-sync/pkg/parser"
	"github.com/freitasmatheusrn/supplier-sync/pkg/rest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

type Repository interface {
	CreateCatalogProduct(ctx context.Context, arg postgres.CreateCatalogProductParams) (postgres.CatalogProduct, error)
	FindCatalogProductByLink(ctx context.Context, link string) (postgres.CatalogProduct, error)
	FindCatalogProductByID(ctx context.Context, id pgtype.UUID) (postgres.CatalogProduct, error)
	UpdateCatalogCombinations(ctx context.Context, id pgtype.UUID, combinations []byte) (postgres.CatalogProduct, error)
	ListCatalogProducts(ctx context.Context) ([]postgres.CatalogProduct, error)
	ListCatalogProductsBySubClass(ctx context.Context, subClassID pgtype.UUID) ([]postgres.CatalogProduct, error)
}

type Service interface {
	// AddProduct creates the product or merges new combinations into the
	// product already stored under the same normalized link.
	AddProduct(ctx context.Context, input AddProductInput) (*AddProductOutput, *rest.ApiErr)
	GetProduct(ctx context.Context, id pgtype.UUID) (*Product, *rest.ApiErr)
	ListProducts(ctx context.Context, subClassID *pgtype.UUID) ([]Product, *rest.ApiErr)
}

type svc struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &svc{repo: repo, logger: logger}
}

func (s *svc) AddProduct(ctx context.Context, input AddProductInput) (*AddProductOutput, *rest.ApiErr) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, rest.NewBadRequestError("titulo do produto e obrigatorio")
	}
	link, err := ProcessLink(input.Link)
	if err != nil {
		return nil, rest.NewBadRequestError("link do produto invalido")
	}
	if len(input.Combinations) == 0 {
		return nil, rest.NewBadRequestError("produto precisa de ao menos uma combinacao")
	}
	// Repeated combinations in the input are collapsed by the merge below.
	if err := ValidateCombinations(input.Combinations); errors.Is(err, ErrMissingPrice) {
		return nil, rest.NewBadRequestError("toda combinacao precisa de um preco")
	}

	existing, err := s.repo.FindCatalogProductByLink(ctx, link)
	switch {
	case err == nil:
		return s.merge(ctx, existing, input.Combinations)
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, s.handleDBError(err)
	}

	combos, _ := MergeCombinations(nil, input.Combinations)
	doc, err := json.Marshal(combos)
	if err != nil {
		return nil, rest.NewUnprocessableEntity("erro ao processar dados")
	}

	var subClassID pgtype.UUID
	if input.SubClassID != "" {
		subClassID, err = parser.PgUUIDFromString(input.SubClassID)
		if err != nil {
			return nil, rest.NewBadRequestError("id da subclasse invalido")
		}
	}

	created, err := s.repo.CreateCatalogProduct(ctx, postgres.CreateCatalogProductParams{
		Title:        input.Title,
		Image:        input.Image,
		Link:         link,
		Combinations: doc,
		SubClassID:   subClassID,
	})
	if err != nil {
		return nil, s.handleDBError(err)
	}
	p, apiErr := s.toProduct(created)
	if apiErr != nil {
		return nil, apiErr
	}
	return &AddProductOutput{Product: *p, Created: true, Added: len(combos)}, nil
}

func (s *svc) merge(ctx context.Context, existing postgres.CatalogProduct, fresh []Combination) (*AddProductOutput, *rest.ApiErr) {
	p, apiErr := s.toProduct(existing)
	if apiErr != nil {
		return nil, apiErr
	}
	merged, added := MergeCombinations(p.Combinations, fresh)
	if added == 0 {
		return &AddProductOutput{Product: *p}, nil
	}

	doc, err := json.Marshal(merged)
	if err != nil {
		return nil, rest.NewUnprocessableEntity("erro ao processar dados")
	}
	updated, err := s.repo.UpdateCatalogCombinations(ctx, existing.ID, doc)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	p, apiErr = s.toProduct(updated)
	if apiErr != nil {
		return nil, apiErr
	}
	return &AddProductOutput{Product: *p, Added: added}, nil
}

func (s *svc) GetProduct(ctx context.Context, id pgtype.UUID) (*Product, *rest.ApiErr) {
	row, err := s.repo.FindCatalogProductByID(ctx, id)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	return s.toProduct(row)
}

func (s *svc) ListProducts(ctx context.Context, subClassID *pgtype.UUID) ([]Product, *rest.ApiErr) {
	var (
		rows []postgres.CatalogProduct
		err  error
	)
	if subClassID != nil {
		rows, err = s.repo.ListCatalogProductsBySubClass(ctx, *subClassID)
	} else {
		rows, err = s.repo.ListCatalogProducts(ctx)
	}
	if err != nil {
		return nil, s.handleDBError(err)
	}

	out := make([]Product, 0, len(rows))
	for _, r := range rows {
		p, apiErr := s.toProduct(r)
		if apiErr != nil {
			return nil, apiErr
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *svc) toProduct(row postgres.CatalogProduct) (*Product, *rest.ApiErr) {
	p := &Product{
		Title: row.Title,
		Image: row.Image.String,
		Link:  row.Link,
	}
	p.ID, _ = parser.PgUUIDToString(row.ID)
	if row.SubClassID.Valid {
		p.SubClassID, _ = parser.PgUUIDToString(row.SubClassID)
	}
	if len(row.Combinations) > 0 {
		if err := json.Unmarshal(row.Combinations, &p.Combinations); err != nil {
			s.logger.Error("invalid stored combinations",
				zap.String("link", row.Link),
				zap.Error(err),
			)
			return nil, rest.NewInternalServerError("erro ao ler combinacoes do produto")
		}
	}
	return p, nil
}

func (s *svc) handleDBError(err error) *rest.ApiErr {
	if errors.Is(err, pgx.ErrNoRows) {
		return rest.NewNotFoundError("produto nao encontrado")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return database.GetError(pgErr, pgErr.ConstraintName)
	}
	if database.IsUnavailable(err) {
		return rest.NewServiceUnavailableError("banco de dados indisponivel")
	}
	s.logger.Error("catalog query failed", zap.Error(err))
	return rest.NewInternalServerError("erro interno do servidor")
}
