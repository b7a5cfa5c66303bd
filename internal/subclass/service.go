// Package subclass stores the column rules and dimension formulas saved for a
// product sub-class so they can be reused across uploads.
package subclass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/freitasmatheusrn/supplier-sync/internal/database"
	"github.com/freitasmatheusrn/supplier-sync/internal/database/postgres"
	"github.com/freitasmatheusrn/supplier-sync/internal/normalizer"
	"github.com/freitasmatheusrn/supplier-sync/internal/rules"
	"github.com/freitasmatheusrn/supplier-sync/internal/synthesis"
	"github.com/freitasmatheusrn/supplier-sync/pkg/parser"
	"github.com/freitasmatheusrn/supplier-sync/pkg/rest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

type Repository interface {
	CreateSubClass(ctx context.Context, name string) (postgres.SubClass, error)
	ListSubClasses(ctx context.Context) ([]postgres.SubClass, error)
	FindSubClassByID(ctx context.Context, id pgtype.UUID) (postgres.SubClass, error)
	UpdateAttributeModifications(ctx context.Context, id pgtype.UUID, doc []byte) (postgres.SubClass, error)
	UpdateDimensionOperations(ctx context.Context, id pgtype.UUID, doc []byte) (postgres.SubClass, error)
}

type Service interface {
	Create(ctx context.Context, input CreateSubClassInput) (*SubClassOutput, *rest.ApiErr)
	List(ctx context.Context) ([]SubClassOutput, *rest.ApiErr)
	Get(ctx context.Context, id pgtype.UUID) (*SubClassOutput, *rest.ApiErr)
	AttributeModifications(ctx context.Context, id pgtype.UUID) (rules.RuleSet, *rest.ApiErr)
	SaveAttributeModifications(ctx context.Context, id pgtype.UUID, set rules.RuleSet) (rules.RuleSet, *rest.ApiErr)
	DimensionOperations(ctx context.Context, id pgtype.UUID) (synthesis.DimensionOperations, *rest.ApiErr)
	SaveDimensionOperations(ctx context.Context, id pgtype.UUID, ops synthesis.DimensionOperations) (synthesis.DimensionOperations, *rest.ApiErr)
}

type svc struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &svc{repo: repo, logger: logger}
}

func (s *svc) Create(ctx context.Context, input CreateSubClassInput) (*SubClassOutput, *rest.ApiErr) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, rest.NewBadRequestError("nome da subclasse e obrigatorio")
	}
	sc, err := s.repo.CreateSubClass(ctx, name)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	return s.toOutput(sc), nil
}

func (s *svc) List(ctx context.Context) ([]SubClassOutput, *rest.ApiErr) {
	list, err := s.repo.ListSubClasses(ctx)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	out := make([]SubClassOutput, 0, len(list))
	for _, sc := range list {
		out = append(out, *s.toOutput(sc))
	}
	return out, nil
}

func (s *svc) Get(ctx context.Context, id pgtype.UUID) (*SubClassOutput, *rest.ApiErr) {
	sc, err := s.repo.FindSubClassByID(ctx, id)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	return s.toOutput(sc), nil
}

func (s *svc) AttributeModifications(ctx context.Context, id pgtype.UUID) (rules.RuleSet, *rest.ApiErr) {
	sc, err := s.repo.FindSubClassByID(ctx, id)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	return s.decodeRules(sc), nil
}

func (s *svc) SaveAttributeModifications(ctx context.Context, id pgtype.UUID, set rules.RuleSet) (rules.RuleSet, *rest.ApiErr) {
	for column := range set {
		if !normalizer.IsAllowed(column) {
			return nil, rest.NewBadRequestError(fmt.Sprintf("coluna %s nao permitida", column))
		}
	}
	doc, err := json.Marshal(set)
	if err != nil {
		return nil, rest.NewUnprocessableEntity("erro ao processar dados")
	}
	sc, err := s.repo.UpdateAttributeModifications(ctx, id, doc)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	return s.decodeRules(sc), nil
}

func (s *svc) DimensionOperations(ctx context.Context, id pgtype.UUID) (synthesis.DimensionOperations, *rest.ApiErr) {
	sc, err := s.repo.FindSubClassByID(ctx, id)
	if err != nil {
		return synthesis.DimensionOperations{}, s.handleDBError(err)
	}
	return s.decodeOperations(sc), nil
}

func (s *svc) SaveDimensionOperations(ctx context.Context, id pgtype.UUID, ops synthesis.DimensionOperations) (synthesis.DimensionOperations, *rest.ApiErr) {
	doc, err := json.Marshal(ops)
	if err != nil {
		return synthesis.DimensionOperations{}, rest.NewUnprocessableEntity("erro ao processar dados")
	}
	sc, err := s.repo.UpdateDimensionOperations(ctx, id, doc)
	if err != nil {
		return synthesis.DimensionOperations{}, s.handleDBError(err)
	}
	return s.decodeOperations(sc), nil
}

// decodeRules falls back to an empty set when the stored document is
// unreadable so a bad row never blocks an upload.
func (s *svc) decodeRules(sc postgres.SubClass) rules.RuleSet {
	set := rules.RuleSet{}
	if len(sc.AttributeModifications) == 0 {
		return set
	}
	if err := json.Unmarshal(sc.AttributeModifications, &set); err != nil {
		s.logger.Warn("invalid attribute modifications",
			zap.String("sub_class", sc.Name),
			zap.Error(err),
		)
		return rules.RuleSet{}
	}
	return set
}

func (s *svc) decodeOperations(sc postgres.SubClass) synthesis.DimensionOperations {
	var ops synthesis.DimensionOperations
	if len(sc.DimensionOperations) == 0 {
		return ops
	}
	if err := json.Unmarshal(sc.DimensionOperations, &ops); err != nil {
		s.logger.Warn("invalid dimension operations",
			zap.String("sub_class", sc.Name),
			zap.Error(err),
		)
		return synthesis.DimensionOperations{}
	}
	return ops
}

func (s *svc) toOutput(sc postgres.SubClass) *SubClassOutput {
	id, _ := parser.PgUUIDToString(sc.ID)
	return &SubClassOutput{
		ID:                     id,
		Name:                   sc.Name,
		AttributeModifications: s.decodeRules(sc),
		DimensionOperations:    s.decodeOperations(sc),
		UpdatedAt:              sc.UpdatedAt,
	}
}

func (s *svc) handleDBError(err error) *rest.ApiErr {
	if errors.Is(err, pgx.ErrNoRows) {
		return rest.NewNotFoundError("subclasse nao encontrada")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return database.GetError(pgErr, pgErr.ConstraintName)
	}
	if database.IsUnavailable(err) {
		return rest.NewServiceUnavailableError("banco de dados indisponivel")
	}
	s.logger.Error("sub-class query failed", zap.Error(err))
	return rest.NewInternalServerError("erro interno do servidor")
}
