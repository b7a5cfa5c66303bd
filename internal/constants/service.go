package constants

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/freitasmatheusrn/supplier-sync/internal/database"
	"github.com/freitasmatheusrn/supplier-sync/internal/database/postgres"
	redisdb "github.com/freitasmatheusrn/supplier-sync/internal/database/redis"
	"github.com/freitasmatheusrn/supplier-sync/pkg/rest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MaxNameLength = 255
	cacheKey      = "constants:values"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Repository interface {
	ListConstants(ctx context.Context) ([]postgres.Constant, error)
	FindConstantByID(ctx context.Context, id int32) (postgres.Constant, error)
	CreateConstant(ctx context.Context, name string, value decimal.Decimal) (postgres.Constant, error)
	UpdateConstant(ctx context.Context, id int32, name string, value decimal.Decimal) (postgres.Constant, error)
	DeleteConstant(ctx context.Context, id int32) (int64, error)
}

// Cache holds the name to value map used by formulas.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Service interface {
	Create(ctx context.Context, input ConstantInput) (*ConstantOutput, *rest.ApiErr)
	List(ctx context.Context) ([]ConstantOutput, *rest.ApiErr)
	Get(ctx context.Context, id int32) (*ConstantOutput, *rest.ApiErr)
	Update(ctx context.Context, id int32, input ConstantInput) (*ConstantOutput, *rest.ApiErr)
	Delete(ctx context.Context, id int32) *rest.ApiErr
	// Values returns every constant keyed by name.
	Values(ctx context.Context) (map[string]decimal.Decimal, *rest.ApiErr)
	// Refresh reloads the cached values from the database.
	Refresh(ctx context.Context) (int, error)
}

type svc struct {
	repo   Repository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewService builds the service. cache may be nil, in which case Values
// always reads from the database.
func NewService(repo Repository, cache Cache, ttl time.Duration, logger *zap.Logger) Service {
	return &svc{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// ValidateName checks that name can be referenced from a formula.
func ValidateName(name string) *rest.ApiErr {
	switch {
	case name == "":
		return rest.NewBadRequestError("nome da constante e obrigatorio")
	case len(name) > MaxNameLength:
		return rest.NewBadRequestError("nome da constante deve ter no maximo 255 caracteres")
	case strings.ContainsAny(name, " \t\r\n"):
		return rest.NewBadRequestError("nome da constante nao pode conter espacos")
	case !namePattern.MatchString(name):
		return rest.NewBadRequestError("nome da constante deve conter apenas letras, numeros e _")
	}
	return nil
}

func (s *svc) Create(ctx context.Context, input ConstantInput) (*ConstantOutput, *rest.ApiErr) {
	if apiErr := ValidateName(input.Name); apiErr != nil {
		return nil, apiErr
	}
	c, err := s.repo.CreateConstant(ctx, input.Name, input.Value)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	s.invalidate(ctx)
	return toOutput(c), nil
}

func (s *svc) List(ctx context.Context) ([]ConstantOutput, *rest.ApiErr) {
	list, err := s.repo.ListConstants(ctx)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	result := make([]ConstantOutput, 0, len(list))
	for _, c := range list {
		result = append(result, *toOutput(c))
	}
	return result, nil
}

func (s *svc) Get(ctx context.Context, id int32) (*ConstantOutput, *rest.ApiErr) {
	c, err := s.repo.FindConstantByID(ctx, id)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	return toOutput(c), nil
}

func (s *svc) Update(ctx context.Context, id int32, input ConstantInput) (*ConstantOutput, *rest.ApiErr) {
	if apiErr := ValidateName(input.Name); apiErr != nil {
		return nil, apiErr
	}
	c, err := s.repo.UpdateConstant(ctx, id, input.Name, input.Value)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	s.invalidate(ctx)
	return toOutput(c), nil
}

func (s *svc) Delete(ctx context.Context, id int32) *rest.ApiErr {
	n, err := s.repo.DeleteConstant(ctx, id)
	if err != nil {
		return s.handleDBError(err)
	}
	if n == 0 {
		return rest.NewNotFoundError("constante nao encontrada")
	}
	s.invalidate(ctx)
	return nil
}

func (s *svc) Values(ctx context.Context) (map[string]decimal.Decimal, *rest.ApiErr) {
	if s.cache != nil {
		var cached map[string]decimal.Decimal
		err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redisdb.ErrMiss) {
			s.logger.Warn("constants cache read failed", zap.Error(err))
		}
	}

	values, err := s.load(ctx)
	if err != nil {
		return nil, s.handleDBError(err)
	}
	return values, nil
}

func (s *svc) Refresh(ctx context.Context) (int, error) {
	values, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(values), nil
}

func (s *svc) load(ctx context.Context) (map[string]decimal.Decimal, error) {
	list, err := s.repo.ListConstants(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]decimal.Decimal, len(list))
	for _, c := range list {
		values[c.Name] = c.Value
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, values, s.ttl); err != nil {
			s.logger.Warn("constants cache write failed", zap.Error(err))
		}
	}
	return values, nil
}

func (s *svc) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		s.logger.Warn("constants cache invalidation failed", zap.Error(err))
	}
}

func (s *svc) handleDBError(err error) *rest.ApiErr {
	if errors.Is(err, pgx.ErrNoRows) {
		return rest.NewNotFoundError("constante nao encontrada")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return database.GetError(pgErr, pgErr.ConstraintName)
	}
	if database.IsUnavailable(err) {
		return rest.NewServiceUnavailableError("banco de dados indisponivel")
	}
	s.logger.Error("constants query failed", zap.Error(err))
	return rest.NewInternalServerError("erro interno do servidor")
}

func toOutput(c postgres.Constant) *ConstantOutput {
	return &ConstantOutput{
		ID:        c.ID,
		Name:      c.Name,
		Value:     c.Value,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
