package subclass

import (
	"net/http"

	"github.com/freitasmatheusrn/supplier-sync/internal/rules"
	"github.com/freitasmatheusrn/supplier-sync/internal/synthesis"
	"github.com/freitasmatheusrn/supplier-sync/pkg/parser"
	"github.com/freitasmatheusrn/supplier-sync/pkg/rest"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /sub-classes
func (h *Handler) Create(c echo.Context) error {
	var input CreateSubClassInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar dados")
	}
	result, apiErr := h.service.Create(c.Request().Context(), input)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusCreated, result)
}

// List handles GET /sub-classes
func (h *Handler) List(c echo.Context) error {
	result, apiErr := h.service.List(c.Request().Context())
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// Get handles GET /sub-classes/:id
func (h *Handler) Get(c echo.Context) error {
	id, apiErr := subClassID(c)
	if apiErr != nil {
		return apiErr
	}
	result, apiErr := h.service.Get(c.Request().Context(), id)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// GetAttributeModifications handles GET /sub-classes/:id/attribute-modifications
func (h *Handler) GetAttributeModifications(c echo.Context) error {
	id, apiErr := subClassID(c)
	if apiErr != nil {
		return apiErr
	}
	result, apiErr := h.service.AttributeModifications(c.Request().Context(), id)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// SaveAttributeModifications handles PUT /sub-classes/:id/attribute-modifications
func (h *Handler) SaveAttributeModifications(c echo.Context) error {
	id, apiErr := subClassID(c)
	if apiErr != nil {
		return apiErr
	}
	var set rules.RuleSet
	if err := c.Bind(&set); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar dados")
	}
	result, apiErr := h.service.SaveAttributeModifications(c.Request().Context(), id, set)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// GetDimensionOperations handles GET /sub-classes/:id/dimension-operations
func (h *Handler) GetDimensionOperations(c echo.Context) error {
	id, apiErr := subClassID(c)
	if apiErr != nil {
		return apiErr
	}
	result, apiErr := h.service.DimensionOperations(c.Request().Context(), id)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// SaveDimensionOperations handles PUT /sub-classes/:id/dimension-operations
func (h *Handler) SaveDimensionOperations(c echo.Context) error {
	id, apiErr := subClassID(c)
	if apiErr != nil {
		return apiErr
	}
	var ops synthesis.DimensionOperations
	if err := c.Bind(&ops); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar dados")
	}
	result, apiErr := h.service.SaveDimensionOperations(c.Request().Context(), id, ops)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

func subClassID(c echo.Context) (pgtype.UUID, *rest.ApiErr) {
	id, err := parser.PgUUIDFromString(c.Param("id"))
	if err != nil {
		return pgtype.UUID{}, rest.NewBadRequestError("id da subclasse invalido")
	}
	return id, nil
}
