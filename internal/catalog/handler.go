package catalog

import (
	"net/http"

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

// AddProduct handles POST /catalog/products
func (h *Handler) AddProduct(c echo.Context) error {
	var input AddProductInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar dados")
	}
	result, apiErr := h.service.AddProduct(c.Request().Context(), input)
	if apiErr != nil {
		return apiErr
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, result)
}

// GetProduct handles GET /catalog/products/:id
func (h *Handler) GetProduct(c echo.Context) error {
	id, err := parser.PgUUIDFromString(c.Param("id"))
	if err != nil {
		return rest.NewBadRequestError("id do produto invalido")
	}
	result, apiErr := h.service.GetProduct(c.Request().Context(), id)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// ListProducts handles GET /catalog/products?sub_class_id=
func (h *Handler) ListProducts(c echo.Context) error {
	var filter *pgtype.UUID
	if raw := c.QueryParam("sub_class_id"); raw != "" {
		id, err := parser.PgUUIDFromString(raw)
		if err != nil {
			return rest.NewBadRequestError("id da subclasse invalido")
		}
		filter = &id
	}
	result, apiErr := h.service.ListProducts(c.Request().Context(), filter)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}
