package constants

import (
	"net/http"

	"github.com/freitasmatheusrn/supplier-sync/pkg/parser"
	"github.com/freitasmatheusrn/supplier-sync/pkg/rest"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /constants
func (h *Handler) Create(c echo.Context) error {
	var input ConstantInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar dados")
	}

	result, apiErr := h.service.Create(c.Request().Context(), input)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusCreated, result)
}

// List handles GET /constants
func (h *Handler) List(c echo.Context) error {
	result, apiErr := h.service.List(c.Request().Context())
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// Get handles GET /constants/:id
func (h *Handler) Get(c echo.Context) error {
	id, apiErr := constantID(c)
	if apiErr != nil {
		return apiErr
	}
	result, apiErr := h.service.Get(c.Request().Context(), id)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// Update handles PUT /constants/:id
func (h *Handler) Update(c echo.Context) error {
	id, apiErr := constantID(c)
	if apiErr != nil {
		return apiErr
	}
	var input ConstantInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar dados")
	}
	result, apiErr := h.service.Update(c.Request().Context(), id, input)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// Delete handles DELETE /constants/:id
func (h *Handler) Delete(c echo.Context) error {
	id, apiErr := constantID(c)
	if apiErr != nil {
		return apiErr
	}
	if apiErr := h.service.Delete(c.Request().Context(), id); apiErr != nil {
		return apiErr
	}
	return c.NoContent(http.StatusNoContent)
}

func constantID(c echo.Context) (int32, *rest.ApiErr) {
	id, err := parser.PositiveInt32(c.Param("id"))
	if err != nil {
		return 0, rest.NewBadRequestError("id da constante invalido")
	}
	return id, nil
}
