package session

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/freitasmatheusrn/supplier-sync/internal/rules"
	"github.com/freitasmatheusrn/supplier-sync/internal/submission"
	"github.com/freitasmatheusrn/supplier-sync/internal/synthesis"
	"github.com/freitasmatheusrn/supplier-sync/pkg/parser"
	"github.com/freitasmatheusrn/supplier-sync/pkg/rest"
	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Upload handles POST /sessions/upload
func (h *Handler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return rest.NewBadRequestError("arquivo nao fornecido")
	}
	src, err := file.Open()
	if err != nil {
		return rest.NewInternalServerError("erro ao abrir arquivo")
	}
	defer src.Close()

	result, apiErr := h.service.Upload(c.Request().Context(), file.Filename, src, c.FormValue("sub_class_id"))
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusCreated, result)
}

// FromProduct handles POST /sessions/from-product/:id
func (h *Handler) FromProduct(c echo.Context) error {
	id, err := parser.PgUUIDFromString(c.Param("id"))
	if err != nil {
		return rest.NewBadRequestError("id do produto invalido")
	}
	result, apiErr := h.service.FromProduct(c.Request().Context(), id)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusCreated, result)
}

// FromSubClass handles POST /sessions/from-sub-class/:id
func (h *Handler) FromSubClass(c echo.Context) error {
	id, err := parser.PgUUIDFromString(c.Param("id"))
	if err != nil {
		return rest.NewBadRequestError("id da subclasse invalido")
	}
	result, apiErr := h.service.FromSubClass(c.Request().Context(), id)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusCreated, result)
}

// Get handles GET /sessions/:id
func (h *Handler) Get(c echo.Context) error {
	result, apiErr := h.service.Get(c.Request().Context(), c.Param("id"))
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// SetRules handles PUT /sessions/:id/rules
func (h *Handler) SetRules(c echo.Context) error {
	var set rules.RuleSet
	if err := c.Bind(&set); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar dados")
	}
	result, apiErr := h.service.SetRules(c.Request().Context(), c.Param("id"), set)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// MoveColumn handles POST /sessions/:id/move-column
func (h *Handler) MoveColumn(c echo.Context) error {
	var input MoveColumnInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar dados")
	}
	result, apiErr := h.service.MoveColumn(c.Request().Context(), c.Param("id"), input)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// Compare handles POST /sessions/:id/compare
func (h *Handler) Compare(c echo.Context) error {
	var input CompareInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar dados")
	}
	result, apiErr := h.service.Compare(c.Request().Context(), c.Param("id"), input)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// Synthesize handles POST /sessions/:id/synthesize
func (h *Handler) Synthesize(c echo.Context) error {
	result, apiErr := h.service.Synthesize(c.Request().Context(), c.Param("id"))
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// ApplyDimensionOperations handles POST /sessions/:id/dimension-operations
func (h *Handler) ApplyDimensionOperations(c echo.Context) error {
	var ops synthesis.DimensionOperations
	if err := c.Bind(&ops); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar dados")
	}
	result, apiErr := h.service.ApplyDimensionOperations(c.Request().Context(), c.Param("id"), ops)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}

// Submit handles POST /sessions/:id/submit
func (h *Handler) Submit(c echo.Context) error {
	result, apiErr := h.service.Submit(c.Request().Context(), c.Param("id"), nil)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(StatusFor(result), result)
}

// UpdateCommon handles PUT /sessions/:id/common/update
func (h *Handler) UpdateCommon(c echo.Context) error {
	var input UpdateCommonInput
	if err := c.Bind(&input); err != nil {
		return rest.NewUnprocessableEntity("erro ao processar dados")
	}
	result, apiErr := h.service.UpdateCommon(c.Request().Context(), c.Param("id"), input)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(StatusFor(result), result)
}

// StatusFor maps a submission outcome to the response status: 200 when every
// item was stored, 207 when some failed and 502 or 503 when the submission
// was aborted.
func StatusFor(out *SubmitOutput) int {
	switch out.Outcome {
	case submission.OutcomeSuccess:
		return http.StatusOK
	case submission.OutcomePartial:
		return http.StatusMultiStatus
	}
	if out.Unavailable {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

// SubmitStream handles POST /sessions/:id/submit-stream
// Submits records with per chunk progress via Server-Sent Events
func (h *Handler) SubmitStream(c echo.Context) error {
	id := c.Param("id")

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	eventChan := make(chan ProgressEvent, 10)
	done := make(chan struct{})

	onProgress := func(event ProgressEvent) {
		select {
		case eventChan <- event:
		case <-done:
		}
	}

	go func() {
		defer close(eventChan)
		if _, apiErr := h.service.Submit(c.Request().Context(), id, onProgress); apiErr != nil {
			onProgress(ProgressEvent{Type: ProgressEventError, Message: apiErr.Message})
		}
	}()

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return rest.NewInternalServerError("streaming nao suportado")
	}

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return nil
			}

			data, err := json.Marshal(event)
			if err != nil {
				continue
			}

			fmt.Fprintf(c.Response(), "event: %s\n", event.Type)
			fmt.Fprintf(c.Response(), "data: %s\n\n", data)
			flusher.Flush()

			if event.Type == ProgressEventComplete || event.Type == ProgressEventError {
				close(done)
				return nil
			}

		case <-c.Request().Context().Done():
			close(done)
			return nil
		}
	}
}

// Export handles GET /sessions/:id/export
func (h *Handler) Export(c echo.Context) error {
	buf, apiErr := h.service.Export(c.Request().Context(), c.Param("id"))
	if apiErr != nil {
		return apiErr
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="registros-%s.xlsx"`, c.Param("id")))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Delete handles DELETE /sessions/:id
func (h *Handler) Delete(c echo.Context) error {
	if apiErr := h.service.Delete(c.Request().Context(), c.Param("id")); apiErr != nil {
		return apiErr
	}
	return c.NoContent(http.StatusNoContent)
}

// SearchParents handles GET /master/search?en_name=
func (h *Handler) SearchParents(c echo.Context) error {
	result, apiErr := h.service.SearchParents(c.Request().Context(), c.QueryParam("en_name"))
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, result)
}
