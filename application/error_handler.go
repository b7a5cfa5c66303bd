package application

import (
	"errors"
	"net/http"

	"github.com/freitasmatheusrn/supplier-sync/pkg/rest"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (app *Application) CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *rest.ApiErr
	var he *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
		app.Logger.Debug("api error",
			zap.Int("code", apiErr.Code),
			zap.String("message", apiErr.Message),
			zap.Any("causes", apiErr.Causes),
		)
	case errors.As(err, &he):
		message, ok := he.Message.(string)
		if !ok {
			message = http.StatusText(he.Code)
		}
		apiErr = &rest.ApiErr{
			Message: message,
			Err:     http.StatusText(he.Code),
			Code:    he.Code,
		}
	default:
		app.Logger.Error("unhandled error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		apiErr = rest.NewInternalServerError("Erro interno do servidor")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(apiErr.Code)
		return
	}
	_ = c.JSON(apiErr.Code, apiErr)
}
