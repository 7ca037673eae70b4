package server

import (
	"net/http"

	"portal/internal/config"
	"portal/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, offerH *handler.OfferHandler, orderH *handler.OrderHandler, auditH *handler.AuditHandler) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.SuccessResponse{Message: "ok"})
	})

	offerH.RegisterRoutes(e, cfg)
	orderH.RegisterRoutes(e, cfg)
	auditH.RegisterRoutes(e, cfg)
}
