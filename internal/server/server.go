package server

import (
	"context"
	"errors"
	"net/http"

	"portal/internal/config"
	"portal/internal/handler"
	"portal/internal/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Server struct {
	echo *echo.Echo
	cfg  config.Config
	log  *zap.Logger
}

func New(cfg config.Config, log *zap.Logger, offerH *handler.OfferHandler, orderH *handler.OrderHandler, auditH *handler.AuditHandler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log.Named("http")))

	RegisterRoutes(e, cfg, offerH, orderH, auditH)
	return &Server{echo: e, cfg: cfg, log: log}
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start は Shutdown されるまで待つ。
func (s *Server) Start() error {
	s.log.Info("server starting", zap.String("addr", s.cfg.Addr()))
	if err := s.echo.Start(s.cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
