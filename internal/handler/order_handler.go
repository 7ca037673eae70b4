package handler

import (
	"net/http"

	"portal/internal/config"
	"portal/internal/middleware"
	"portal/internal/usecase"
	"portal/internal/validator"

	"github.com/labstack/echo/v4"
)

// /orders と /admin/orders（注文＝応募）
type OrderHandler struct {
	applications  *usecase.ApplicationUsecase
	confirmations *usecase.ConfirmationUsecase
}

func NewOrderHandler(applications *usecase.ApplicationUsecase, confirmations *usecase.ConfirmationUsecase) *OrderHandler {
	return &OrderHandler{applications: applications, confirmations: confirmations}
}

type OrderLineRequest struct {
	ArticleCode    string `json:"article_code"`
	Description    string `json:"description"`
	RequestedUnits Num    `json:"requested_units"`
	RequestedTerm  string `json:"requested_term"`
	RequestedPrice Num    `json:"requested_price"`
}

type OrderCreateRequest struct {
	OfferID     *string            `json:"offer_id"`
	SupplierID  string             `json:"supplier_id"`
	OrderNumber string             `json:"order_number"`
	Units       Num                `json:"units"`
	Term        string             `json:"term"`
	PriceEuros  Num                `json:"price_euros"`
	Lines       []OrderLineRequest `json:"lines"`
}

type ConfirmationRequest struct {
	ID             string `json:"id"`
	OrderLineID    string `json:"order_line_id"`
	ConfirmedUnits Num    `json:"confirmed_units"`
	ConfirmedTerm  string `json:"confirmed_term"`
	ConfirmedPrice Num    `json:"confirmed_price"`
}

type ConfirmationsSaveRequest struct {
	Confirmations []ConfirmationRequest `json:"confirmations"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin/orders")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())
	admin.POST("", h.create)

	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.GET("/:id", h.detail)
	g.PUT("/:id", h.updateTerms)
	g.POST("/:id/verify", h.verify)
	g.PUT("/:id/confirmations", h.saveConfirmations)
	g.POST("/:id/confirmations/confirm-all", h.confirmAll)
	g.GET("/:id/confirmations/confirm-all", h.previewConfirmAll)
	g.GET("/:id/allocation", h.allocation)
}

func (h *OrderHandler) create(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	lines := make([]validator.OrderRequestLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, validator.OrderRequestLine{
			ArticleCode:    l.ArticleCode,
			Description:    l.Description,
			RequestedUnits: l.RequestedUnits.String(),
			RequestedTerm:  l.RequestedTerm,
			RequestedPrice: l.RequestedPrice.String(),
		})
	}

	out, err := h.applications.CreateOrder(c.Request().Context(), actor, usecase.CreateOrderInput{
		OfferID:     req.OfferID,
		SupplierID:  req.SupplierID,
		OrderNumber: req.OrderNumber,
		Terms:       validator.TermsInput{Units: req.Units.String(), Term: req.Term, Price: req.PriceEuros.String()},
		Lines:       lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.applications.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateTerms(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req TermsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.applications.UpdateTerms(c.Request().Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) verify(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req TermsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.applications.Verify(c.Request().Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) saveConfirmations(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ConfirmationsSaveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	inputs := make([]validator.ConfirmationInput, 0, len(req.Confirmations))
	for _, r := range req.Confirmations {
		inputs = append(inputs, validator.ConfirmationInput{
			ID:          r.ID,
			OrderLineID: r.OrderLineID,
			Units:       r.ConfirmedUnits.String(),
			Term:        r.ConfirmedTerm,
			Price:       r.ConfirmedPrice.String(),
		})
	}

	out, err := h.confirmations.Save(c.Request().Context(), actor, c.Param("id"), inputs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) confirmAll(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.confirmations.ConfirmAll(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) previewConfirmAll(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.confirmations.PreviewConfirmAll(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]validator.ConfirmationInput{"confirmations": out})
}

func (h *OrderHandler) allocation(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.confirmations.Allocation(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]validator.ArticleAllocation{"allocation": out})
}
