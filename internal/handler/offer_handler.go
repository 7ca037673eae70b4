package handler

import (
	"net/http"
	"time"

	"portal/internal/config"
	"portal/internal/middleware"
	"portal/internal/usecase"
	"portal/internal/validator"

	"github.com/labstack/echo/v4"
)

type OfferHandler struct {
	offers       *usecase.OfferUsecase
	applications *usecase.ApplicationUsecase
}

func NewOfferHandler(offers *usecase.OfferUsecase, applications *usecase.ApplicationUsecase) *OfferHandler {
	return &OfferHandler{offers: offers, applications: applications}
}

type OfferLineRequest struct {
	MaterialCode        string     `json:"material_code"`
	MaterialDescription string     `json:"material_description"`
	RequestedUnits      Num        `json:"requested_units"`
	ReferencePrice      Num        `json:"reference_price"`
	Deadline            *time.Time `json:"deadline"`
}

type OfferCreateRequest struct {
	OfferNumber  string             `json:"offer_number"`
	Description  string             `json:"description"`
	MinimumUnits int64              `json:"minimum_units"`
	Deadline     *time.Time         `json:"deadline"`
	Lines        []OfferLineRequest `json:"lines"`
}

type OfferReviewRequest struct {
	Decision string `json:"decision"`
}

type OfferLineAnswer struct {
	LineID         string `json:"line_id"`
	ConfirmedUnits Num    `json:"confirmed_units"`
	ConfirmedPrice Num    `json:"confirmed_price"`
	ConfirmedTerm  string `json:"confirmed_term"`
}

type OfferAnswerRequest struct {
	Lines []OfferLineAnswer `json:"lines"`
}

type TermsRequest struct {
	Units      Num    `json:"units"`
	Term       string `json:"term"`
	PriceEuros Num    `json:"price_euros"`
}

func (r TermsRequest) toInput() validator.TermsInput {
	return validator.TermsInput{Units: r.Units.String(), Term: r.Term, Price: r.PriceEuros.String()}
}

func (h *OfferHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin/offers")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())
	admin.POST("", h.create)
	admin.PUT("/:id/review", h.review)

	g := e.Group("/offers")
	g.Use(middleware.AuthJWT(cfg))
	g.GET("/:id", h.detail)
	g.PUT("/:id/lines", h.saveDraft)
	g.POST("/:id/send", h.send)
	g.POST("/:id/applications", h.apply)
}

func (h *OfferHandler) create(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req OfferCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	lines := make([]validator.OfferRequestLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, validator.OfferRequestLine{
			MaterialCode:        l.MaterialCode,
			MaterialDescription: l.MaterialDescription,
			RequestedUnits:      l.RequestedUnits.String(),
			ReferencePrice:      l.ReferencePrice.String(),
			Deadline:            l.Deadline,
		})
	}

	out, err := h.offers.Create(c.Request().Context(), actor, usecase.CreateOfferInput{
		OfferNumber:  req.OfferNumber,
		Description:  req.Description,
		MinimumUnits: req.MinimumUnits,
		Deadline:     req.Deadline,
		Lines:        lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OfferHandler) review(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req OfferReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.offers.Review(c.Request().Context(), actor, c.Param("id"), req.Decision)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OfferHandler) detail(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.offers.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OfferHandler) saveDraft(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req OfferAnswerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.offers.SaveDraft(c.Request().Context(), actor, c.Param("id"), req.inputs())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OfferHandler) send(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req OfferAnswerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.offers.Send(c.Request().Context(), actor, c.Param("id"), req.inputs())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OfferHandler) apply(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req TermsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.applications.Apply(c.Request().Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (r OfferAnswerRequest) inputs() []validator.OfferLineInput {
	out := make([]validator.OfferLineInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		out = append(out, validator.OfferLineInput{
			LineID:         l.LineID,
			ConfirmedUnits: l.ConfirmedUnits.String(),
			ConfirmedPrice: l.ConfirmedPrice.String(),
			ConfirmedTerm:  l.ConfirmedTerm,
		})
	}
	return out
}
