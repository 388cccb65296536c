package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	domain "github.com/formrelay/relay/internal/pages/domain"
	"github.com/formrelay/relay/internal/platform/validation"
)

type Controller struct {
	svc    domain.Service
	authMW echo.MiddlewareFunc
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

// WithAuth injects the admin auth middleware for these endpoints.
func (h *Controller) WithAuth(mw echo.MiddlewareFunc) *Controller { h.authMW = mw; return h }

func (h *Controller) Register(e *echo.Echo) {
	g := e.Group("/api/v1")
	if h.authMW != nil {
		g.Use(h.authMW)
	}
	g.POST("/landing-pages", h.create)
	g.GET("/landing-pages", h.list)
	g.GET("/landing-pages/:id", h.get)
	g.PUT("/landing-pages/:id", h.update)
	g.PATCH("/landing-pages/:id/deactivate", h.deactivate)
	g.DELETE("/landing-pages/:id", h.remove)
	g.GET("/landing-pages/:id/config", h.getConfig)
	g.PUT("/landing-pages/:id/config", h.putConfig)
}

type pageReq struct {
	Name       string `json:"name" validate:"required"`
	Identifier string `json:"identifier" validate:"required,slug"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

type pageResp struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

func toPageResp(p domain.LandingPage) pageResp {
	return pageResp{
		ID:         p.ID.String(),
		Name:       p.Name,
		Identifier: p.Identifier,
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type configReq struct {
	MailAccountID   string `json:"mail_account_id" validate:"required,uuid"`
	FromEmail       string `json:"from_email" validate:"required,email"`
	FromName        string `json:"from_name" validate:"required"`
	ReplyToEmail    string `json:"reply_to_email" validate:"omitempty,email"`
	ToEmail         string `json:"to_email" validate:"required,email"`
	SubjectTemplate string `json:"subject_template"`
}

type configResp struct {
	ID              string `json:"id"`
	LandingPageID   string `json:"landing_page_id"`
	MailAccountID   string `json:"mail_account_id"`
	FromEmail       string `json:"from_email"`
	FromName        string `json:"from_name"`
	ReplyToEmail    string `json:"reply_to_email,omitempty"`
	ToEmail         string `json:"to_email"`
	SubjectTemplate string `json:"subject_template,omitempty"`
}

func toConfigResp(cfg domain.RoutingConfig) configResp {
	return configResp{
		ID:              cfg.ID.String(),
		LandingPageID:   cfg.LandingPageID.String(),
		MailAccountID:   cfg.MailAccountID.String(),
		FromEmail:       cfg.FromEmail,
		FromName:        cfg.FromName,
		ReplyToEmail:    cfg.ReplyToEmail,
		ToEmail:         cfg.ToEmail,
		SubjectTemplate: cfg.SubjectTemplate,
	}
}

// Create Landing Page godoc
// @Summary      Create landing page
// @Tags         landing-pages
// @Accept       json
// @Produce      json
// @Param        body  body  pageReq  true  "page"
// @Success      201   {object}  pageResp
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/landing-pages [post]
func (h *Controller) create(c echo.Context) error {
	var req pageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	p, err := h.svc.Create(c.Request().Context(), req.Name, req.Identifier)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, toPageResp(p))
}

func (h *Controller) list(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list landing pages"})
	}
	out := make([]pageResp, 0, len(items))
	for _, p := range items {
		out = append(out, toPageResp(p))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Controller) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	p, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, toPageResp(p))
}

func (h *Controller) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req pageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p, err := h.svc.Update(c.Request().Context(), id, req.Name, req.Identifier, active)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toPageResp(p))
}

func (h *Controller) deactivate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.svc.SetActive(c.Request().Context(), id, false); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Controller) remove(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// Get Routing Config godoc
// @Summary      Get routing config for a landing page
// @Tags         landing-pages
// @Produce      json
// @Param        id   path   string  true  "Landing page ID (UUID)"
// @Success      200  {object}  configResp
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/landing-pages/{id}/config [get]
func (h *Controller) getConfig(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	cfg, err := h.svc.GetConfig(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not configured"})
	}
	return c.JSON(http.StatusOK, toConfigResp(cfg))
}

// Put Routing Config godoc
// @Summary      Create or replace routing config for a landing page
// @Tags         landing-pages
// @Accept       json
// @Produce      json
// @Param        id    path  string     true  "Landing page ID (UUID)"
// @Param        body  body  configReq  true  "config"
// @Success      200   {object}  configResp
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/landing-pages/{id}/config [put]
func (h *Controller) putConfig(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req configReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	accountID, err := uuid.Parse(req.MailAccountID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid mail_account_id"})
	}
	cfg, err := h.svc.PutConfig(c.Request().Context(), id, domain.ConfigParams{
		MailAccountID:   accountID,
		FromEmail:       req.FromEmail,
		FromName:        req.FromName,
		ReplyToEmail:    req.ReplyToEmail,
		ToEmail:         req.ToEmail,
		SubjectTemplate: req.SubjectTemplate,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toConfigResp(cfg))
}
