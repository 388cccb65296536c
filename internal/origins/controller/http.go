package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	domain "github.com/formrelay/relay/internal/origins/domain"
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
	g.POST("/origins", h.create)
	g.GET("/origins", h.list)
	g.PUT("/origins/:id", h.update)
	g.DELETE("/origins/:id", h.remove)
}

type originReq struct {
	Origin      string `json:"origin" validate:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type originResp struct {
	ID          string `json:"id"`
	Origin      string `json:"origin"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func toResp(o domain.AllowedOrigin) originResp {
	return originResp{
		ID:          o.ID.String(),
		Origin:      o.Origin,
		Description: o.Description,
		IsActive:    o.IsActive,
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Controller) create(c echo.Context) error {
	var req originReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	o, err := h.svc.Create(c.Request().Context(), req.Origin, req.Description)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, toResp(o))
}

func (h *Controller) list(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list origins"})
	}
	out := make([]originResp, 0, len(items))
	for _, o := range items {
		out = append(out, toResp(o))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Controller) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req originReq
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
	o, err := h.svc.Update(c.Request().Context(), id, req.Origin, req.Description, active)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toResp(o))
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
