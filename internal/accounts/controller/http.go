package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	domain "github.com/formrelay/relay/internal/accounts/domain"
	"github.com/formrelay/relay/internal/platform/validation"
)

type Controller struct {
	svc domain.Service
	// Injected concerns
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
	g.POST("/mail-accounts", h.create)
	g.GET("/mail-accounts", h.list)
	g.GET("/mail-accounts/:id", h.get)
	g.PUT("/mail-accounts/:id", h.update)
	g.PATCH("/mail-accounts/:id/deactivate", h.deactivate)
	g.DELETE("/mail-accounts/:id", h.remove)
	g.POST("/mail-accounts/:id/test", h.test)
}

type accountReq struct {
	Name     string `json:"name" validate:"required"`
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"required,min=1,max=65535"`
	Secure   bool   `json:"secure"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
	Provider string `json:"provider"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// accountResp deliberately has no password field: ciphertext never leaves the
// store through this API.
type accountResp struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Secure    bool   `json:"secure"`
	Username  string `json:"username"`
	Provider  string `json:"provider"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func toResp(a domain.MailAccount) accountResp {
	return accountResp{
		ID:        a.ID.String(),
		Name:      a.Name,
		Host:      a.Host,
		Port:      a.Port,
		Secure:    a.Secure,
		Username:  a.Username,
		Provider:  a.Provider,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Create Mail Account godoc
// @Summary      Create mail account
// @Description  Creates a new outbound mail account; the password is encrypted at rest
// @Tags         mail-accounts
// @Accept       json
// @Produce      json
// @Param        body  body  accountReq  true  "account"
// @Success      201   {object}  accountResp
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/mail-accounts [post]
func (h *Controller) create(c echo.Context) error {
	var req accountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "password is required"})
	}
	a, err := h.svc.Create(c.Request().Context(), domain.CreateParams{
		Name:     req.Name,
		Host:     req.Host,
		Port:     req.Port,
		Secure:   req.Secure,
		Username: req.Username,
		Password: req.Password,
		Provider: req.Provider,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, toResp(a))
}

// List Mail Accounts godoc
// @Summary      List mail accounts
// @Tags         mail-accounts
// @Produce      json
// @Success      200  {array}  accountResp
// @Router       /api/v1/mail-accounts [get]
func (h *Controller) list(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list mail accounts"})
	}
	out := make([]accountResp, 0, len(items))
	for _, a := range items {
		out = append(out, toResp(a))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Controller) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	a, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, toResp(a))
}

func (h *Controller) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var req accountReq
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
	a, err := h.svc.Update(c.Request().Context(), id, domain.UpdateParams{
		Name:     req.Name,
		Host:     req.Host,
		Port:     req.Port,
		Secure:   req.Secure,
		Username: req.Username,
		Password: req.Password,
		Provider: req.Provider,
		IsActive: active,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toResp(a))
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

// Test Connection godoc
// @Summary      Test SMTP connection
// @Description  Opens an authenticated session against the account without sending
// @Tags         mail-accounts
// @Produce      json
// @Param        id   path   string  true  "Mail account ID (UUID)"
// @Success      200  {object}  map[string]any
// @Router       /api/v1/mail-accounts/{id}/test [post]
func (h *Controller) test(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	res := h.svc.TestConnection(c.Request().Context(), id)
	return c.JSON(http.StatusOK, map[string]any{"success": res.Success, "message": res.Message})
}
