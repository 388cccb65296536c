package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	domain "github.com/formrelay/relay/internal/dispatch/domain"
	"github.com/formrelay/relay/internal/platform/validation"
)

type Controller struct {
	svc      domain.Service
	authMW   echo.MiddlewareFunc
	publicMW []echo.MiddlewareFunc
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

// WithAuth injects the admin auth middleware for the record listing.
func (h *Controller) WithAuth(mw echo.MiddlewareFunc) *Controller { h.authMW = mw; return h }

// WithPublicMiddleware attaches middleware (CORS, rate limit) to the public
// submission route only.
func (h *Controller) WithPublicMiddleware(mw ...echo.MiddlewareFunc) *Controller {
	h.publicMW = append(h.publicMW, mw...)
	return h
}

func (h *Controller) Register(e *echo.Echo) {
	e.POST("/api/send-inquiry", h.sendInquiry, h.publicMW...)

	g := e.Group("/api/v1")
	if h.authMW != nil {
		g.Use(h.authMW)
	}
	g.GET("/dispatches", h.listRecords)
}

type sendInquiryReq struct {
	LandingPageID string      `json:"landingPageId" validate:"required,slug"`
	FormData      formDataReq `json:"formData" validate:"required"`
}

type formDataReq struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// sendInquiry godoc
// @Summary      Submit an inquiry from a landing page
// @Description  Relays the inquiry to the mail route configured for the landing page identifier.
// @Tags         inquiries
// @Accept       json
// @Produce      json
// @Param        payload  body  sendInquiryReq  true  "Inquiry payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  validation.ErrorBody
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/send-inquiry [post]
func (h *Controller) sendInquiry(c echo.Context) error {
	var req sendInquiryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}

	result, err := h.svc.DispatchInquiry(c.Request().Context(), req.LandingPageID, domain.FormData{
		Name:    req.FormData.Name,
		Email:   req.FormData.Email,
		Phone:   req.FormData.Phone,
		Message: req.FormData.Message,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Inquiry sent successfully",
		"messageId": result.MessageID,
	})
}

type recordResp struct {
	ID            string `json:"id"`
	LandingPageID string `json:"landing_page_id,omitempty"`
	MailAccountID string `json:"mail_account_id,omitempty"`
	Recipient     string `json:"recipient"`
	Subject       string `json:"subject"`
	Status        string `json:"status"`
	ErrorMessage  string `json:"error_message,omitempty"`
	SentAt        string `json:"sent_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toRecordResp(r domain.DispatchRecord) recordResp {
	resp := recordResp{
		ID:           r.ID.String(),
		Recipient:    r.Recipient,
		Subject:      r.Subject,
		Status:       string(r.Status),
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.LandingPageID != nil {
		resp.LandingPageID = r.LandingPageID.String()
	}
	if r.MailAccountID != nil {
		resp.MailAccountID = r.MailAccountID.String()
	}
	if r.SentAt != nil {
		resp.SentAt = r.SentAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// listRecords godoc
// @Summary      List dispatch records
// @Tags         dispatches
// @Produce      json
// @Param        limit   query  int  false  "Page size (default 50, max 200)"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/v1/dispatches [get]
func (h *Controller) listRecords(c echo.Context) error {
	limit := queryInt32(c, "limit", 50)
	offset := queryInt32(c, "offset", 0)

	records, total, err := h.svc.ListRecords(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list dispatch records"})
	}
	out := make([]recordResp, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordResp(r))
	}
	return c.JSON(http.StatusOK, map[string]any{"total": total, "records": out})
}

func queryInt32(c echo.Context, name string, def int32) int32 {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n < 0 {
		return def
	}
	return int32(n)
}
