package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/formrelay/relay/internal/dispatch/domain"
	"github.com/formrelay/relay/internal/platform/validation"
)

type fakeService struct {
	result     domain.Result
	err        error
	gotID      string
	gotForm    domain.FormData
	records    []domain.DispatchRecord
	recordsErr error
}

func (f *fakeService) DispatchInquiry(ctx context.Context, identifier string, form domain.FormData) (domain.Result, error) {
	f.gotID = identifier
	f.gotForm = form
	return f.result, f.err
}

func (f *fakeService) ListRecords(ctx context.Context, limit, offset int32) ([]domain.DispatchRecord, int64, error) {
	return f.records, int64(len(f.records)), f.recordsErr
}

func setup(svc domain.Service) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	New(svc).Register(e)
	return e
}

func postInquiry(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/send-inquiry", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSendInquiry_Success(t *testing.T) {
	svc := &fakeService{result: domain.Result{MessageID: "<id@acme.example>"}}
	e := setup(svc)

	rec := postInquiry(e, `{
		"landingPageId": "acme-landing",
		"formData": {"name": "Jane", "email": "jane@example.com", "message": "hi"}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "<id@acme.example>", resp["messageId"])

	assert.Equal(t, "acme-landing", svc.gotID)
	assert.Equal(t, "Jane", svc.gotForm.Name)
	assert.Equal(t, "hi", svc.gotForm.Message)
}

func TestSendInquiry_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing identifier", `{"formData": {"name": "Jane"}}`},
		{"bad identifier", `{"landingPageId": "Not A Slug!", "formData": {"name": "Jane"}}`},
		{"bad email", `{"landingPageId": "acme", "formData": {"email": "not-an-email"}}`},
		{"invalid json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := postInquiry(setup(svc), tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.gotID, "service must not be called on invalid input")
		})
	}
}

func TestSendInquiry_DispatchFailure(t *testing.T) {
	svc := &fakeService{err: domain.ErrNotConfigured}
	rec := postInquiry(setup(svc), `{"landingPageId": "acme-landing", "formData": {}}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "landing page not found or not configured", resp["message"])
}

func TestListRecords(t *testing.T) {
	now := time.Now()
	pageID := uuid.New()
	svc := &fakeService{records: []domain.DispatchRecord{
		{
			ID:            uuid.New(),
			LandingPageID: &pageID,
			Recipient:     "inbox@acme.example",
			Subject:       "New Inquiry from Acme",
			Status:        domain.StatusSent,
			SentAt:        &now,
			CreatedAt:     now,
		},
		{
			ID:        uuid.New(),
			Recipient: "unknown",
			Subject:   "Failed to send",
			Status:    domain.StatusFailed,
			CreatedAt: now,
		},
	}}
	e := setup(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dispatches", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Total   int64 `json:"total"`
		Records []struct {
			LandingPageID string `json:"landing_page_id"`
			Recipient     string `json:"recipient"`
			Status        string `json:"status"`
			SentAt        string `json:"sent_at"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 2)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, pageID.String(), resp.Records[0].LandingPageID)
	assert.Equal(t, "sent", resp.Records[0].Status)
	assert.NotEmpty(t, resp.Records[0].SentAt)
	assert.Empty(t, resp.Records[1].LandingPageID)
	assert.Empty(t, resp.Records[1].SentAt)
}
