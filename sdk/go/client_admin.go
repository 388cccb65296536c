package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// MailAccount is an outbound SMTP account. The password never round-trips;
// responses omit it.
type MailAccount struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Secure    bool   `json:"secure"`
	Username  string `json:"username"`
	Provider  string `json:"provider"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateMailAccountRequest carries a new account's parameters. Password is
// plaintext here; the server encrypts it at rest.
type CreateMailAccountRequest struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"`
	Provider string `json:"provider,omitempty"`
}

func (c *RelayClient) CreateMailAccount(ctx context.Context, req CreateMailAccountRequest) (*MailAccount, error) {
	var out MailAccount
	if err := c.do(ctx, http.MethodPost, "/api/v1/mail-accounts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RelayClient) ListMailAccounts(ctx context.Context) ([]MailAccount, error) {
	var out []MailAccount
	if err := c.do(ctx, http.MethodGet, "/api/v1/mail-accounts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConnectionTestResult reports a live SMTP connect/auth check.
type ConnectionTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TestMailAccount runs a connection test against the stored credentials.
func (c *RelayClient) TestMailAccount(ctx context.Context, accountID string) (*ConnectionTestResult, error) {
	var out ConnectionTestResult
	path := fmt.Sprintf("/api/v1/mail-accounts/%s/test", url.PathEscape(accountID))
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LandingPage is a registered inquiry source.
type LandingPage struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type CreateLandingPageRequest struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

func (c *RelayClient) CreateLandingPage(ctx context.Context, req CreateLandingPageRequest) (*LandingPage, error) {
	var out LandingPage
	if err := c.do(ctx, http.MethodPost, "/api/v1/landing-pages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RelayClient) ListLandingPages(ctx context.Context) ([]LandingPage, error) {
	var out []LandingPage
	if err := c.do(ctx, http.MethodGet, "/api/v1/landing-pages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RoutingConfig maps a landing page to a mail account and message template.
type RoutingConfig struct {
	ID              string `json:"id"`
	LandingPageID   string `json:"landing_page_id"`
	MailAccountID   string `json:"mail_account_id"`
	FromEmail       string `json:"from_email"`
	FromName        string `json:"from_name"`
	ReplyToEmail    string `json:"reply_to_email,omitempty"`
	ToEmail         string `json:"to_email"`
	SubjectTemplate string `json:"subject_template,omitempty"`
}

type PutRoutingConfigRequest struct {
	MailAccountID   string `json:"mail_account_id"`
	FromEmail       string `json:"from_email"`
	FromName        string `json:"from_name"`
	ReplyToEmail    string `json:"reply_to_email,omitempty"`
	ToEmail         string `json:"to_email"`
	SubjectTemplate string `json:"subject_template,omitempty"`
}

// PutRoutingConfig creates or replaces the routing config for a landing page.
func (c *RelayClient) PutRoutingConfig(ctx context.Context, landingPageID string, req PutRoutingConfigRequest) (*RoutingConfig, error) {
	var out RoutingConfig
	path := fmt.Sprintf("/api/v1/landing-pages/%s/config", url.PathEscape(landingPageID))
	if err := c.do(ctx, http.MethodPut, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllowedOrigin is one entry of the public endpoint's CORS allow-list.
type AllowedOrigin struct {
	ID          string `json:"id"`
	Origin      string `json:"origin"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

type CreateAllowedOriginRequest struct {
	Origin      string `json:"origin"`
	Description string `json:"description,omitempty"`
}

func (c *RelayClient) CreateAllowedOrigin(ctx context.Context, req CreateAllowedOriginRequest) (*AllowedOrigin, error) {
	var out AllowedOrigin
	if err := c.do(ctx, http.MethodPost, "/api/v1/origins", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DispatchRecord is one audit log entry for an inquiry dispatch attempt.
type DispatchRecord struct {
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

// DispatchRecordPage is one page of the dispatch log.
type DispatchRecordPage struct {
	Total   int64            `json:"total"`
	Records []DispatchRecord `json:"records"`
}

// ListDispatches fetches dispatch records, newest first. Zero limit uses the
// server default.
func (c *RelayClient) ListDispatches(ctx context.Context, limit, offset int) (*DispatchRecordPage, error) {
	path := "/api/v1/dispatches"
	if limit > 0 || offset > 0 {
		path = fmt.Sprintf("%s?limit=%d&offset=%d", path, limit, offset)
	}
	var out DispatchRecordPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
