package relay

import (
	"context"
	"net/http"
)

// InquiryFormData is the visitor-submitted form. Every field is optional.
type InquiryFormData struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message,omitempty"`
}

type sendInquiryRequest struct {
	LandingPageID string          `json:"landingPageId"`
	FormData      InquiryFormData `json:"formData"`
}

// SendInquiryResponse is the success payload of the public endpoint.
type SendInquiryResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

// SendInquiry submits an inquiry for the landing page identifier. No
// authentication; this is the public endpoint.
func (c *RelayClient) SendInquiry(ctx context.Context, landingPageID string, form InquiryFormData) (*SendInquiryResponse, error) {
	var out SendInquiryResponse
	err := c.do(ctx, http.MethodPost, "/api/send-inquiry", sendInquiryRequest{
		LandingPageID: landingPageID,
		FormData:      form,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
