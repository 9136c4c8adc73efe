package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aluiziolira/cosmetics-storefront/models"
	"github.com/aluiziolira/cosmetics-storefront/parser"
)

// CreateEnquiry submits a quote request for a product.
func (c *Client) CreateEnquiry(ctx context.Context, form models.EnquiryForm) error {
	if err := parser.ValidateEnquiry(form); err != nil {
		return err
	}
	if form.UserID == "" {
		return AuthError{Op: "create enquiry", Message: "Please log in to send an enquiry"}
	}
	rq, err := jsonRequest(http.MethodPost, "/enquiry", form)
	if err != nil {
		return err
	}
	rq.auth = true
	return c.do(ctx, "create enquiry", rq, nil)
}

// ListEnquiries fetches the enquiries raised by userID.
func (c *Client) ListEnquiries(ctx context.Context, userID string) ([]models.Enquiry, error) {
	if userID == "" {
		return nil, AuthError{Op: "list enquiries", Message: "Please log in to view your enquiries"}
	}
	var body struct {
		Data []parser.RawEnquiry `json:"data"`
	}
	err := c.do(ctx, "list enquiries", request{
		method:     http.MethodGet,
		path:       "/enquiry/" + url.PathEscape(userID),
		auth:       true,
		idempotent: true,
	}, &body)
	if err != nil {
		return nil, err
	}
	out := make([]models.Enquiry, 0, len(body.Data))
	for _, raw := range body.Data {
		out = append(out, parser.NormalizeEnquiry(raw, c.cfg.PlaceholderImage))
	}
	return out, nil
}
