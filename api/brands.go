package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aluiziolira/cosmetics-storefront/models"
	"github.com/aluiziolira/cosmetics-storefront/parser"
)

type brandListBody struct {
	Data []parser.RawBrand `json:"data"`
}

// ListBrands fetches every brand.
func (c *Client) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var body brandListBody
	err := c.do(ctx, "list brands", request{
		method:     http.MethodGet,
		path:       "/brands",
		idempotent: true,
	}, &body)
	if err != nil {
		return nil, err
	}
	out := make([]models.Brand, 0, len(body.Data))
	for _, raw := range body.Data {
		out = append(out, parser.NormalizeBrand(raw))
	}
	return out, nil
}

// CreateBrand adds a brand.
func (c *Client) CreateBrand(ctx context.Context, name string) (*models.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError{Field: "name", Message: "brand name is required"}
	}
	rq, err := jsonRequest(http.MethodPost, "/brands", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	rq.auth = true

	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, "create brand", rq, &body); err != nil {
		return nil, err
	}
	brand := models.Brand{Name: name}
	var raw parser.RawBrand
	if len(body.Data) > 0 && json.Unmarshal(body.Data, &raw) == nil {
		if b := parser.NormalizeBrand(raw); b.ID != "" {
			brand = b
		}
	}
	return &brand, nil
}
