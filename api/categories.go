package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/aluiziolira/cosmetics-storefront/models"
	"github.com/aluiziolira/cosmetics-storefront/parser"
)

type categoryListBody struct {
	Data []parser.RawCategory `json:"data"`
}

type categoryBody struct {
	Data json.RawMessage `json:"data"`
}

// ListCategories fetches every category.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var body categoryListBody
	err := c.do(ctx, "list categories", request{
		method:     http.MethodGet,
		path:       "/category",
		idempotent: true,
	}, &body)
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(body.Data))
	for _, raw := range body.Data {
		out = append(out, parser.NormalizeCategory(raw))
	}
	return out, nil
}

// CreateCategory uploads a new category with its image.
func (c *Client) CreateCategory(ctx context.Context, name string, image models.Upload) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if err := parser.ValidateCategoryName(name); err != nil {
		return nil, err
	}
	if err := parser.ValidateImage("image", image); err != nil {
		return nil, err
	}

	mp := newMultipartBuilder()
	mp.field("name", name)
	mp.file("image", image)
	rq, err := mp.request(http.MethodPost, "/category")
	if err != nil {
		return nil, err
	}
	rq.auth = true

	var body categoryBody
	if err := c.do(ctx, "create category", rq, &body); err != nil {
		return nil, err
	}
	created := decodeCategory(body.Data)
	if created.Name == "" {
		created.Name = name
	}
	return &created, nil
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if id == "" {
		return ValidationError{Field: "id", Message: "category id is required"}
	}
	if err := parser.ValidateCategoryName(name); err != nil {
		return err
	}
	rq, err := jsonRequest(http.MethodPut, "/category/"+url.PathEscape(id), map[string]string{"name": name})
	if err != nil {
		return err
	}
	rq.auth = true
	return c.do(ctx, "update category", rq, nil)
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if id == "" {
		return ValidationError{Field: "id", Message: "category id is required"}
	}
	return c.do(ctx, "delete category", request{
		method: http.MethodDelete,
		path:   "/category/" + url.PathEscape(id),
		auth:   true,
	}, nil)
}

func decodeCategory(data json.RawMessage) models.Category {
	var raw parser.RawCategory
	if len(data) == 0 || json.Unmarshal(data, &raw) != nil {
		return models.Category{}
	}
	return parser.NormalizeCategory(raw)
}
