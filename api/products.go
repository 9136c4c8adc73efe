package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aluiziolira/cosmetics-storefront/models"
	"github.com/aluiziolira/cosmetics-storefront/parser"
)

type productPageBody struct {
	Products     []parser.RawProduct `json:"products"`
	CurrentPage  parser.Int          `json:"currentPage"`
	TotalPages   parser.Int          `json:"totalPages"`
	TotalResults parser.Int          `json:"totalResults"`
}

type similarPageBody struct {
	Data  []parser.RawProduct `json:"data"`
	Pages parser.Int          `json:"pages"`
	Total parser.Int          `json:"total"`
}

type singleProductBody struct {
	Product *parser.RawProduct `json:"product"`
}

type productListBody struct {
	Data []parser.RawProduct `json:"data"`
}

func pageNumber(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// newPageResult applies the backend fallbacks: a missing current page is the
// requested page, missing totals are one page and zero results.
func newPageResult(requested, current, totalPages, totalResults int, items []models.Product) *models.PageResult {
	if current <= 0 {
		current = requested
	}
	if totalPages <= 0 {
		totalPages = 1
	}
	if totalPages < current {
		totalPages = current
	}
	if totalResults < 0 {
		totalResults = 0
	}
	return &models.PageResult{
		CurrentPage:  current,
		TotalPages:   totalPages,
		TotalResults: totalResults,
		Items:        items,
	}
}

// ListProducts fetches one catalog page. Pages below one are read as page one.
func (c *Client) ListProducts(ctx context.Context, page int) (*models.PageResult, error) {
	page = pageNumber(page)
	var body productPageBody
	err := c.do(ctx, "list products", request{
		method:     http.MethodGet,
		path:       "/product",
		query:      url.Values{"page": {strconv.Itoa(page)}},
		idempotent: true,
	}, &body)
	if err != nil {
		return nil, err
	}

	items := parser.NormalizeProducts(body.Products, c.cfg.PlaceholderImage)
	c.Metrics.AddProducts(len(items))
	return newPageResult(page, int(body.CurrentPage), int(body.TotalPages), int(body.TotalResults), items), nil
}

// FetchPage is ListProducts under the name the catalog pager expects.
func (c *Client) FetchPage(ctx context.Context, page int) (*models.PageResult, error) {
	return c.ListProducts(ctx, page)
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if id == "" {
		return nil, ValidationError{Field: "id", Message: "product id is required"}
	}
	var body singleProductBody
	err := c.do(ctx, "get product", request{
		method:     http.MethodGet,
		path:       "/product/single/" + url.PathEscape(id),
		idempotent: true,
	}, &body)
	if err != nil {
		return nil, err
	}
	if body.Product == nil || body.Product.ID == "" {
		return nil, TransportError{Op: "get product", StatusCode: http.StatusNotFound, Message: "Product not found"}
	}
	p := parser.NormalizeProduct(*body.Product, c.cfg.PlaceholderImage)
	c.Metrics.AddProducts(1)
	return &p, nil
}

// SimilarProducts fetches a page of products sharing categoryID. Without a
// category it falls back to the plain catalog listing.
func (c *Client) SimilarProducts(ctx context.Context, categoryID string, page int) (*models.PageResult, error) {
	if categoryID == "" {
		return c.ListProducts(ctx, page)
	}
	page = pageNumber(page)
	var body similarPageBody
	err := c.do(ctx, "similar products", request{
		method: http.MethodGet,
		path:   "/product/similar",
		query: url.Values{
			"pageno": {strconv.Itoa(page)},
			"id":     {categoryID},
		},
		idempotent: true,
	}, &body)
	if err != nil {
		return nil, err
	}

	items := parser.NormalizeProducts(body.Data, c.cfg.PlaceholderImage)
	c.Metrics.AddProducts(len(items))
	total := int(body.Total)
	if total == 0 {
		total = len(items)
	}
	return newPageResult(page, page, int(body.Pages), total, items), nil
}

// FeaturedProducts fetches the products flagged for the home page.
func (c *Client) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	var body productListBody
	err := c.do(ctx, "featured products", request{
		method:     http.MethodGet,
		path:       "/product/feature",
		idempotent: true,
	}, &body)
	if err != nil {
		return nil, err
	}
	items := parser.NormalizeProducts(body.Data, c.cfg.PlaceholderImage)
	c.Metrics.AddProducts(len(items))
	return items, nil
}

// CreateProduct uploads a new product with its images.
func (c *Client) CreateProduct(ctx context.Context, form models.ProductForm) (*models.Product, error) {
	variants, points, err := parser.ValidateProductForm(form)
	if err != nil {
		return nil, err
	}

	mp := newMultipartBuilder()
	mp.field("name", form.Name)
	mp.field("description", form.Description)
	mp.field("categoryId", form.CategoryID)
	mp.field("brand", form.Brand)
	mp.field("isFeature", strconv.FormatBool(form.Featured))
	mp.jsonField("points", points)
	mp.jsonField("variants", variants)
	mp.jsonField("pricing", form.Pricing)
	for _, img := range form.Images {
		mp.file("image", img)
	}
	rq, err := mp.request(http.MethodPost, "/product")
	if err != nil {
		return nil, err
	}
	rq.auth = true

	var body singleProductBody
	if err := c.do(ctx, "create product", rq, &body); err != nil {
		return nil, err
	}
	if body.Product == nil {
		return &models.Product{Name: form.Name, CategoryID: form.CategoryID, Brand: form.Brand}, nil
	}
	p := parser.NormalizeProduct(*body.Product, c.cfg.PlaceholderImage)
	return &p, nil
}

// UpdateProduct applies a partial update to a product.
func (c *Client) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) error {
	if id == "" {
		return ValidationError{Field: "id", Message: "product id is required"}
	}
	if update.Name != nil && *update.Name == "" {
		return ValidationError{Field: "name", Message: "product name cannot be empty"}
	}
	rq, err := jsonRequest(http.MethodPut, "/product/"+url.PathEscape(id), update)
	if err != nil {
		return err
	}
	rq.auth = true
	return c.do(ctx, "update product", rq, nil)
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return ValidationError{Field: "id", Message: "product id is required"}
	}
	return c.do(ctx, "delete product", request{
		method: http.MethodDelete,
		path:   "/product/" + url.PathEscape(id),
		auth:   true,
	}, nil)
}
