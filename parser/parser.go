package parser

import (
	"strings"
	"time"

	"github.com/aluiziolira/cosmetics-storefront/models"
	"github.com/shopspring/decimal"
)

// DefaultOptionLabel names the quantity option synthesized for products that
// carry no quantity options of their own.
const DefaultOptionLabel = "Default"

// ShortDescriptionLen bounds the teaser text shown on featured cards.
const ShortDescriptionLen = 100

// NormalizeProduct converts any backend product payload into the canonical
// shape. The result always has at least one image and one quantity option,
// and never a nil feature list.
func NormalizeProduct(raw RawProduct, placeholder string) models.Product {
	p := models.Product{
		ID:              strings.TrimSpace(raw.ID),
		Name:            strings.TrimSpace(raw.Name),
		CategoryID:      raw.CategoryID.ID,
		CategoryName:    raw.CategoryID.Name,
		Brand:           strings.TrimSpace(raw.Brand),
		Description:     strings.TrimSpace(raw.Description),
		Featured:        raw.IsFeature,
		Carton:          int(raw.Carton),
		Images:          nonEmpty(raw.Images),
		Features:        nonEmpty(raw.Points),
		QuantityOptions: normalizeOptions(raw),
	}
	p.ShortDescription = Truncate(p.Description, ShortDescriptionLen)

	p.Quantity = string(raw.Quantity)
	if p.Quantity == "" {
		p.Quantity = string(raw.QuantityTypo)
	}

	if len(p.Images) == 0 {
		p.Images = []string{placeholder}
	}
	if p.Features == nil {
		p.Features = []string{}
	}

	p.Price = p.QuantityOptions[0].Price
	if raw.Price.Valid {
		p.Price = raw.Price.Decimal
	}
	if len(raw.QuantityOptions) == 0 && len(raw.Variants) == 0 {
		p.QuantityOptions[0].Price = p.Price
	}
	return p
}

// NormalizeProducts normalizes a page of products, preserving order.
func NormalizeProducts(raw []RawProduct, placeholder string) []models.Product {
	out := make([]models.Product, 0, len(raw))
	for _, r := range raw {
		out = append(out, NormalizeProduct(r, placeholder))
	}
	return out
}

func normalizeOptions(raw RawProduct) []models.QuantityOption {
	if len(raw.QuantityOptions) > 0 {
		opts := make([]models.QuantityOption, 0, len(raw.QuantityOptions))
		for _, o := range raw.QuantityOptions {
			label := strings.TrimSpace(o.Type)
			if label == "" {
				label = DefaultOptionLabel
			}
			price := o.Price.Decimal
			if !o.Price.Valid {
				price = raw.Price.Decimal
			}
			minOrder := int(o.MinOrder)
			if minOrder <= 0 {
				minOrder = 1
			}
			opts = append(opts, models.QuantityOption{Label: label, Price: price, MinOrder: minOrder})
		}
		return opts
	}

	if len(raw.Variants) > 0 {
		opts := make([]models.QuantityOption, 0, len(raw.Variants))
		for _, v := range raw.Variants {
			label := strings.TrimSpace(v.Quantity)
			if label == "" {
				label = DefaultOptionLabel
			}
			opts = append(opts, models.QuantityOption{Label: label, Price: v.Price.Decimal, MinOrder: 1})
		}
		return opts
	}

	label := string(raw.Quantity)
	if label == "" {
		label = string(raw.QuantityTypo)
	}
	if label == "" {
		label = DefaultOptionLabel
	}
	return []models.QuantityOption{{Label: label, Price: decimal.Zero, MinOrder: 1}}
}

// NormalizeCategory converts a category document.
func NormalizeCategory(raw RawCategory) models.Category {
	name := raw.CategoryName
	if name == "" {
		name = raw.Name
	}
	return models.Category{
		ID:       strings.TrimSpace(raw.ID),
		Name:     strings.TrimSpace(name),
		ImageURL: strings.TrimSpace(raw.CatImg),
	}
}

// NormalizeBrand converts a brand document.
func NormalizeBrand(raw RawBrand) models.Brand {
	name := raw.Brand
	if name == "" {
		name = raw.Name
	}
	return models.Brand{ID: strings.TrimSpace(raw.ID), Name: strings.TrimSpace(name)}
}

// NormalizeUser converts a user document. An empty status reads as pending.
func NormalizeUser(raw RawUser) models.User {
	status := strings.ToLower(strings.TrimSpace(raw.Status))
	if status == "" {
		status = models.UserPending
	}
	return models.User{
		ID:        strings.TrimSpace(raw.ID),
		Name:      strings.TrimSpace(raw.Name),
		Email:     strings.TrimSpace(raw.Email),
		Phone:     strings.TrimSpace(raw.Phone),
		Address:   strings.TrimSpace(raw.Address),
		GSTNumber: strings.TrimSpace(raw.GSTNumber),
		Status:    status,
	}
}

// NormalizeEnquiry converts an enquiry document. An unparseable timestamp is left zero.
func NormalizeEnquiry(raw RawEnquiry, placeholder string) models.Enquiry {
	e := models.Enquiry{
		ID:      strings.TrimSpace(raw.ID),
		User:    NormalizeUser(raw.User),
		Product: NormalizeProduct(raw.Product, placeholder),
	}
	if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(raw.AddedAt)); err == nil {
		e.AddedAt = ts
	}
	return e
}

// SplitPoints turns newline separated bullet text into trimmed, non-empty points.
func SplitPoints(text string) []string {
	points := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			points = append(points, line)
		}
	}
	return points
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func nonEmpty(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
