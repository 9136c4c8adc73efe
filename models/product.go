// Package models defines the canonical shapes the storefront client works with.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the single canonical catalog item. Every backend variant of the
// product payload is normalized into this shape before leaving the api package.
type Product struct {
	ID               string           `csv:"id" json:"id"`
	Name             string           `csv:"name" json:"name"`
	Price            decimal.Decimal  `csv:"price" json:"price"`
	CategoryID       string           `csv:"category_id" json:"category_id"`
	CategoryName     string           `csv:"category_name" json:"category_name,omitempty"`
	Brand            string           `csv:"brand" json:"brand,omitempty"`
	Description      string           `csv:"description" json:"description"`
	ShortDescription string           `csv:"-" json:"short_description,omitempty"`
	Featured         bool             `csv:"featured" json:"featured"`
	Images           []string         `csv:"images" json:"images"`
	Features         []string         `csv:"features" json:"features"`
	Quantity         string           `csv:"quantity" json:"quantity,omitempty"`
	Carton           int              `csv:"carton" json:"carton"`
	QuantityOptions  []QuantityOption `csv:"-" json:"quantity_options"`
}

// QuantityOption is one purchasable pack size.
type QuantityOption struct {
	Label    string          `json:"label"`
	Price    decimal.Decimal `json:"price"`
	MinOrder int             `json:"min_order"`
}

// MainImage returns the image at index, clamped to the available images.
func (p Product) MainImage(index int) string {
	if len(p.Images) == 0 {
		return ""
	}
	if index < 0 || index >= len(p.Images) {
		index = 0
	}
	return p.Images[index]
}

// Category groups products. Products reference categories by ID only.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Brand is a product brand managed from the back office.
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PageResult is one server page of products. Only the current page is ever held.
type PageResult struct {
	CurrentPage  int       `json:"current_page"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
	Items        []Product `json:"items"`
}

// User account states assigned by the back office.
const (
	UserPending  = "pending"
	UserApproved = "approved"
	UserRejected = "rejected"
)

// User is a registered wholesale customer.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	GSTNumber string `json:"gst_number,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Enquiry is a customer's request for a quote on a product.
type Enquiry struct {
	ID      string    `json:"id"`
	User    User      `json:"user"`
	Product Product   `json:"product"`
	AddedAt time.Time `json:"added_at"`
}
