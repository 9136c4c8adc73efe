package parser

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal accepts a JSON number, a numeric string, an empty string or null.
// Text that is not a number ("On request") decodes as not Valid.
type Decimal struct {
	decimal.Decimal
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*d = Decimal{}
		return nil
	}
	raw = strings.Trim(raw, `"`)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "₹"))
	if raw == "" {
		*d = Decimal{}
		return nil
	}
	value, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		*d = Decimal{}
		return nil
	}
	*d = Decimal{Decimal: value, Valid: true}
	return nil
}

// Text accepts a JSON string or number and keeps it as trimmed text.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
	default:
		*t = Text(b)
	}
	return nil
}

// Int accepts a JSON number or a numeric string. Unparseable text decodes to zero.
type Int int

// UnmarshalJSON implements json.Unmarshaler.
func (n *Int) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if raw == "" || raw == "null" {
		*n = 0
		return nil
	}
	if v, err := strconv.Atoi(raw); err == nil {
		*n = Int(v)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*n = Int(f)
		return nil
	}
	*n = 0
	return nil
}

// Ref is an identifier that the backend sometimes sends as a plain string and
// sometimes as a populated document.
type Ref struct {
	ID   string
	Name string
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*r = Ref{}
		return nil
	}
	if b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	var doc struct {
		ID           string `json:"_id"`
		Name         string `json:"name"`
		CategoryName string `json:"categoryname"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	name := doc.Name
	if name == "" {
		name = doc.CategoryName
	}
	*r = Ref{ID: doc.ID, Name: name}
	return nil
}

// RawQuantityOption is a quantity option as the backend sends it.
type RawQuantityOption struct {
	Type     string  `json:"type"`
	Price    Decimal `json:"price"`
	MinOrder Int     `json:"minOrder"`
}

// RawVariant is a price/quantity pair as the backend sends it.
type RawVariant struct {
	ID       string  `json:"_id"`
	Price    Decimal `json:"price"`
	Quantity string  `json:"quantity"`
}

// RawProduct is the union of every product payload shape the backend emits.
type RawProduct struct {
	ID              string              `json:"_id"`
	Name            string              `json:"name"`
	Price           Decimal             `json:"price"`
	CategoryID      Ref                 `json:"categoryId"`
	Brand           string              `json:"brand"`
	Description     string              `json:"description"`
	IsFeature       bool                `json:"isFeature"`
	Quantity        Text                `json:"quantity"`
	QuantityTypo    Text                `json:"qunatity"`
	Carton          Int                 `json:"carter"`
	Images          []string            `json:"images"`
	Points          []string            `json:"points"`
	QuantityOptions []RawQuantityOption `json:"quantityOptions"`
	Variants        []RawVariant        `json:"variants"`
}

// RawCategory is a category document.
type RawCategory struct {
	ID           string `json:"_id"`
	CategoryName string `json:"categoryname"`
	Name         string `json:"name"`
	CatImg       string `json:"catImg"`
}

// RawBrand is a brand document.
type RawBrand struct {
	ID    string `json:"_id"`
	Brand string `json:"brand"`
	Name  string `json:"name"`
}

// RawUser is a user document.
type RawUser struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	GSTNumber string `json:"gstnumber"`
	Status    string `json:"status"`
}

// RawEnquiry is an enquiry document with populated user and product.
type RawEnquiry struct {
	ID      string     `json:"_id"`
	User    RawUser    `json:"user_id"`
	Product RawProduct `json:"productId"`
	AddedAt string     `json:"AddedAt"`
}

// UnmarshalJSON accepts either a populated user document or a bare id.
func (u *RawUser) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		*u = RawUser{}
		return json.Unmarshal(b, &u.ID)
	}
	type plain RawUser
	return json.Unmarshal(b, (*plain)(u))
}

// UnmarshalJSON accepts either a populated product document or a bare id.
func (p *RawProduct) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		*p = RawProduct{}
		return json.Unmarshal(b, &p.ID)
	}
	type plain RawProduct
	return json.Unmarshal(b, (*plain)(p))
}
