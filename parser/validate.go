package parser

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	"github.com/aluiziolira/cosmetics-storefront/models"
)

// Upload limits enforced before any multipart request is built.
const (
	MaxImageBytes    = 2 << 20
	MaxProductImages = 5
)

// ValidationError reports a form field that blocks submission. It is only
// ever produced client-side and never after a network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ValidationError{Message: "Please fill in all required fields"}
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return invalid("email", "is not a valid email address")
	}
	return nil
}

// ValidateSignup checks the registration form.
func ValidateSignup(f models.SignupForm) error {
	required := []struct {
		field string
		value string
	}{
		{"name", f.Name},
		{"phone", f.Phone},
		{"email", f.Email},
		{"address", f.Address},
		{"gstNumber", f.GSTNumber},
		{"password", f.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid(r.field, "is required")
		}
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(f.Email)); err != nil {
		return invalid("email", "is not a valid email address")
	}
	if f.Password != f.ConfirmPassword {
		return invalid("confirmPassword", "passwords do not match")
	}
	return nil
}

// ValidateCategoryName checks a category name.
func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "category name is required")
	}
	return nil
}

// ValidateImage checks a single image upload.
func ValidateImage(field string, u models.Upload) error {
	if len(u.Data) == 0 {
		return invalid(field, "image is required")
	}
	if !strings.HasPrefix(u.ContentType, "image/") {
		return invalid(field, "%s is not an image", u.Filename)
	}
	if len(u.Data) > MaxImageBytes {
		return invalid(field, "%s exceeds the 2MB limit", u.Filename)
	}
	return nil
}

// ValidateProductForm checks the admin product form and returns the decoded
// variants and points ready to be sent.
func ValidateProductForm(f models.ProductForm) ([]models.Variant, []string, error) {
	if strings.TrimSpace(f.Name) == "" {
		return nil, nil, invalid("name", "product name is required")
	}
	if strings.TrimSpace(f.CategoryID) == "" {
		return nil, nil, invalid("categoryId", "category is required")
	}
	if len(f.Images) == 0 {
		return nil, nil, invalid("images", "at least one image is required")
	}
	if len(f.Images) > MaxProductImages {
		return nil, nil, invalid("images", "at most %d images are allowed", MaxProductImages)
	}
	for _, img := range f.Images {
		if err := ValidateImage("images", img); err != nil {
			return nil, nil, err
		}
	}

	variants := []models.Variant{}
	if raw := strings.TrimSpace(f.Variants); raw != "" {
		if err := json.Unmarshal([]byte(raw), &variants); err != nil {
			return nil, nil, invalid("variants", "must be a JSON array of {price, quantity}")
		}
		for i, v := range variants {
			if strings.TrimSpace(v.Price) == "" || strings.TrimSpace(v.Quantity) == "" {
				return nil, nil, invalid("variants", "variant %d needs both price and quantity", i+1)
			}
		}
	}
	return variants, SplitPoints(f.Points), nil
}

// ValidateEnquiry checks an enquiry before it is sent.
func ValidateEnquiry(f models.EnquiryForm) error {
	if strings.TrimSpace(f.ProductID) == "" {
		return invalid("productId", "product is required")
	}
	if f.Quantity < 0 {
		return invalid("quantity", "cannot be negative")
	}
	return nil
}

// ValidateProduct ensures a normalized product is complete enough to export.
func ValidateProduct(p *models.Product) error {
	if p == nil {
		return invalid("product", "product is nil")
	}
	if strings.TrimSpace(p.ID) == "" {
		return invalid("id", "product missing id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "product missing name for %s", p.ID)
	}
	if p.Price.IsNegative() {
		return invalid("price", "product %s has negative price", p.ID)
	}
	return nil
}
