package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/aluiziolira/cosmetics-storefront/models"
)

// ProductSource loads a product and the products related to it.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SimilarProducts(ctx context.Context, categoryID string, page int) (*models.PageResult, error)
}

// Detail is the product detail view: one product, an image and quantity
// option selection, and a paged list of similar products.
type Detail struct {
	source ProductSource

	mu      sync.Mutex
	status  Status
	product *models.Product
	err     error
	image   int
	option  int
	similar *Pager
}

// NewDetail builds an empty detail view.
func NewDetail(source ProductSource) *Detail {
	return &Detail{source: source}
}

// Load fetches the product with id and the first page of similar products.
// Similar products failing does not fail the view.
func (d *Detail) Load(ctx context.Context, id string) error {
	d.mu.Lock()
	d.status = StatusLoading
	d.mu.Unlock()

	product, err := d.source.GetProduct(ctx, id)

	d.mu.Lock()
	if err != nil {
		d.status = StatusError
		d.err = err
		d.mu.Unlock()
		return err
	}
	d.status = StatusIdle
	d.err = nil
	d.product = product
	d.image = 0
	d.option = 0
	categoryID := product.CategoryID
	similar := NewPager(FetcherFunc(func(ctx context.Context, page int) (*models.PageResult, error) {
		return d.source.SimilarProducts(ctx, categoryID, page)
	}))
	similar.OnReset(func() { d.SelectImage(0) })
	d.similar = similar
	d.mu.Unlock()

	_ = similar.Load(ctx)
	return nil
}

// State reports what to render.
func (d *Detail) State() (ViewState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.status == StatusLoading, d.product == nil && d.status == StatusIdle:
		return ViewLoading, nil
	case d.status == StatusError:
		return ViewError, d.err
	default:
		return ViewContent, nil
	}
}

// Product returns the loaded product, or nil.
func (d *Detail) Product() *models.Product {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.product
}

// Similar returns the similar products pager, or nil before Load.
func (d *Detail) Similar() *Pager {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.similar
}

// SimilarItems returns the similar products, minus the product itself.
func (d *Detail) SimilarItems() []models.Product {
	d.mu.Lock()
	similar, product := d.similar, d.product
	d.mu.Unlock()
	if similar == nil {
		return nil
	}
	items := similar.Snapshot().Items
	out := items[:0]
	for _, item := range items {
		if product == nil || item.ID != product.ID {
			out = append(out, item)
		}
	}
	return out
}

// SelectImage selects the image at index. Out of range indexes are ignored.
func (d *Detail) SelectImage(index int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index != 0 && (d.product == nil || index < 0 || index >= len(d.product.Images)) {
		return false
	}
	d.image = index
	return true
}

// SelectedImage returns the selected image index.
func (d *Detail) SelectedImage() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.image
}

// MainImage returns the selected image URL.
func (d *Detail) MainImage() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.product == nil {
		return ""
	}
	return d.product.MainImage(d.image)
}

// SelectOption selects the quantity option at index.
func (d *Detail) SelectOption(index int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.product == nil || index < 0 || index >= len(d.product.QuantityOptions) {
		return false
	}
	d.option = index
	return true
}

// SelectedOptionIndex returns the index of the selected quantity option.
func (d *Detail) SelectedOptionIndex() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.option
}

// SelectedOption returns the selected quantity option.
func (d *Detail) SelectedOption() (models.QuantityOption, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.product == nil || len(d.product.QuantityOptions) == 0 {
		return models.QuantityOption{}, false
	}
	return d.product.QuantityOptions[d.option], true
}

// EnquiryMessage is the text sent to the sales contact. The price is only
// quoted for signed-in customers.
func (d *Detail) EnquiryMessage(authenticated bool) string {
	product := d.Product()
	if product == nil {
		return ""
	}
	opt, _ := d.SelectedOption()
	msg := fmt.Sprintf("Hi! I'm interested in %s (%s). Can you please provide more details", product.Name, opt.Label)
	if authenticated {
		return msg + fmt.Sprintf(" and confirm the price of ₹%s?", opt.Price.StringFixed(2))
	}
	return msg + "?"
}

// WhatsAppURL builds a click-to-chat link carrying EnquiryMessage.
func (d *Detail) WhatsAppURL(number string, authenticated bool) string {
	text := strings.ReplaceAll(url.QueryEscape(d.EnquiryMessage(authenticated)), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, text)
}

// EnquiryForm builds an enquiry for the selected option.
func (d *Detail) EnquiryForm(userID string, quantity int) models.EnquiryForm {
	product := d.Product()
	opt, _ := d.SelectedOption()
	form := models.EnquiryForm{UserID: userID, Option: opt.Label, Quantity: quantity}
	if product != nil {
		form.ProductID = product.ID
	}
	return form
}
