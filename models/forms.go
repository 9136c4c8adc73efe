package models

// Upload is a file attached to a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Pricing holds the per-pack list prices sent with a new product.
type Pricing struct {
	Single string `json:"single"`
	Dozen  string `json:"dozen"`
	Carton string `json:"carton"`
}

// Variant is a price/quantity pair as the back office submits it.
type Variant struct {
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

// ProductForm is the admin "add product" submission.
type ProductForm struct {
	Name        string
	Description string
	CategoryID  string
	Brand       string
	Featured    bool
	// Points is free text, one bullet per line.
	Points string
	// Variants is the raw JSON array typed by the admin.
	Variants string
	Pricing  Pricing
	Images   []Upload
}

// ProductUpdate is the JSON body for editing a product. Nil fields are left untouched.
type ProductUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	Brand       *string   `json:"brand,omitempty"`
	Featured    *bool     `json:"isFeature,omitempty"`
	Points      []string  `json:"points,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
}

// SignupForm is the customer registration submission.
type SignupForm struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	GSTNumber       string `json:"gstnumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// EnquiryForm asks for a quote on a product.
type EnquiryForm struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"productId"`
	Option    string `json:"variant,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	Message   string `json:"message,omitempty"`
}
