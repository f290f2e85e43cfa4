package transport

import "time"

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProductInput struct {
	CategoryID    uint    `json:"category_id"`
	Slug          string  `json:"slug"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	OriginalPrice float64 `json:"original_price"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	IsFeatured    bool    `json:"is_featured"`
	IsNew         bool    `json:"is_new"`
	IsActive      *bool   `json:"is_active"`
	ImageURL      string  `json:"image_url"`
}

type BulkProductsRequest struct {
	Products []ProductInput `json:"products"`
}

// Row is the 1-based spreadsheet row for xlsx imports and zero for JSON.
type BulkResult struct {
	Index int    `json:"index"`
	Row   int    `json:"row,omitempty"`
	ID    uint   `json:"id"`
	Slug  string `json:"slug"`
}

type BulkError struct {
	Index int    `json:"index"`
	Row   int    `json:"row,omitempty"`
	Slug  string `json:"slug"`
	Error string `json:"error"`
}

type BulkResponse struct {
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
	Results []BulkResult `json:"results"`
	Errors  []BulkError  `json:"errors"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

type AddToWishlistRequest struct {
	ProductID uint `json:"product_id"`
}

type CreateBundleRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type AddBundleItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateDiscountRequest struct {
	Name       string    `json:"name"`
	Percentage float64   `json:"percentage"`
	IsActive   *bool     `json:"is_active"`
	ApplyToAll bool      `json:"apply_to_all"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// UpdateProfileRequest leaves nil fields unchanged.
type UpdateProfileRequest struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
}

type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}
