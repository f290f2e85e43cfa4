package models

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"          json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"     json:"email"`
	Name         string    `gorm:"size:255;not null"                 json:"name"`
	PasswordHash string    `gorm:"not null"                          json:"-"`
	Role         string    `gorm:"size:32;not null;default:customer" json:"role"`
	Phone        *string   `gorm:"size:64"                           json:"phone"`
	Address      *string   `gorm:"size:255"                          json:"address"`
	City         *string   `gorm:"size:128"                          json:"city"`
	PostalCode   *string   `gorm:"size:32"                           json:"postal_code"`
	Country      *string   `gorm:"size:128"                          json:"country"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name      string    `gorm:"size:255;not null"             json:"name"`
	Slug      string    `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"       json:"id"`
	CategoryID    uint      `gorm:"index;not null"                 json:"category_id"`
	Category      *Category `gorm:"foreignKey:CategoryID"          json:"category,omitempty"`
	Slug          string    `gorm:"uniqueIndex;size:255;not null"  json:"slug"`
	Name          string    `gorm:"size:255;not null"              json:"name"`
	Description   string    `gorm:"type:text"                      json:"description"`
	OriginalPrice float64   `gorm:"not null;default:0"             json:"original_price"`
	Price         float64   `gorm:"not null"                       json:"price"`
	StockQuantity int       `gorm:"not null;default:0"             json:"stock_quantity"`
	IsFeatured    bool      `gorm:"not null;default:false"         json:"is_featured"`
	IsNew         bool      `gorm:"not null;default:false"         json:"is_new"`
	IsActive      bool      `gorm:"not null"                       json:"is_active"`
	ImageURL      string    `gorm:"size:1024"                      json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                             json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"user_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID"                   json:"product,omitempty"`
	Quantity  uint      `gorm:"not null;default:1;check:quantity>0"    json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey"                                     json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"user_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID"                           json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (WishlistItem) TableName() string {
	return "wishlists"
}

type Bundle struct {
	ID          uint         `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name        string       `gorm:"size:255;not null"             json:"name"`
	Slug        string       `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Description string       `gorm:"type:text"                     json:"description"`
	Price       float64      `gorm:"not null;default:0"            json:"price"`
	Items       []BundleItem `gorm:"foreignKey:BundleID"           json:"items,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

type BundleItem struct {
	ID        uint      `gorm:"primaryKey"                          json:"id"`
	BundleID  uint      `gorm:"index;not null"                      json:"bundle_id"`
	ProductID uint      `gorm:"not null"                            json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID"                json:"product,omitempty"`
	Quantity  uint      `gorm:"not null;default:1;check:quantity>0" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

type Discount struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"size:255;not null"        json:"name"`
	Percentage float64   `gorm:"not null"                 json:"percentage"`
	IsActive   bool      `gorm:"not null"                 json:"is_active"`
	ApplyToAll bool      `gorm:"not null;default:false"   json:"apply_to_all"`
	StartDate  time.Time `gorm:"index;not null"           json:"start_date"`
	EndDate    time.Time `gorm:"index;not null"           json:"end_date"`
	CreatedAt  time.Time `gorm:"index"                    json:"created_at"`
}

func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&CartItem{},
		&WishlistItem{},
		&Bundle{},
		&BundleItem{},
		&Discount{},
	}
}
