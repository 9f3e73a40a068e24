package models

import (
	"time"
)

type User struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName        string    `gorm:"not null"                 json:"fullname"`
	Email           string    `gorm:"uniqueIndex;not null"     json:"email"`
	PhoneNumber     string    `json:"phone_number"`
	DOB             string    `json:"dob"`
	Gender          string    `json:"gender"`
	PasswordHash    *string   `gorm:"default:null"             json:"-"`
	Avatar          string    `json:"avatar"`
	ShippingAddress string    `json:"shipping_address"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Book struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"                      json:"id"`
	Title            string    `gorm:"not null;uniqueIndex:idx_books_title_author"   json:"title"`
	Author           string    `gorm:"not null;uniqueIndex:idx_books_title_author"   json:"author"`
	Price            float64   `gorm:"not null;check:price >= 0"                     json:"price"`
	Quantity         int       `gorm:"not null;check:quantity >= 0"                  json:"quantity"`
	CoverImage       string    `gorm:"not null"                                      json:"cover_image"`
	DescriptionTitle string    `json:"description_title"`
	Description      string    `json:"description"`
	PageCount        int       `gorm:"default:0"                                     json:"page_count"`
	Weight           string    `json:"weight"`
	ISBN             string    `json:"isbn"`
	Language         string    `gorm:"default:English"                               json:"language"`
	OwnerID          uint      `gorm:"index"                                         json:"owner_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Cart is unique per user; the unique index is what prevents a duplicate
// cart from appearing under concurrent first adds.
type Cart struct {
	ID     uint       `gorm:"primaryKey"           json:"id"`
	UserID uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Total  float64    `json:"total"`
	Lines  []CartLine `gorm:"foreignKey:CartID"    json:"lines"`
}

// CartLine keeps the unit price captured at the time of addition so the
// cart total stays equal to the sum of line contributions even if the
// catalog price changes later.
type CartLine struct {
	ID        uint    `gorm:"primaryKey"                                       json:"id"`
	CartID    uint    `gorm:"not null;uniqueIndex:idx_cart_lines_cart_book"    json:"cart_id"`
	BookID    uint    `gorm:"not null;uniqueIndex:idx_cart_lines_cart_book"    json:"book_id"`
	Quantity  uint    `gorm:"not null;check:quantity > 0"                      json:"quantity"`
	UnitPrice float64 `gorm:"not null"                                         json:"unit_price"`
	Book      *Book   `gorm:"foreignKey:BookID"                                json:"book,omitempty"`
}

type Genre struct {
	ID        uint      `gorm:"primaryKey"             json:"id"`
	Title     string    `gorm:"uniqueIndex;not null"   json:"title"`
	Icon      string    `gorm:"not null"               json:"icon"`
	OwnerID   uint      `json:"owner_id"`
	Books     []Book    `gorm:"many2many:genre_books"  json:"books,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Review holds one rating per (user, book) pair, enforced by the
// composite unique index.
type Review struct {
	ID        uint      `gorm:"primaryKey"                                     json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_book"     json:"user_id"`
	BookID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_book"     json:"book_id"`
	Rate      int       `gorm:"not null;check:rate >= 1 AND rate <= 5"         json:"rate"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Currency struct {
	ID           uint    `gorm:"primaryKey"           json:"id"`
	BookID       uint    `gorm:"uniqueIndex;not null" json:"book_id"`
	CurrencyType string  `gorm:"default:NPR"          json:"currency_type"`
	PriceNPR     float64 `gorm:"not null"             json:"price_npr"`
	PriceUSD     float64 `gorm:"not null"             json:"price_usd"`
}
