package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	Category      string          `gorm:"size:100;index" json:"category"`
	Tags          pq.StringArray  `gorm:"type:text" json:"tags"` // postgres array literal
	ImageKey      string          `gorm:"size:255" json:"-"`
	ImageURL      string          `gorm:"size:512" json:"image_url"`
	AverageRating float64         `gorm:"not null;default:0" json:"average_rating"` // derived from reviews
	ReviewCount   int             `gorm:"not null;default:0" json:"review_count"`   // derived from reviews
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	CartItems []CartItem `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Reviews   []Review   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) InStock(quantity int) bool {
	return quantity <= p.StockQuantity
}
