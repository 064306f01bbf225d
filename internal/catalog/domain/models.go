package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Product is a seller listing. UnitAmount is in minor currency units.
type Product struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	SellerID      snowflake.ID      `gorm:"index;not null" json:"seller_id"`
	Name          string            `gorm:"not null" json:"name"`
	Description   string            `json:"description,omitempty"`
	UnitAmount    int64             `gorm:"not null" json:"unit_amount"`
	Currency      string            `gorm:"size:3;not null" json:"currency"`
	StockQuantity int64             `gorm:"not null;default:0" json:"stock_quantity"`
	Active        bool              `gorm:"not null;default:true" json:"active"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
