package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	StatusPending     OrderStatus = "PENDING"
	StatusProcessing  OrderStatus = "PROCESSING"
	StatusReadyToShip OrderStatus = "READY_TO_SHIP"
	StatusShipped     OrderStatus = "SHIPPED"
	StatusDelivered   OrderStatus = "DELIVERED"
	StatusCancelled   OrderStatus = "CANCELLED"
)

// Order is a single-seller purchase. TotalAmount is the sum of item
// quantity times unit amount, snapshotted at placement. Version backs
// optimistic locking on status transitions.
type Order struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrderNumber string            `gorm:"uniqueIndex;size:40;not null" json:"order_number"`
	CustomerID  snowflake.ID      `gorm:"index;not null" json:"customer_id"`
	SellerID    snowflake.ID      `gorm:"index;not null" json:"seller_id"`
	Status      OrderStatus       `gorm:"size:16;index;not null" json:"status"`
	TotalAmount int64             `gorm:"not null" json:"total_amount"`
	Currency    string            `gorm:"size:3;not null" json:"currency"`
	Version     int64             `gorm:"not null;default:1" json:"version"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	DeliveredAt *time.Time        `json:"delivered_at,omitempty"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots the product name and price at placement time so later
// catalog edits never change what was sold.
type OrderItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID     snowflake.ID `gorm:"index;not null" json:"order_id"`
	ProductID   snowflake.ID `gorm:"index;not null" json:"product_id"`
	ProductName string       `gorm:"not null" json:"product_name"`
	UnitAmount  int64        `gorm:"not null" json:"unit_amount"`
	Quantity    int64        `gorm:"not null" json:"quantity"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
