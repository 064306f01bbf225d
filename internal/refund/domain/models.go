package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type RefundStatus string

const (
	StatusPending   RefundStatus = "PENDING"
	StatusApproved  RefundStatus = "APPROVED"
	StatusRejected  RefundStatus = "REJECTED"
	StatusProcessed RefundStatus = "PROCESSED"
)

type RefundType string

const (
	TypeFull    RefundType = "FULL"
	TypePartial RefundType = "PARTIAL"
)

// RefundRequest tracks a customer's claim against a delivered order.
// Version backs optimistic locking on status transitions.
type RefundRequest struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID     snowflake.ID `gorm:"index;not null" json:"order_id"`
	CustomerID  snowflake.ID `gorm:"index;not null" json:"customer_id"`
	SellerID    snowflake.ID `gorm:"index;not null" json:"seller_id"`
	Amount      int64        `gorm:"not null" json:"amount"`
	Type        RefundType   `gorm:"size:16;not null" json:"type"`
	Reason      string       `gorm:"size:64;not null" json:"reason"`
	Description string       `json:"description,omitempty"`
	Status      RefundStatus `gorm:"size:16;index;not null" json:"status"`
	AdminNotes  string       `json:"admin_notes,omitempty"`
	Version     int64        `gorm:"not null;default:1" json:"version"`
	ProcessedAt *time.Time   `json:"processed_at,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RefundRequest) TableName() string {
	return "refund_requests"
}

var transitions = map[RefundStatus][]RefundStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusProcessed},
}

func CanTransition(from, target RefundStatus) bool {
	for _, next := range transitions[from] {
		if next == target {
			return true
		}
	}
	return false
}

func IsTerminal(status RefundStatus) bool {
	return len(transitions[status]) == 0
}
