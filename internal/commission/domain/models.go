package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CommissionPolicy is a versioned platform take rate. The policy in effect
// for a sale is the one with the latest EffectiveFrom not after the sale time.
type CommissionPolicy struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	RateBasisPoints int64        `gorm:"not null" json:"rate_basis_points"`
	EffectiveFrom   time.Time    `gorm:"index;not null" json:"effective_from"`
	CreatedBy       snowflake.ID `json:"created_by"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (CommissionPolicy) TableName() string {
	return "commission_policies"
}
