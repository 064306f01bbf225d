package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukalabs/soko/internal/identity"
	"gorm.io/datatypes"
)

// AuditLog is an append-only record of who did what to which entity.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorID    snowflake.ID      `gorm:"index" json:"actor_id"`
	ActorRole  string            `gorm:"size:16" json:"actor_role"`
	Action     string            `gorm:"size:64;index;not null" json:"action"`
	TargetType string            `gorm:"size:32;not null" json:"target_type"`
	TargetID   snowflake.ID      `gorm:"index" json:"target_id"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Service records audit entries best-effort; failures are logged, never
// surfaced to the caller.
type Service interface {
	Record(ctx context.Context, actor identity.Actor, action, targetType string, targetID snowflake.ID, metadata map[string]any)
}
