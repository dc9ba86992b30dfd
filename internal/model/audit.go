package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions for the approval workflow.
const (
	ActionSubmitRequest = "SUBMIT_REQUEST"
	ActionApproveStage  = "APPROVE_STAGE"
	ActionRejectRequest = "REJECT_REQUEST"
)

// AuditLog tracks who did what to which request, written in the same
// transaction as the change itself.
type AuditLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action      string     `gorm:"type:varchar(50);not null;index" json:"action"`
	RequestKind string     `gorm:"type:varchar(30);not null;index" json:"request_kind"`
	EntityID    string     `gorm:"type:varchar(50);index" json:"entity_id"`
	Details     string     `gorm:"type:jsonb" json:"details"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}
