package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Per-stage status values.
const (
	StageNotReached = "not_reached"
	StagePending    = "pending"
	StageApproved   = "approved"
	StageRejected   = "rejected"
)

// Overall request status values. Derived from the stage results and never
// set inconsistently with them.
const (
	StatusPending          = "pending"
	StatusPendingNextStage = "pending_next_stage"
	StatusApproved         = "approved"
	StatusRejected         = "rejected"
)

// StageResult records the outcome of one stage in an approval chain.
type StageResult struct {
	Stage  string `json:"stage"`
	Status string `json:"status"`
}

// StageResults is the ordered stage-to-status mapping persisted as jsonb.
type StageResults []StageResult

func (s StageResults) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StageResults) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = nil
		return nil
	default:
		return errors.New("unsupported type for StageResults")
	}
}

// ApprovalEnvelope is the approval sub-state shared by all request kinds.
// It is mutated only by the workflow engine.
type ApprovalEnvelope struct {
	StageResults  StageResults `gorm:"type:jsonb;not null" json:"stage_results"`
	OverallStatus string       `gorm:"type:varchar(20);not null;default:'pending';index" json:"overall_status"`
	ApprovedBy    string       `gorm:"type:varchar(255)" json:"approved_by"`
	CreatedAt     time.Time    `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// RequesterInfo is the requester identity snapshot taken at submission time.
type RequesterInfo struct {
	Name     string `gorm:"type:varchar(255);not null;index" json:"name"`
	Division string `gorm:"type:varchar(100);not null;index" json:"division"`
	Role     string `gorm:"type:varchar(20);not null" json:"role"`
}

// Request is implemented by every request kind and gives the workflow
// engine uniform access to the approval envelope.
type Request interface {
	RequestID() uuid.UUID
	Requester() RequesterInfo
	Envelope() *ApprovalEnvelope
}
