package model

import (
	"time"

	"github.com/google/uuid"
)

// LeaveRequest is a paid annual leave request.
type LeaveRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequesterInfo `gorm:"embedded"`

	LeaveType string    `gorm:"type:varchar(50);not null" json:"leave_type"`
	DateStart time.Time `gorm:"type:date;not null" json:"date_start"`
	DateEnd   time.Time `gorm:"type:date;not null" json:"date_end"`
	Duration  int       `gorm:"not null" json:"duration"` // inclusive days, derived from the date range

	Purpose string `gorm:"type:text" json:"purpose"`
	Address string `gorm:"type:varchar(255)" json:"address"`
	Phone   string `gorm:"type:varchar(30)" json:"phone"`
	Notes   string `gorm:"type:text" json:"notes"`

	LeaveDays      int `gorm:"not null;default:0" json:"leave_days"`
	LeaveRemaining int `gorm:"not null;default:0" json:"leave_remaining"`

	ApprovalEnvelope `gorm:"embedded"`
}

func (r *LeaveRequest) RequestID() uuid.UUID        { return r.ID }
func (r *LeaveRequest) Requester() RequesterInfo    { return r.RequesterInfo }
func (r *LeaveRequest) Envelope() *ApprovalEnvelope { return &r.ApprovalEnvelope }
