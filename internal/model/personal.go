package model

import (
	"time"

	"github.com/google/uuid"
)

// PersonalRequest type values.
const (
	PersonalTimeOff    = "time_off"
	PersonalLeaveEarly = "leave_early"
	PersonalComeLate   = "come_late"
	PersonalTempLeave  = "temp_leave"
)

// PersonalRequest covers time-off, leave-early, come-late and temporary
// leave requests. Only the fields for the given request type are set.
type PersonalRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequesterInfo `gorm:"embedded"`

	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	RequestType string `gorm:"type:varchar(20);not null;index" json:"request_type"`

	// time_off
	Date *time.Time `gorm:"type:date" json:"date,omitempty"`

	// leave_early
	ShortHour string `gorm:"type:varchar(5)" json:"short_hour,omitempty"` // HH:MM

	// come_late
	ComeLateDate *time.Time `gorm:"type:date" json:"come_late_date,omitempty"`
	ComeLateHour string     `gorm:"type:varchar(5)" json:"come_late_hour,omitempty"` // HH:MM

	// temp_leave
	TempLeaveStart *time.Time `gorm:"type:date" json:"temp_leave_start,omitempty"`
	TempLeaveEnd   *time.Time `gorm:"type:date" json:"temp_leave_end,omitempty"`

	ApprovalEnvelope `gorm:"embedded"`
}

func (r *PersonalRequest) RequestID() uuid.UUID        { return r.ID }
func (r *PersonalRequest) Requester() RequesterInfo    { return r.RequesterInfo }
func (r *PersonalRequest) Envelope() *ApprovalEnvelope { return &r.ApprovalEnvelope }
