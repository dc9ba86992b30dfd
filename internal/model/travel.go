package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InCityTravel is an official travel request within the city.
type InCityTravel struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequesterInfo `gorm:"embedded"`

	Purpose   string    `gorm:"type:text;not null" json:"purpose"`
	TimeStart time.Time `gorm:"not null" json:"time_start"`
	TimeEnd   time.Time `gorm:"not null" json:"time_end"`

	ApprovalEnvelope `gorm:"embedded"`
}

func (r *InCityTravel) RequestID() uuid.UUID        { return r.ID }
func (r *InCityTravel) Requester() RequesterInfo    { return r.RequesterInfo }
func (r *InCityTravel) Envelope() *ApprovalEnvelope { return &r.ApprovalEnvelope }

// OutOfCityTravel is an official travel request outside the city (SPPD).
// The finance stage reviews the requested advance amount.
type OutOfCityTravel struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequesterInfo `gorm:"embedded"`

	Destination      string          `gorm:"type:varchar(255);not null" json:"destination"`
	Purpose          string          `gorm:"type:text;not null" json:"purpose"`
	Needs            string          `gorm:"type:text" json:"needs"`
	Companions       string          `gorm:"type:text" json:"companions"`
	CompanionPurpose string          `gorm:"type:text" json:"companion_purpose"`
	DepartDate       time.Time       `gorm:"type:date;not null" json:"depart_date"`
	ReturnDate       time.Time       `gorm:"type:date;not null" json:"return_date"`
	TransportType    string          `gorm:"type:varchar(100);not null" json:"transport_type"`
	ItemsBrought     string          `gorm:"type:text" json:"items_brought"`
	AdvanceAmount    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"advance_amount"`

	ApprovalEnvelope `gorm:"embedded"`
}

func (r *OutOfCityTravel) RequestID() uuid.UUID        { return r.ID }
func (r *OutOfCityTravel) Requester() RequesterInfo    { return r.RequesterInfo }
func (r *OutOfCityTravel) Envelope() *ApprovalEnvelope { return &r.ApprovalEnvelope }
