package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values accepted by the access policy.
const (
	RoleStaff   = "staff"
	RoleDivHead = "div_head"
	RoleAdmin   = "admin"
)

// DefaultDivision is assigned to users whose division was never set.
const DefaultDivision = "GENERAL"

// User represents a registered employee. Accounts are created by an
// administrator; there is no self-registration. Name is kept in sync with
// the identity provider on every resolution.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // stored lower-cased
	Password  string         `gorm:"type:varchar(255)" json:"-"`                          // set only for local bootstrap accounts
	Role      string         `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	Division  string         `gorm:"type:varchar(100);not null;default:'GENERAL'" json:"division"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleStaff || role == RoleDivHead || role == RoleAdmin
}
