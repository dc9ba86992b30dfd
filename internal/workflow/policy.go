package workflow

import (
	"strings"

	"backend/internal/model"
)

// Divisions with organization-wide responsibilities.
const (
	DivisionHRD     = "HRD & GA"
	DivisionFinance = "FINANCE"
)

// SameDivision compares division labels trimmed and case-insensitively.
func SameDivision(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// IsDivHeadOf reports whether u is the division head for the given division.
func IsDivHeadOf(u *model.User, division string) bool {
	if u.Division == "" || division == "" {
		return false
	}
	return u.Role == model.RoleDivHead && SameDivision(u.Division, division)
}

// IsHRDHead reports whether u heads the HRD & GA division.
func IsHRDHead(u *model.User) bool {
	return u.Role == model.RoleDivHead && SameDivision(u.Division, DivisionHRD)
}

// IsFinanceHead reports whether u heads the FINANCE division.
func IsFinanceHead(u *model.User) bool {
	return u.Role == model.RoleDivHead && SameDivision(u.Division, DivisionFinance)
}

// IsHRDMember reports whether u belongs to HRD & GA in any role. HRD has
// organization-wide read visibility for audit.
func IsHRDMember(u *model.User) bool {
	return SameDivision(u.Division, DivisionHRD)
}

// CanActOn reports whether u may decide the given stage of a request
// originating from requestDivision.
func CanActOn(u *model.User, stage StageRole, requestDivision string) bool {
	switch stage {
	case StageDivisionHead:
		return IsDivHeadOf(u, requestDivision)
	case StageHRDHead:
		return IsHRDHead(u)
	case StageFinanceHead:
		return IsFinanceHead(u)
	case StageAdmin:
		return u.Role == model.RoleAdmin
	default:
		return false
	}
}

// Scope describes how far a user may see into the request store.
type Scope int

const (
	// ScopeOwn limits a user to requests they submitted themselves.
	ScopeOwn Scope = iota
	// ScopeDivision limits a division head to their own division.
	ScopeDivision
	// ScopeAll grants full visibility (admins and HRD & GA members).
	ScopeAll
)

// VisibilityScope derives the read scope for a user.
func VisibilityScope(u *model.User) Scope {
	if u.Role == model.RoleAdmin || IsHRDMember(u) {
		return ScopeAll
	}
	if u.Role == model.RoleDivHead {
		return ScopeDivision
	}
	return ScopeOwn
}
