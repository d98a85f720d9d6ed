package models

import "strings"

// Role is the verified account role of a caller. The zero value is anonymous.
type Role string

const (
	RoleAnonymous Role = ""
	RoleStudent   Role = "student"
	RoleMentor    Role = "mentor"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a loosely typed role string onto the closed Role set.
// Anything unrecognised becomes anonymous.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent
	case RoleMentor:
		return RoleMentor
	case RoleModerator:
		return RoleModerator
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleAnonymous
	}
}

// Valid reports whether r is a named role (not anonymous).
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanHoldModeratorGrant reports whether an account with this role may receive
// a moderator grant. Admins moderate by role and never hold grants.
func (r Role) CanHoldModeratorGrant() bool {
	return r == RoleStudent || r == RoleMentor
}

// RouteOrigin identifies the surface a request arrived through.
type RouteOrigin string

const (
	OriginForum   RouteOrigin = "forum"
	OriginStudent RouteOrigin = "student"
	OriginMentor  RouteOrigin = "mentor"
	OriginAdmin   RouteOrigin = "admin"
)

// RequiredRole returns the role a caller must hold to act through the origin.
// The neutral forum surface has no requirement.
func (o RouteOrigin) RequiredRole() (Role, bool) {
	switch o {
	case OriginStudent:
		return RoleStudent, true
	case OriginMentor:
		return RoleMentor, true
	case OriginAdmin:
		return RoleAdmin, true
	default:
		return RoleAnonymous, false
	}
}

// Identity is the verified caller supplied by the authentication layer.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Authenticated reports whether the identity carries a user id.
func (i Identity) Authenticated() bool {
	return strings.TrimSpace(i.UserID) != ""
}
