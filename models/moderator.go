package models

import "time"

// Moderator permission identifiers. Every grant currently carries all of them.
const (
	PermDeletePosts   = "delete-posts"
	PermDeleteReplies = "delete-replies"
	PermManageReports = "manage-reports"
	PermViewAll       = "view-all"
)

// DefaultModeratorPermissions returns the fixed permission bundle.
func DefaultModeratorPermissions() []string {
	return []string{PermDeletePosts, PermDeleteReplies, PermManageReports, PermViewAll}
}

// Moderator is a revocable delegation of moderation authority over a set of
// categories. It is keyed by user id and never hard-deleted.
type Moderator struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             string     `gorm:"uniqueIndex;size:64;not null" json:"user_id"`
	UserName           string     `gorm:"size:128;not null" json:"user_name"`
	UserRole           Role       `gorm:"size:16;not null" json:"user_role"`
	AssignedCategories []Category `gorm:"serializer:json;type:json" json:"assigned_categories"`
	Permissions        []string   `gorm:"serializer:json;type:json" json:"permissions"`
	IsActive           bool       `gorm:"index;not null;default:true" json:"is_active"`
	AssignedBy         string     `gorm:"size:64" json:"assigned_by"`
	RevokedAt          *time.Time `json:"revoked_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName names the grants table.
func (Moderator) TableName() string { return "forum_moderators" }

// Covers reports whether the grant is active and includes category c.
func (m *Moderator) Covers(c Category) bool {
	if m == nil || !m.IsActive {
		return false
	}
	for _, ac := range m.AssignedCategories {
		if ac == c {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the grant.
func (m *Moderator) Clone() *Moderator {
	if m == nil {
		return nil
	}
	cp := *m
	cp.AssignedCategories = append([]Category(nil), m.AssignedCategories...)
	cp.Permissions = append([]string(nil), m.Permissions...)
	cp.RevokedAt = cloneTime(m.RevokedAt)
	return &cp
}
