package services

import (
	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/store"
)

// AllowedTiers returns the visibility tiers a caller of role may read.
func AllowedTiers(role models.Role) []models.Visibility {
	switch role {
	case models.RoleAdmin:
		return []models.Visibility{
			models.VisibilityPublic,
			models.VisibilityStudents,
			models.VisibilityMentors,
			models.VisibilityAdminMentors,
			models.VisibilityAnnouncement,
		}
	case models.RoleMentor:
		return []models.Visibility{
			models.VisibilityPublic,
			models.VisibilityStudents,
			models.VisibilityAnnouncement,
			models.VisibilityMentors,
			models.VisibilityAdminMentors,
		}
	case models.RoleStudent, models.RoleModerator, models.RoleAnonymous:
		// a moderator role on a token reads as a student; grants widen
		// visibility only through the moderation listing
		return []models.Visibility{
			models.VisibilityPublic,
			models.VisibilityStudents,
			models.VisibilityAnnouncement,
		}
	default:
		return nil
	}
}

// CanRead reports whether role may read posts in category c. Unknown
// categories are unreadable.
func CanRead(role models.Role, c models.Category) bool {
	info, ok := models.LookupCategory(c)
	if !ok {
		return false
	}
	if info.AlwaysVisible {
		return true
	}
	for _, t := range AllowedTiers(role) {
		if info.AllowsTier(t) {
			return true
		}
	}
	return false
}

// ReadableCategories lists the categories role may read, in registry order.
func ReadableCategories(role models.Role) []models.Category {
	out := make([]models.Category, 0)
	for _, c := range models.Categories() {
		if CanRead(role, c.ID) {
			out = append(out, c.ID)
		}
	}
	return out
}

// ResolveQuery builds the read predicate for role. A filter the role cannot
// read yields a query that matches nothing rather than an error.
func ResolveQuery(role models.Role, filter *models.Category) store.PostQuery {
	if filter != nil {
		if !CanRead(role, *filter) {
			return store.MatchNothing()
		}
		return store.PostQuery{Categories: []models.Category{*filter}}
	}
	cats := ReadableCategories(role)
	if len(cats) == 0 {
		return store.MatchNothing()
	}
	return store.PostQuery{Categories: cats}
}

// StripDeletedReplies removes soft-deleted replies from each post in place.
func StripDeletedReplies(posts []models.Post) []models.Post {
	for i := range posts {
		posts[i].Replies = posts[i].LiveReplies()
	}
	return posts
}

func stripPost(p *models.Post) *models.Post {
	if p != nil {
		p.Replies = p.LiveReplies()
	}
	return p
}
