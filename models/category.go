package models

import (
	"fmt"
	"strings"
)

// Visibility is the audience tier of a post.
type Visibility string

const (
	VisibilityPublic       Visibility = "public"
	VisibilityStudents     Visibility = "students"
	VisibilityMentors      Visibility = "mentors"
	VisibilityAdminMentors Visibility = "admin-mentors"
	VisibilityAnnouncement Visibility = "announcement"
)

// AllVisibilities lists every tier in display order.
var AllVisibilities = []Visibility{
	VisibilityPublic,
	VisibilityStudents,
	VisibilityMentors,
	VisibilityAdminMentors,
	VisibilityAnnouncement,
}

// ParseVisibility returns the tier named by s.
func ParseVisibility(s string) (Visibility, bool) {
	v := Visibility(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case VisibilityPublic, VisibilityStudents, VisibilityMentors, VisibilityAdminMentors, VisibilityAnnouncement:
		return v, true
	default:
		return "", false
	}
}

// Category is a discussion topic bucket.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryCareer        Category = "career"
	CategoryPlacements    Category = "placements"
	CategoryAcademics     Category = "academics"
	CategoryInternships   Category = "internships"
	CategoryHigherStudies Category = "higher-studies"
	CategoryAnnouncements Category = "announcements"
	CategoryMentorLounge  Category = "mentor-lounge"
	CategoryAdminMentors  Category = "admin-mentors"
)

// CategoryInfo is the registry entry for a category.
type CategoryInfo struct {
	ID          Category     `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Tiers       []Visibility `json:"tiers"`
	// AlwaysVisible categories are readable by every caller regardless of tier.
	AlwaysVisible bool `json:"always_visible"`
}

// AllowsTier reports whether posts in the category may carry tier v.
func (c CategoryInfo) AllowsTier(v Visibility) bool {
	for _, t := range c.Tiers {
		if t == v {
			return true
		}
	}
	return false
}

var categoryRegistry = []CategoryInfo{
	{
		ID:          CategoryGeneral,
		Name:        "General Discussion",
		Description: "Open conversation between students and mentors.",
		Tiers:       []Visibility{VisibilityPublic, VisibilityStudents},
	},
	{
		ID:          CategoryCareer,
		Name:        "Career Guidance",
		Description: "Career paths, roles and skill planning.",
		Tiers:       []Visibility{VisibilityPublic, VisibilityStudents},
	},
	{
		ID:          CategoryPlacements,
		Name:        "Placements",
		Description: "Placement drives, interview experiences and preparation.",
		Tiers:       []Visibility{VisibilityStudents},
	},
	{
		ID:          CategoryAcademics,
		Name:        "Academics",
		Description: "Coursework, exams and study help.",
		Tiers:       []Visibility{VisibilityPublic, VisibilityStudents},
	},
	{
		ID:          CategoryInternships,
		Name:        "Internships",
		Description: "Internship openings and experiences.",
		Tiers:       []Visibility{VisibilityStudents},
	},
	{
		ID:          CategoryHigherStudies,
		Name:        "Higher Studies",
		Description: "Graduate programmes, entrance exams and applications.",
		Tiers:       []Visibility{VisibilityPublic, VisibilityStudents},
	},
	{
		ID:            CategoryAnnouncements,
		Name:          "Announcements",
		Description:   "Platform announcements from the administrators.",
		Tiers:         []Visibility{VisibilityAnnouncement},
		AlwaysVisible: true,
	},
	{
		ID:          CategoryMentorLounge,
		Name:        "Mentor Lounge",
		Description: "Mentor-to-mentor discussion.",
		Tiers:       []Visibility{VisibilityMentors},
	},
	{
		ID:          CategoryAdminMentors,
		Name:        "Admin & Mentors",
		Description: "Coordination channel between administrators and mentors.",
		Tiers:       []Visibility{VisibilityAdminMentors},
	},
}

var categoryIndex = func() map[Category]CategoryInfo {
	idx := make(map[Category]CategoryInfo, len(categoryRegistry))
	for _, c := range categoryRegistry {
		if len(c.Tiers) == 0 {
			panic(fmt.Sprintf("category %q has no visibility tiers", c.ID))
		}
		idx[c.ID] = c
	}
	return idx
}()

// Categories returns a copy of the registry in display order.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categoryRegistry))
	copy(out, categoryRegistry)
	return out
}

// LookupCategory returns the registry entry for id.
func LookupCategory(id Category) (CategoryInfo, bool) {
	c, ok := categoryIndex[id]
	return c, ok
}

// ParseCategory normalises s and reports whether it names a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	_, ok := categoryIndex[c]
	return c, ok
}

// Known reports whether c is in the registry.
func (c Category) Known() bool {
	_, ok := categoryIndex[c]
	return ok
}
