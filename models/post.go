package models

import "time"

// Post is a top-level forum discussion item. Replies, upvoters and reporters
// are embedded so a post and its thread are always written as one row.
type Post struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	AuthorID    string     `gorm:"index;size:64;not null" json:"author_id"`
	AuthorName  string     `gorm:"size:128;not null" json:"author_name"`
	AuthorRole  Role       `gorm:"size:16;not null" json:"author_role"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Category    Category   `gorm:"index;size:32;not null" json:"category"`
	Visibility  Visibility `gorm:"size:32;not null" json:"visibility"`
	Edited      bool       `gorm:"not null;default:false" json:"edited"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	EditCount   int        `gorm:"not null;default:0" json:"edit_count"`
	IsDeleted   bool       `gorm:"index;not null;default:false" json:"is_deleted"`
	DeletedBy   string     `gorm:"size:64" json:"deleted_by,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	ReportCount int        `gorm:"not null;default:0" json:"report_count"`
	ReportedBy  []string   `gorm:"serializer:json;type:json" json:"-"`
	Upvoters    []string   `gorm:"serializer:json;type:json" json:"upvoters"`
	Replies     []Reply    `gorm:"serializer:json;type:json" json:"replies"`
	Version     int64      `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName keeps forum rows apart from the rest of the platform's tables.
func (Post) TableName() string { return "forum_posts" }

// Reply is nested under exactly one Post and inherits its visibility.
type Reply struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	AuthorRole Role       `json:"author_role"`
	Message    string     `json:"message"`
	IsDeleted  bool       `json:"is_deleted"`
	DeletedBy  string     `json:"deleted_by,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// FindReply returns the index of the reply with id, or -1.
func (p *Post) FindReply(id string) int {
	for i := range p.Replies {
		if p.Replies[i].ID == id {
			return i
		}
	}
	return -1
}

// HasUpvoted reports whether userID is in the upvoter set.
func (p *Post) HasUpvoted(userID string) bool {
	for _, id := range p.Upvoters {
		if id == userID {
			return true
		}
	}
	return false
}

// HasReported reports whether userID already reported the post.
func (p *Post) HasReported(userID string) bool {
	for _, id := range p.ReportedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// LiveReplies returns the replies that are not soft-deleted, in order.
func (p *Post) LiveReplies() []Reply {
	out := make([]Reply, 0, len(p.Replies))
	for _, r := range p.Replies {
		if !r.IsDeleted {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns a deep copy so callers can mutate without sharing slices.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	cp := *p
	cp.EditedAt = cloneTime(p.EditedAt)
	cp.DeletedAt = cloneTime(p.DeletedAt)
	cp.ReportedBy = append([]string(nil), p.ReportedBy...)
	cp.Upvoters = append([]string(nil), p.Upvoters...)
	if p.Replies != nil {
		cp.Replies = make([]Reply, len(p.Replies))
		for i, r := range p.Replies {
			r.DeletedAt = cloneTime(r.DeletedAt)
			cp.Replies[i] = r
		}
	}
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
