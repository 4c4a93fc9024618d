package models

import "time"

// Content types listed in the sitemap.
const (
	PostTypePost = "post"
	PostTypePage = "page"
)

// Publication states.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "publish"
)

// Post is a piece of site content addressed by its slug.
type Post struct {
	BaseModel

	Type       string    `gorm:"not null;default:'post';index" json:"type"`
	Title      string    `gorm:"not null" json:"title"`
	Slug       string    `gorm:"not null;uniqueIndex;size:191" json:"slug"`
	Status     string    `gorm:"not null;default:'draft';index" json:"status"`
	ModifiedAt time.Time `gorm:"index" json:"modified_at"`
}

// Published reports whether the post is publicly visible.
func (p Post) Published() bool {
	return p.Status == PostStatusPublished
}
