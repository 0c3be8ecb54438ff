package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PostStatus is the lifecycle state of a blog post
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

// TitleMaxLength is the maximum number of characters in a post title
const TitleMaxLength = 30

// PostStatuses lists every valid status in display order
var PostStatuses = []PostStatus{StatusDraft, StatusPublished, StatusArchived}

func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Label returns the human-readable name of the status
func (s PostStatus) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPublished:
		return "Published"
	case StatusArchived:
		return "Archived"
	}
	return string(s)
}

// BlogPost is a single text post owned (optionally) by a user
type BlogPost struct {
	ID       uint       `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Title    string     `json:"title" gorm:"column:title;type:varchar(30);not null"`
	Body     string     `json:"body" gorm:"column:body;type:text;not null"`
	Slug     string     `json:"slug" gorm:"column:slug;type:varchar(255);not null;uniqueIndex:idx_blog_posts_slug"`
	Status   PostStatus `json:"status" gorm:"column:status;type:varchar(10);not null;default:draft"`
	PubDate  time.Time  `json:"pub_date" gorm:"column:pub_date;not null;index:idx_blog_posts_author_pub_date,priority:2,sort:desc"`
	AuthorID *uint      `json:"author_id" gorm:"column:author_id;index:idx_blog_posts_author_pub_date,priority:1"`
	Author   *User      `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

// BeforeSave fills defaults and rejects statuses outside the enumeration
func (p *BlogPost) BeforeSave(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if !p.Status.Valid() {
		return fmt.Errorf("invalid post status %q", p.Status)
	}
	if p.PubDate.IsZero() {
		p.PubDate = time.Now()
	}
	return nil
}

func (p *BlogPost) IsPublished() bool {
	return p.Status == StatusPublished
}

// AuthoredBy reports whether the post's author is the given user
func (p *BlogPost) AuthoredBy(userID uint) bool {
	return p.AuthorID != nil && *p.AuthorID == userID
}
