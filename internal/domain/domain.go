// Package domain holds the portfolio entities shared by storage and bot logic.
package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound reports that the requested row does not exist (anymore).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyApproved reports an approval attempt on an approved item.
	ErrAlreadyApproved = errors.New("already approved")
)

// AllCategories is the category id meaning "no category restriction".
const AllCategories int64 = 0

// DefaultCategories is seeded at startup when the catalog config is empty.
var DefaultCategories = []string{
	"Backend (Python)",
	"Frontend (JS/TS)",
	"Mobile Development",
	"DevOps/Cloud",
	"UI/UX Design",
	"QA/Testing",
	"Data Science",
}

// User is a chat principal known to the bot.
type User struct {
	ID         int64   `db:"id"`
	TelegramID int64   `db:"telegram_id"`
	Username   *string `db:"username"`
	IsAdmin    bool    `db:"is_admin"`
}

// Category groups portfolio items.
type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// PortfolioItem is a submitted project.
type PortfolioItem struct {
	ID          int64   `db:"id"`
	Title       string  `db:"title" validate:"required"`
	Description string  `db:"description" validate:"required,max=4096"`
	Link        *string `db:"link"`
	PhotoRef    *string `db:"photo_ref" validate:"omitempty,max=512"`
	DocumentRef *string `db:"document_ref" validate:"omitempty,max=512"`
	IsApproved  bool    `db:"is_approved"`
	CreatorID   int64   `db:"creator_id" validate:"required"`
	CategoryID  int64   `db:"category_id" validate:"gt=0"`
}

// HasPhoto reports whether the item renders as an image with caption.
func (p PortfolioItem) HasPhoto() bool {
	return p.PhotoRef != nil && *p.PhotoRef != ""
}

// HasDocument reports whether a document is attached.
func (p PortfolioItem) HasDocument() bool {
	return p.DocumentRef != nil && *p.DocumentRef != ""
}

// WebLink returns the link when it is an http(s) URL usable as a button target.
func (p PortfolioItem) WebLink() (string, bool) {
	if p.Link == nil {
		return "", false
	}
	l := strings.TrimSpace(*p.Link)
	if strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") {
		return l, true
	}
	return "", false
}

// Filter selects the item subset a browsing window runs over.
type Filter struct {
	Approved   bool
	CategoryID int64
}

// ApprovedIn selects approved items of a category, or of all categories for AllCategories.
func ApprovedIn(categoryID int64) Filter {
	return Filter{Approved: true, CategoryID: categoryID}
}

// Pending selects items awaiting moderation.
func Pending() Filter {
	return Filter{Approved: false, CategoryID: AllCategories}
}

// Stats aggregates counters for the admin statistics screen.
type Stats struct {
	Users    int `db:"users"`
	Items    int `db:"items"`
	Approved int `db:"approved"`
	Pending  int `db:"pending"`
}
