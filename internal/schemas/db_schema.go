// Package schemas defines the data structures
package schemas

import "time"

// User represents the data model for a user in the system.
// An account stays dormant until ActivatedAt is set by the activation flow.
type User struct {
	ID          string
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Password    string
	CreatedAt   time.Time
	ActivatedAt *time.Time
}

// Profile carries the per-user blog profile, created in the same
// transaction as its user.
type Profile struct {
	UserID                 string
	Bio                    string
	NewsletterSubscription bool
}

// Category is the filter key for entry listings.
type Category struct {
	ID    string
	Title string
}

// BlogEntry is a single blog post. Rating is derived: the mean of the
// stars of all comments attached to the entry.
type BlogEntry struct {
	ID         string
	AuthorID   string
	CategoryID string
	Title      string
	Content    string
	Rating     float64
	CreatedAt  time.Time
}

// Comment belongs to one user and one blog entry and carries a star rating.
type Comment struct {
	ID        string
	EntryID   string
	AuthorID  string
	Content   string
	Stars     int
	CreatedAt time.Time
}

// SavedPost is the bookmark join record; its presence encodes "saved".
// The (user_id, entry_id) pair is unique at the store layer.
type SavedPost struct {
	ID        string
	UserID    string
	EntryID   string
	CreatedAt time.Time
}

// Session represents a login session. The session id travels inside the
// JWT, so deleting the row invalidates the token.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}
