// Package models defines the domain entities and view models for Yatube.
// It includes database models mapped to PostgreSQL tables and the
// enriched structures handed to templates.
package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// PostStrLimit is the number of characters a post keeps in its string form.
const PostStrLimit = 15

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// User represents an account that can author posts.
//
// Database Table: users
// Security Note: PasswordHash should never be exposed in templates or logs
type User struct {
	ID           int       `db:"id"`            // Primary key, auto-increment
	Username     string    `db:"username"`      // Unique, used for login and profile URLs
	FirstName    string    `db:"first_name"`    // Optional
	LastName     string    `db:"last_name"`     // Optional
	Email        string    `db:"email"`         // Optional contact address
	PasswordHash string    `db:"password_hash"` // bcrypt hashed password
	CreatedAt    time.Time `db:"created_at"`    // Account creation timestamp
}

// FullName returns "First Last", falling back to the username when both are empty.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Post is a single text entry written by a user.
//
// Database Table: posts
// Related: User (many-to-one, cascade), Group (many-to-one, optional, set null)
type Post struct {
	ID       int       `db:"id"`
	Text     string    `db:"text"`
	PubDate  time.Time `db:"pub_date"` // Assigned by the database on insert, never updated
	AuthorID int       `db:"author_id"`
	GroupID  *int      `db:"group_id"` // nil when the post has no group

	// Populated by joins in the post repository
	Author User
	Group  *Group
}

// String returns the first PostStrLimit characters of the text.
func (p Post) String() string {
	return Truncate(p.Text, PostStrLimit)
}

// AuditLog represents an audit trail entry for post and account changes.
//
// Database Table: audit_logs
type AuditLog struct {
	ID         int       // Primary key
	ActorID    *int      // User who performed the action (nullable for CLI actions)
	Action     string    // Action type (e.g., "CREATE_POST", "EDIT_POST")
	ObjectType string    // Type of object affected (e.g., "post", "group")
	ObjectID   *int      // ID of affected object (nullable)
	IPAddress  string    // Source IP address
	UserAgent  string    // Browser/client identifier
	CreatedAt  time.Time // When action occurred
}

// Truncate cuts s to at most n runes. No ellipsis is added.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
