package models

// Group is a community posts can be published into.
// Groups are managed from the command line; posts reference them optionally.
//
// Database: groups table
type Group struct {
	ID          int    `db:"id"`          // Primary key, auto-increment
	Title       string `db:"title"`       // Display title, up to 200 characters
	Slug        string `db:"slug"`        // Unique URL key, up to 200 characters
	Description string `db:"description"` // Free text shown on the group page
}

// String returns the group title.
func (g Group) String() string {
	return g.Title
}
