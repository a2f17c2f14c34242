// Package repository implements the database access layer for Yatube.
// Every repository talks to PostgreSQL through the global database.DB pool
// and translates driver errors into the sentinel errors below.
package repository

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrGroupNotFound = errors.New("group not found")
	ErrPostNotFound  = errors.New("post not found")

	ErrUsernameTaken = errors.New("username is already taken")
	ErrSlugTaken     = errors.New("group slug is already taken")
)

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}
