package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ogyrecheg/yatube/internal/database"
	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/jackc/pgx/v5"
)

// UserRepository handles user account queries.
type UserRepository struct{}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = `id, username, first_name, last_name, email, password_hash, created_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByUsername retrieves a user by username. Used for login and profile pages.
//
// Returns:
//   - *models.User: User including the password hash
//   - error: ErrUserNotFound if the username doesn't exist, database error otherwise
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(database.DB.QueryRow(ctx, query, username))
}

// FindByID retrieves a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(database.DB.QueryRow(ctx, query, id))
}

// Create inserts a user and fills in ID and CreatedAt.
// A duplicate username yields ErrUsernameTaken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, first_name, last_name, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := database.DB.QueryRow(ctx, query,
		user.Username, user.FirstName, user.LastName, user.Email, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if database.IsUniqueViolation(err) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// List returns all users ordered by username, without password hashes.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT id, username, first_name, last_name, email, created_at FROM users ORDER BY username`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
