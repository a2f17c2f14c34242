package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ogyrecheg/yatube/internal/database"
	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/jackc/pgx/v5"
)

// GroupRepository handles group queries.
// Groups are created and deleted from the command line; the web side only reads them.
type GroupRepository struct{}

// NewGroupRepository creates a new instance of GroupRepository.
//
// Returns:
//   - *GroupRepository: Initialized repository instance
func NewGroupRepository() *GroupRepository {
	return &GroupRepository{}
}

func scanGroup(row scanner) (*models.Group, error) {
	var g models.Group
	err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// FindBySlug retrieves the group shown at /group/<slug>/.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - slug: Unique URL key of the group
//
// Returns:
//   - *models.Group: The matching group
//   - error: ErrGroupNotFound if no group has this slug, database error otherwise
func (r *GroupRepository) FindBySlug(ctx context.Context, slug string) (*models.Group, error) {
	query := `SELECT id, title, slug, description FROM groups WHERE slug = $1`
	return scanGroup(database.DB.QueryRow(ctx, query, slug))
}

// FindByID retrieves a group by primary key.
func (r *GroupRepository) FindByID(ctx context.Context, id int) (*models.Group, error) {
	query := `SELECT id, title, slug, description FROM groups WHERE id = $1`
	return scanGroup(database.DB.QueryRow(ctx, query, id))
}

// ListAll returns every group ordered by title. The post form offers these as choices.
func (r *GroupRepository) ListAll(ctx context.Context) ([]models.Group, error) {
	query := `SELECT id, title, slug, description FROM groups ORDER BY title, id`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// Create inserts a group and sets group.ID.
// A duplicate slug yields ErrSlugTaken.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (title, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := database.DB.QueryRow(ctx, query, group.Title, group.Slug, group.Description).Scan(&group.ID)
	if database.IsUniqueViolation(err) {
		return ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

// Delete removes the group with slug. Its posts stay and lose their group.
func (r *GroupRepository) Delete(ctx context.Context, slug string) error {
	tag, err := database.DB.Exec(ctx, `DELETE FROM groups WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}
