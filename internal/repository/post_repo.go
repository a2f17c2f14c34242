package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ogyrecheg/yatube/internal/database"
	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/jackc/pgx/v5"
)

// PostRepository handles post queries.
//
// Every listing is ordered newest first (pub_date DESC, id DESC) and is read
// one page at a time: the handler asks for the matching Count* first, resolves
// the page window, then calls the List* method with LIMIT and OFFSET.
type PostRepository struct{}

// NewPostRepository creates a new instance of PostRepository.
//
// Returns:
//   - *PostRepository: Initialized repository instance
func NewPostRepository() *PostRepository {
	return &PostRepository{}
}

// postSelect loads a post with its author and optional group in one row.
const postSelect = `
	SELECT p.id, p.text, p.pub_date, p.author_id,
	       u.username, u.first_name, u.last_name,
	       p.group_id, g.title, g.slug
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

const postOrder = `
	ORDER BY p.pub_date DESC, p.id DESC`

func scanPost(row scanner) (*models.Post, error) {
	var (
		p          models.Post
		groupTitle *string
		groupSlug  *string
	)
	err := row.Scan(
		&p.ID, &p.Text, &p.PubDate, &p.AuthorID,
		&p.Author.Username, &p.Author.FirstName, &p.Author.LastName,
		&p.GroupID, &groupTitle, &groupSlug,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Author.ID = p.AuthorID
	if p.GroupID != nil {
		p.Group = &models.Group{ID: *p.GroupID}
		if groupTitle != nil {
			p.Group.Title = *groupTitle
		}
		if groupSlug != nil {
			p.Group.Slug = *groupSlug
		}
	}
	return &p, nil
}

func (r *PostRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Post, error) {
	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := database.DB.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Count returns the number of posts on the site.
func (r *PostRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM posts`)
}

// List returns one page of all posts, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - limit: Page size
//   - offset: Number of newer posts to skip
//
// Returns:
//   - []models.Post: Posts with Author and Group populated (empty slice if none)
//   - error: Database error if query fails, nil on success
func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return r.list(ctx, postSelect+postOrder+`
	LIMIT $1 OFFSET $2`, limit, offset)
}

// CountByGroup returns the number of posts in a group.
func (r *PostRepository) CountByGroup(ctx context.Context, groupID int) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM posts WHERE group_id = $1`, groupID)
}

// ListByGroup returns one page of a group's posts, newest first.
func (r *PostRepository) ListByGroup(ctx context.Context, groupID, limit, offset int) ([]models.Post, error) {
	return r.list(ctx, postSelect+`
	WHERE p.group_id = $1`+postOrder+`
	LIMIT $2 OFFSET $3`, groupID, limit, offset)
}

// CountByAuthor returns the number of posts written by a user.
func (r *PostRepository) CountByAuthor(ctx context.Context, authorID int) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID)
}

// ListByAuthor returns one page of a user's posts, newest first.
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID, limit, offset int) ([]models.Post, error) {
	return r.list(ctx, postSelect+`
	WHERE p.author_id = $1`+postOrder+`
	LIMIT $2 OFFSET $3`, authorID, limit, offset)
}

// GetByID retrieves a single post with its author and group.
//
// Returns:
//   - *models.Post: The post
//   - error: ErrPostNotFound if the ID doesn't exist, database error otherwise
func (r *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	return scanPost(database.DB.QueryRow(ctx, postSelect+`
	WHERE p.id = $1`, id))
}

// Create inserts a post. The database assigns ID and PubDate, which are
// written back into post.
//
// Side Effects:
//   - Sets post.ID and post.PubDate
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (text, author_id, group_id)
		VALUES ($1, $2, $3)
		RETURNING id, pub_date
	`
	if err := database.DB.QueryRow(ctx, query, post.Text, post.AuthorID, post.GroupID).
		Scan(&post.ID, &post.PubDate); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// Update changes the text and group of an existing post in place.
// Author and publication date are never modified.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	tag, err := database.DB.Exec(ctx,
		`UPDATE posts SET text = $1, group_id = $2 WHERE id = $3`,
		post.Text, post.GroupID, post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}
