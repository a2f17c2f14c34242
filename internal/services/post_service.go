package services

import (
	"context"

	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/Ogyrecheg/yatube/internal/pagination"
	"github.com/Ogyrecheg/yatube/internal/repository"
	"github.com/Ogyrecheg/yatube/internal/security"
)

// Actor identifies who performs a change, for the audit trail.
type Actor struct {
	UserID    int
	Username  string
	IPAddress string
	UserAgent string
}

// PostService pages through posts and records changes in the audit trail.
type PostService struct {
	posts  *repository.PostRepository
	audit  *repository.AuditRepository
	logger *security.Logger
}

func NewPostService(logger *security.Logger) *PostService {
	return &PostService{
		posts:  repository.NewPostRepository(),
		audit:  repository.NewAuditRepository(),
		logger: logger,
	}
}

// PostPage is one page of a post listing.
type PostPage = pagination.Page[models.Post]

type countFunc func(ctx context.Context) (int, error)
type listFunc func(ctx context.Context, limit, offset int) ([]models.Post, error)

// page counts, clamps the requested page number and fetches that window.
func page(ctx context.Context, count countFunc, list listFunc, number, perPage int) (*PostPage, error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	w := pagination.NewWindow(total, perPage, number)
	if total == 0 {
		return pagination.NewPage[models.Post](w, nil), nil
	}
	posts, err := list(ctx, w.Limit, w.Offset)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(w, posts), nil
}

// Latest returns a page of all posts, newest first.
func (s *PostService) Latest(ctx context.Context, number, perPage int) (*PostPage, error) {
	return page(ctx, s.posts.Count, s.posts.List, number, perPage)
}

// ByGroup returns a page of the group's posts, newest first.
func (s *PostService) ByGroup(ctx context.Context, groupID, number, perPage int) (*PostPage, error) {
	return page(ctx,
		func(ctx context.Context) (int, error) { return s.posts.CountByGroup(ctx, groupID) },
		func(ctx context.Context, limit, offset int) ([]models.Post, error) {
			return s.posts.ListByGroup(ctx, groupID, limit, offset)
		},
		number, perPage)
}

// ByAuthor returns a page of the user's posts, newest first.
// The page's TotalItems is the author's post count.
func (s *PostService) ByAuthor(ctx context.Context, authorID, number, perPage int) (*PostPage, error) {
	return page(ctx,
		func(ctx context.Context) (int, error) { return s.posts.CountByAuthor(ctx, authorID) },
		func(ctx context.Context, limit, offset int) ([]models.Post, error) {
			return s.posts.ListByAuthor(ctx, authorID, limit, offset)
		},
		number, perPage)
}

// Get returns one post or repository.ErrPostNotFound.
func (s *PostService) Get(ctx context.Context, id int) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// CountByAuthor returns how many posts a user has written.
func (s *PostService) CountByAuthor(ctx context.Context, authorID int) (int, error) {
	return s.posts.CountByAuthor(ctx, authorID)
}

// Create stores a new post authored by actor.
func (s *PostService) Create(ctx context.Context, post *models.Post, actor Actor) error {
	post.AuthorID = actor.UserID
	if err := s.posts.Create(ctx, post); err != nil {
		return err
	}
	s.record(ctx, repository.ActionCreatePost, post.ID, actor)
	s.logger.SecurityEvent(security.EventPostCreate, &actor.UserID, actor.Username, actor.IPAddress, actor.UserAgent,
		map[string]interface{}{"post_id": post.ID})
	return nil
}

// Update saves edited text and group. The caller has checked authorship.
func (s *PostService) Update(ctx context.Context, post *models.Post, actor Actor) error {
	if err := s.posts.Update(ctx, post); err != nil {
		return err
	}
	s.record(ctx, repository.ActionEditPost, post.ID, actor)
	s.logger.SecurityEvent(security.EventPostEdit, &actor.UserID, actor.Username, actor.IPAddress, actor.UserAgent,
		map[string]interface{}{"post_id": post.ID})
	return nil
}

// record writes an audit row. Failures are logged and never block the change.
func (s *PostService) record(ctx context.Context, action string, postID int, actor Actor) {
	userID := actor.UserID
	err := s.audit.Log(ctx, &models.AuditLog{
		ActorID:    &userID,
		Action:     action,
		ObjectType: "post",
		ObjectID:   &postID,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	})
	if err != nil {
		s.logger.Error("failed to write audit log", err)
	}
}
