// Package handlers implements the HTTP request handlers of Yatube.
package handlers

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/Ogyrecheg/yatube/internal/config"
	"github.com/Ogyrecheg/yatube/internal/forms"
	"github.com/Ogyrecheg/yatube/internal/middleware"
	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/Ogyrecheg/yatube/internal/pagination"
	"github.com/Ogyrecheg/yatube/internal/repository"
	"github.com/Ogyrecheg/yatube/internal/security"
	"github.com/Ogyrecheg/yatube/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Template names rendered by the post handlers.
const (
	TemplateIndex      = "posts/index"
	TemplateGroupList  = "posts/group_list"
	TemplateProfile    = "posts/profile"
	TemplatePostDetail = "posts/post_detail"
	TemplateCreatePost = "posts/create_post"
)

// PostHandler serves the public post listings and the create/edit forms.
type PostHandler struct {
	posts     *services.PostService
	groups    *repository.GroupRepository
	users     *repository.UserRepository
	validator *security.ValidationService
	monitor   *security.SecurityMonitor
	logger    *security.Logger
	perPage   config.PaginationConfig
}

// NewPostHandler creates a PostHandler. monitor receives forbidden edit attempts.
func NewPostHandler(logger *security.Logger, validator *security.ValidationService,
	monitor *security.SecurityMonitor, perPage config.PaginationConfig) *PostHandler {
	return &PostHandler{
		posts:     services.NewPostService(logger),
		groups:    repository.NewGroupRepository(),
		users:     repository.NewUserRepository(),
		validator: validator,
		monitor:   monitor,
		logger:    logger,
		perPage:   perPage,
	}
}

// ProfileURL is the profile page of username.
func ProfileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// PostURL is the detail page of a post.
func PostURL(id int) string {
	return "/posts/" + strconv.Itoa(id) + "/"
}

func requestedPage(c *fiber.Ctx) int {
	return pagination.ParsePageNumber(c.Query(pagination.QueryParam))
}

// notFound maps repository lookup misses to 404 and passes other errors through.
func notFound(err error) error {
	switch {
	case errors.Is(err, repository.ErrPostNotFound),
		errors.Is(err, repository.ErrGroupNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return fiber.ErrNotFound
	default:
		return err
	}
}

func actorFrom(c *fiber.Ctx) services.Actor {
	id, username, _ := middleware.CurrentUser(c)
	return services.Actor{
		UserID:    id,
		Username:  username,
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

// Index lists all posts, newest first.
func (h *PostHandler) Index(c *fiber.Ctx) error {
	page, err := h.posts.Latest(c.UserContext(), requestedPage(c), h.perPage.IndexPerPage)
	if err != nil {
		return err
	}
	return c.Render(TemplateIndex, fiber.Map{
		"Title":   "Latest updates",
		"PageObj": page,
	})
}

// GroupPosts lists the posts of the group named by the slug parameter.
func (h *PostHandler) GroupPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	group, err := h.groups.FindBySlug(ctx, c.Params("slug"))
	if err != nil {
		return notFound(err)
	}

	page, err := h.posts.ByGroup(ctx, group.ID, requestedPage(c), h.perPage.GroupPerPage)
	if err != nil {
		return err
	}
	return c.Render(TemplateGroupList, fiber.Map{
		"Title":   "Posts in " + group.Title,
		"Group":   group,
		"PageObj": page,
	})
}

// Profile lists the posts of the user named by the username parameter.
func (h *PostHandler) Profile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	author, err := h.users.FindByUsername(ctx, c.Params("username"))
	if err != nil {
		return notFound(err)
	}

	page, err := h.posts.ByAuthor(ctx, author.ID, requestedPage(c), h.perPage.ProfilePerPage)
	if err != nil {
		return err
	}
	return c.Render(TemplateProfile, fiber.Map{
		"Title":     "Profile of " + author.FullName(),
		"Author":    author,
		"PostCount": page.TotalItems,
		"PageObj":   page,
	})
}

// PostDetail shows a single post. IsEdit is set when the viewer wrote it.
func (h *PostHandler) PostDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	post, err := h.loadPost(ctx, c)
	if err != nil {
		return err
	}

	count, err := h.posts.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return err
	}

	viewerID, _, ok := middleware.CurrentUser(c)
	return c.Render(TemplatePostDetail, fiber.Map{
		"Title":     "Post " + post.String(),
		"Post":      post,
		"PostCount": count,
		"IsEdit":    ok && viewerID == post.AuthorID,
	})
}

func (h *PostHandler) loadPost(ctx context.Context, c *fiber.Ctx) (*models.Post, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, fiber.ErrNotFound
	}
	post, err := h.posts.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

// renderForm shows the create form, or the edit form when post is set.
func (h *PostHandler) renderForm(c *fiber.Ctx, form *forms.PostForm, groups []models.Group, post *models.Post) error {
	data := fiber.Map{
		"Title":  "New post",
		"Form":   form,
		"Groups": groups,
		"IsEdit": post != nil,
	}
	if post != nil {
		data["Title"] = "Edit post"
		data["Post"] = post
		data["PostID"] = post.ID
	}
	return c.Render(TemplateCreatePost, data)
}

// CreateForm renders an empty post form.
func (h *PostHandler) CreateForm(c *fiber.Ctx) error {
	groups, err := h.groups.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return h.renderForm(c, forms.NewPostForm("", ""), groups, nil)
}

// Create validates the submitted post and stores it with the requester as
// author, then redirects to the requester's profile.
func (h *PostHandler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()
	groups, err := h.groups.ListAll(ctx)
	if err != nil {
		return err
	}

	form := forms.NewPostForm(c.FormValue("text"), c.FormValue("group"))
	if !form.Validate(groups, h.validator) {
		return h.renderForm(c, form, groups, nil)
	}

	post := &models.Post{}
	form.Apply(post)
	actor := actorFrom(c)
	if err := h.posts.Create(ctx, post, actor); err != nil {
		return err
	}
	return c.Redirect(ProfileURL(actor.Username))
}

// authorOnly loads the post and returns it when the requester wrote it.
// Otherwise it records the attempt, redirects to the detail page and
// returns a nil post.
func (h *PostHandler) authorOnly(c *fiber.Ctx) (*models.Post, error) {
	post, err := h.loadPost(c.UserContext(), c)
	if err != nil {
		return nil, err
	}

	actor := actorFrom(c)
	if post.AuthorID != actor.UserID {
		h.logger.SecurityEvent(security.EventForbiddenEdit, &actor.UserID, actor.Username,
			actor.IPAddress, actor.UserAgent, map[string]interface{}{
				"post_id":   post.ID,
				"author_id": post.AuthorID,
			})
		h.monitor.MonitorForbiddenEdit(actor.UserID, post.ID)
		return nil, c.Redirect(PostURL(post.ID))
	}
	return post, nil
}

// EditForm renders the form pre-filled with the post. Only the author may edit.
func (h *PostHandler) EditForm(c *fiber.Ctx) error {
	post, err := h.authorOnly(c)
	if post == nil {
		return err
	}
	groups, err := h.groups.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return h.renderForm(c, forms.PostFormFrom(post), groups, post)
}

// Edit updates the post in place and redirects to its detail page.
func (h *PostHandler) Edit(c *fiber.Ctx) error {
	post, err := h.authorOnly(c)
	if post == nil {
		return err
	}

	groups, err := h.groups.ListAll(c.UserContext())
	if err != nil {
		return err
	}

	form := forms.NewPostForm(c.FormValue("text"), c.FormValue("group"))
	if !form.Validate(groups, h.validator) {
		return h.renderForm(c, form, groups, post)
	}

	form.Apply(post)
	if err := h.posts.Update(c.UserContext(), post, actorFrom(c)); err != nil {
		return notFound(err)
	}
	return c.Redirect(PostURL(post.ID))
}
