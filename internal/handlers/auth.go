package handlers

import (
	"errors"
	"strings"

	"github.com/Ogyrecheg/yatube/internal/forms"
	"github.com/Ogyrecheg/yatube/internal/middleware"
	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/Ogyrecheg/yatube/internal/repository"
	"github.com/Ogyrecheg/yatube/internal/security"
	"github.com/Ogyrecheg/yatube/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	TemplateLogin  = "users/login"
	TemplateSignup = "users/signup"

	msgBadCredentials = "Please enter a correct username and password."
	msgUsernameTaken  = "A user with that username already exists."
)

// AuthHandler handles login, logout and signup.
type AuthHandler struct {
	store     *session.Store
	auth      *services.AuthService
	audit     *repository.AuditRepository
	guard     *middleware.SecurityMiddleware
	validator *security.ValidationService
	logger    *security.Logger
}

// NewAuthHandler creates a new instance of AuthHandler.
//
// Parameters:
//   - store: Session store for managing user sessions
//   - guard: Login rate limiting and account lockout
//   - bcryptCost: Cost used when hashing passwords of new accounts
func NewAuthHandler(store *session.Store, guard *middleware.SecurityMiddleware,
	validator *security.ValidationService, logger *security.Logger, bcryptCost int) *AuthHandler {
	return &AuthHandler{
		store:     store,
		auth:      services.NewAuthService(bcryptCost),
		audit:     repository.NewAuditRepository(),
		guard:     guard,
		validator: validator,
		logger:    logger,
	}
}

// safeNext accepts only local absolute paths as a post-login target.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}

func (h *AuthHandler) renderLogin(c *fiber.Ctx, form *forms.LoginForm, message string) error {
	return c.Render(TemplateLogin, fiber.Map{
		"Title": "Log in",
		"Form":  form,
		"Error": message,
	})
}

// ShowLogin renders the login form. The next query parameter is carried
// through a hidden field.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return h.renderLogin(c, &forms.LoginForm{Next: c.Query("next")}, "")
}

// Login authenticates the user and stores user_id and username in a fresh
// session, then redirects to next or the index.
//
// Side Effects:
//   - Failed attempts count towards IP rate limiting and account lockout
//   - Logs LOGIN_SUCCESS / LOGIN_FAILURE security events
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	form := &forms.LoginForm{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
		Next:     c.FormValue("next"),
	}
	if !form.Validate() {
		return h.renderLogin(c, form, "")
	}

	ip := c.IP()
	if err := h.guard.CheckLogin(form.Username, ip); err != nil {
		return h.renderLogin(c, form, err.Error())
	}

	user, err := h.auth.Authenticate(c.UserContext(), form.Username, form.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		h.guard.RecordLoginFailure(form.Username, ip)
		return h.renderLogin(c, form, msgBadCredentials)
	}
	if err != nil {
		return err
	}

	if err := h.startSession(c, user); err != nil {
		return err
	}
	h.guard.RecordLoginSuccess(user.Username, ip, user.ID)

	return c.Redirect(safeNext(form.Next))
}

func (h *AuthHandler) startSession(c *fiber.Ctx, user *models.User) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(middleware.KeyUserID, user.ID)
	sess.Set(middleware.KeyUsername, user.Username)
	return sess.Save()
}

// Logout destroys the session and redirects to the index.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/")
	}

	if userID, ok := sess.Get(middleware.KeyUserID).(int); ok {
		username, _ := sess.Get(middleware.KeyUsername).(string)
		h.logger.SecurityEvent(security.EventLogout, &userID, username, c.IP(), c.Get("User-Agent"), nil)
	}

	if err := sess.Destroy(); err != nil {
		return err
	}
	return c.Redirect("/")
}

func (h *AuthHandler) renderSignup(c *fiber.Ctx, form *forms.SignupForm) error {
	return c.Render(TemplateSignup, fiber.Map{
		"Title": "Sign up",
		"Form":  form,
	})
}

// ShowSignup renders the registration form.
func (h *AuthHandler) ShowSignup(c *fiber.Ctx) error {
	return h.renderSignup(c, &forms.SignupForm{Errors: map[string]string{}})
}

// Signup creates the account, signs the new user in and redirects to the index.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	form := &forms.SignupForm{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Username:  c.FormValue("username"),
		Email:     c.FormValue("email"),
		Password1: c.FormValue("password1"),
		Password2: c.FormValue("password2"),
	}
	if !form.Validate(h.validator) {
		return h.renderSignup(c, form)
	}

	ctx := c.UserContext()
	user := form.User()
	err := h.auth.Register(ctx, user, form.Password1)
	if errors.Is(err, repository.ErrUsernameTaken) {
		form.Errors["username"] = msgUsernameTaken
		return h.renderSignup(c, form)
	}
	if err != nil {
		return err
	}

	userID := user.ID
	if err := h.audit.Log(ctx, &models.AuditLog{
		ActorID:    &userID,
		Action:     repository.ActionCreateUser,
		ObjectType: "user",
		ObjectID:   &userID,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}); err != nil {
		h.logger.Error("failed to write audit log", err)
	}
	h.logger.SecurityEvent(security.EventSignup, &userID, user.Username, c.IP(), c.Get("User-Agent"), nil)

	if err := h.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect("/")
}
