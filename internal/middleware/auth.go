// Package middleware provides HTTP middleware for authentication, CSRF
// protection, rate limiting and request logging.
package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Session and context keys shared by middleware and handlers.
const (
	KeyUserID    = "user_id"
	KeyUsername  = "username"
	KeyCSRFToken = "csrf_token"
)

// LoginURL is where anonymous visitors of protected pages are sent.
const LoginURL = "/auth/login/"

// LoginRedirect builds the login URL that returns to next after signing in.
// Slashes in next are left unescaped.
func LoginRedirect(next string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// LoadUser copies the signed-in user from the session into c.Locals.
// Anonymous requests pass through untouched.
//
// Context Locals Set:
//   - user_id: The authenticated user's ID (int)
//   - username: The user's username (string)
func LoadUser(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Next()
		}
		if id, ok := sess.Get(KeyUserID).(int); ok {
			c.Locals(KeyUserID, id)
			c.Locals(KeyUsername, sess.Get(KeyUsername))
		}
		return c.Next()
	}
}

// AuthRequired ensures the user is authenticated. Anonymous requests are
// redirected to the login page with the original URL in the next parameter.
//
// Example:
//
//	app.Get("/create/", middleware.AuthRequired(store), h.CreateForm)
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Redirect(LoginRedirect(c.OriginalURL()))
		}

		userID, ok := sess.Get(KeyUserID).(int)
		if !ok {
			return c.Redirect(LoginRedirect(c.OriginalURL()))
		}

		c.Locals(KeyUserID, userID)
		c.Locals(KeyUsername, sess.Get(KeyUsername))
		return c.Next()
	}
}

// CurrentUser returns the user placed in c.Locals by LoadUser or AuthRequired.
func CurrentUser(c *fiber.Ctx) (id int, username string, ok bool) {
	id, ok = c.Locals(KeyUserID).(int)
	if !ok {
		return 0, "", false
	}
	username, _ = c.Locals(KeyUsername).(string)
	return id, username, true
}
