package handlers

import (
	"errors"

	"github.com/Ogyrecheg/yatube/internal/security"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const (
	Template403 = "core/403"
	Template404 = "core/404"
	Template500 = "core/500"
)

// ErrorHandler renders error pages. Unexpected errors are logged and shown
// as 500; other 4xx codes without a dedicated page get a plain text body.
func ErrorHandler(logger *security.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		var tmpl string
		switch {
		case code == fiber.StatusNotFound:
			tmpl = Template404
		case code == fiber.StatusForbidden:
			tmpl = Template403
		case code >= fiber.StatusInternalServerError:
			tmpl = Template500
			logger.Error("request failed: "+c.Method()+" "+c.Path(), err)
		default:
			return c.Status(code).SendString(err.Error())
		}

		c.Status(code)
		if rerr := c.Render(tmpl, fiber.Map{"Title": utils.StatusMessage(code), "Path": c.Path()}); rerr != nil {
			logger.Error("failed to render error page", rerr)
			return c.Status(code).SendString(utils.StatusMessage(code))
		}
		return nil
	}
}
