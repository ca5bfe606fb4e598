package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/trialfinder/internal/templates"
)

func HomeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, fiber.StatusOK, templates.Home())
	}
}

func HealthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
