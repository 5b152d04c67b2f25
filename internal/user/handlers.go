package user

import (
	"backend-bloghub/internal/auth"
	"backend-bloghub/internal/shared/apperror"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, requireAuth fiber.Handler) {
	r.Get("/me", requireAuth, func(c *fiber.Ctx) error {
		me, err := svc.Me(c.Context(), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": me})
	})

	r.Put("/profile", requireAuth, func(c *fiber.Ctx) error {
		var patch ProfilePatch
		if err := c.BodyParser(&patch); err != nil {
			return apperror.Validation("invalid payload")
		}
		updated, err := svc.UpdateProfile(c.Context(), auth.UserID(c), patch)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": updated})
	})

	r.Post("/follow/:id", requireAuth, func(c *fiber.Ctx) error {
		if err := svc.Follow(c.Context(), auth.UserID(c), c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"following": true}})
	})

	r.Post("/unfollow/:id", requireAuth, func(c *fiber.Ctx) error {
		if err := svc.Unfollow(c.Context(), auth.UserID(c), c.Params("id")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"following": false}})
	})

	r.Get("/:username", func(c *fiber.Ctx) error {
		profile, err := svc.GetByUsername(c.Context(), c.Params("username"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": profile})
	})

	r.Get("/:username/followers", func(c *fiber.Ctx) error {
		entries, err := svc.Followers(c.Context(), c.Params("username"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": entries})
	})

	r.Get("/:username/following", func(c *fiber.Ctx) error {
		entries, err := svc.Following(c.Context(), c.Params("username"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": entries})
	})
}
