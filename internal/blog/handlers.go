package blog

import (
	"backend-bloghub/internal/auth"
	"backend-bloghub/internal/shared/apperror"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, requireAuth, optionalAuth fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		q := ListQuery{
			Page:     c.QueryInt("page"),
			Limit:    c.QueryInt("limit"),
			Category: c.Query("category"),
			Search:   c.Query("search"),
			Sort:     c.Query("sort"),
		}
		result, err := svc.List(c.Context(), q)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": result})
	})

	r.Get("/me", requireAuth, func(c *fiber.Ctx) error {
		result, err := svc.ListMine(c.Context(), auth.UserID(c), c.QueryInt("page"), c.QueryInt("limit"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": result})
	})

	r.Get("/:id", optionalAuth, func(c *fiber.Ctx) error {
		post, err := svc.Get(c.Context(), c.Params("id"), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": post})
	})

	r.Post("/", requireAuth, func(c *fiber.Ctx) error {
		var in PostInput
		if err := c.BodyParser(&in); err != nil {
			return apperror.Validation("invalid payload")
		}
		post, err := svc.Create(c.Context(), auth.UserID(c), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": post})
	})

	r.Put("/:id", requireAuth, func(c *fiber.Ctx) error {
		var patch PostPatch
		if err := c.BodyParser(&patch); err != nil {
			return apperror.Validation("invalid payload")
		}
		post, err := svc.Update(c.Context(), c.Params("id"), auth.UserID(c), patch)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": post})
	})

	r.Delete("/:id", requireAuth, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id"), auth.UserID(c)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"deleted": true}})
	})

	r.Post("/:id/like", requireAuth, func(c *fiber.Ctx) error {
		liked, count, err := svc.ToggleLike(c.Context(), c.Params("id"), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"liked": liked, "likes": count}})
	})

	r.Post("/:id/comments", requireAuth, func(c *fiber.Ctx) error {
		var in CommentInput
		if err := c.BodyParser(&in); err != nil {
			return apperror.Validation("invalid payload")
		}
		comment, err := svc.AddComment(c.Context(), c.Params("id"), auth.UserID(c), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": comment})
	})
}
