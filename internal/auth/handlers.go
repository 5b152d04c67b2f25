package auth

import (
	"backend-bloghub/internal/shared/apperror"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/signup", func(c *fiber.Ctx) error {
		var req SignupRequest
		if err := c.BodyParser(&req); err != nil {
			return apperror.Validation("invalid payload")
		}
		user, token, err := svc.Signup(c.Context(), req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"user": user, "token": token},
		})
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return apperror.Validation("invalid payload")
		}
		user, token, err := svc.Login(c.Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"user": user, "token": token},
		})
	})

	r.Post("/logout", func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return apperror.Unauthenticated("missing bearer token")
		}
		if err := svc.Logout(c.Context(), token); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"message": "logged out"}})
	})
}
