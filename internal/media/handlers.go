package media

import (
	"io"

	"backend-bloghub/internal/shared/apperror"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, store Store, requireAuth fiber.Handler) {
	r.Post("/upload-image", requireAuth, uploadHandler(store, "image"))
	r.Post("/upload-video", requireAuth, uploadHandler(store, "video"))

	r.Delete("/:publicID", requireAuth, func(c *fiber.Ctx) error {
		if err := store.Delete(c.Context(), c.Params("publicID")); err != nil {
			return apperror.Internal(err)
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"deleted": true}})
	})
}

func uploadHandler(store Store, kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header, err := c.FormFile("file")
		if err != nil {
			return apperror.Validation("file is required")
		}
		folder := c.FormValue("folder", "posts")

		if err := validateUpload(kind, folder, header.Header.Get("Content-Type"), header.Size); err != nil {
			return err
		}

		f, err := header.Open()
		if err != nil {
			return apperror.Internal(err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return apperror.Internal(err)
		}

		asset, err := store.Store(c.Context(), data, header.Filename, folder, kind)
		if err != nil {
			return apperror.Internal(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": asset})
	}
}
