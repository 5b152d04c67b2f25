package apperror

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// Handler converts errors escaping route handlers into the API's
// `{success, error}` envelope. Unexpected faults become a generic 500; their
// detail is only echoed to the client outside production.
func Handler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := As(err); ok {
			status := appErr.Status()
			msg := appErr.Error()
			if appErr.Kind == KindInternal {
				log.Printf("internal error: %v", err)
				if production {
					msg = "internal server error"
				}
			}
			return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"success": false, "error": fiberErr.Message})
		}

		log.Printf("unhandled error: %v", err)
		msg := "internal server error"
		if !production {
			msg = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": msg})
	}
}
