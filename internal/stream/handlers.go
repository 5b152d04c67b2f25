package stream

import (
	"context"

	"backend-bloghub/internal/shared/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// VerifyToken resolves a bearer token to a user id. Browsers cannot set
// headers on websocket upgrades, so the token rides in a query param.
type VerifyToken func(ctx context.Context, token string) (string, error)

func RegisterRoutes(r fiber.Router, hub *Hub, verify VerifyToken) {
	r.Get("/ws", func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return apperror.Unauthenticated("missing token")
		}
		userID, err := verify(c.Context(), token)
		if err != nil {
			return err
		}
		c.Locals("user_id", userID)
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("user_id").(string)
		client := hub.Register(userID)
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		<-done
	}))
}
