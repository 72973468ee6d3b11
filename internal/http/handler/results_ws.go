package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ResultsUpgrade - hanya request websocket yang diteruskan ke ResultsWS
func ResultsUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

var ResultsWS = websocket.New(func(c *websocket.Conn) {
	ResultsHub.Serve(c)
})
