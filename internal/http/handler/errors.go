package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler - semua error yang lolos dari handler dijawab dengan format JSON yang sama.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Terjadi kesalahan pada server"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		log.Printf("[http] %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
