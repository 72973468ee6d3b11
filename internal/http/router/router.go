package router

import (
	"backend-evoting/internal/config"
	"backend-evoting/internal/http/handler"
	"backend-evoting/internal/http/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func New() *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		ErrorHandler:  handler.ErrorHandler,
	})

	app.Use(recover.New())
	if config.GetEnv("APP_ACCESS_LOG", "true") == "true" {
		app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
			TimeZone:   config.GetEnv("APP_TIMEZONE", "Asia/Jakarta"),
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "E-Voting API jalan",
		})
	})

	// Public
	app.Post("/auth/admin/login", handler.AdminLogin)
	app.Post("/auth/login", handler.ParticipantLogin)
	app.Post("/auth/register", handler.Register)
	app.Get("/api/config", handler.GetConfig)
	app.Get("/api/voting/status", handler.GetVotingStatus)
	app.Get("/api/classes", handler.GetAllClasses)
	app.Get("/api/candidates", handler.GetAllCandidates)
	app.Get("/api/candidates/:id", handler.GetCandidateByID)
	app.Get("/api/results", handler.GetResults)

	// Live results
	app.Use("/ws/results", handler.ResultsUpgrade)
	app.Get("/ws/results", handler.ResultsWS)

	// Base API (semua wajib login)
	api := app.Group("/api", middleware.JWTAuth())

	api.Post("/logout", handler.Logout)
	api.Get("/me", handler.Me)

	// ===== PESERTA =====
	participant := middleware.RoleAuth(config.RoleParticipant)
	api.Get("/participants/me/qr", participant, handler.GetMyQR)
	api.Post("/vote", participant, handler.CastVote)

	// ===== PANITIA =====
	admin := middleware.RoleAuth(config.RoleAdmin)

	// Config
	api.Put("/config", admin, handler.UpdateConfig)

	// Classes
	api.Get("/classes/paginate", admin, handler.GetAllClassesPagination)
	api.Get("/classes/:id", admin, handler.GetClassByID)
	api.Post("/classes", admin, handler.CreateClass)
	api.Put("/classes/:id", admin, handler.UpdateClass)
	api.Delete("/classes/:id", admin, handler.DeleteClass)

	// Participants
	api.Get("/participants", admin, handler.GetAllParticipants)
	api.Get("/participants/paginate", admin, handler.GetAllParticipantsPagination)
	api.Get("/participants/:id", admin, handler.GetParticipantByID)
	api.Get("/participants/:id/qr", admin, handler.GetParticipantQR)
	api.Put("/participants/:id", admin, handler.UpdateParticipant)
	api.Delete("/participants/:id", admin, handler.DeleteParticipant)

	// Check-in
	api.Post("/checkin", admin, handler.CheckIn)
	api.Post("/checkin/manual/:id", admin, handler.ManualCheckIn)

	// Candidates
	api.Post("/candidates", admin, handler.CreateCandidate)
	api.Put("/candidates/:id", admin, handler.UpdateCandidate)
	api.Delete("/candidates/:id", admin, handler.DeleteCandidate)

	// Results, statistik, export
	api.Get("/results/detail", admin, handler.GetResultsDetail)
	api.Get("/stats", admin, handler.GetStats)
	api.Get("/export/results.csv", admin, handler.ExportResultsCSV)

	// Admins
	api.Get("/admins", admin, handler.GetAllAdmins)
	api.Post("/admins", admin, handler.CreateAdmin)

	return app
}
