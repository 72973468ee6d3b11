package main

import (
	"backend-evoting/internal/config"
	"backend-evoting/internal/http/router"
	"log"
	"runtime"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	config.LoadEnv()
	config.InitRedis()
	defer config.CloseRedis()
	config.InitDB()
	defer config.CloseDB()

	app := router.New()

	addr := config.GetEnv("APP_HOST", "") + ":" + config.GetEnv("APP_PORT", "8080")
	log.Println("Server jalan di", addr)
	if err := app.Listen(addr); err != nil {
		log.Println("Server berhenti:", err)
	}
}
