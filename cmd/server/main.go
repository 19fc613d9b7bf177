package main

import (
	"log"

	"muhasebe-backend/internal/config"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/server"
)

func main() {
	cfg := config.Load()

	database.Init(cfg)

	app := server.New(cfg)

	log.Printf("Sunucu başlatılıyor: :%s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
