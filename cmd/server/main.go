package main

import (
	"context"
	"log"

	"mes-planner/internal/config"
	"mes-planner/internal/database"
	"mes-planner/internal/forecast"
	"mes-planner/internal/server"
)

func main() {
	cfg := config.Load()
	db := database.Init(cfg)

	if cfg.SeedForecasts {
		n, err := forecast.Seed(context.Background(), forecast.NewStore(db))
		if err != nil {
			log.Fatalf("Seed hatası: %v", err)
		}
		log.Printf("Seed tamamlandı: %d forecast eklendi", n)
	}

	app := server.New(cfg, db)

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
