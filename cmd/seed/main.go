package main

import (
	"context"
	"log"

	"mes-planner/internal/config"
	"mes-planner/internal/database"
	"mes-planner/internal/forecast"
)

func main() {
	cfg := config.Load()
	db := database.Init(cfg)

	n, err := forecast.Seed(context.Background(), forecast.NewStore(db))
	if err != nil {
		log.Fatalf("Seed hatası: %v", err)
	}
	if n == 0 {
		log.Println("Forecast tablosu boş değil, seed atlandı.")
		return
	}
	log.Printf("Seeded MES forecasts: %d", n)
}
