package main

import (
	"context"
	"os"

	"github.com/dariast03/reparo-sys-sub001/config"
	"github.com/dariast03/reparo-sys-sub001/internal/database"
	"github.com/dariast03/reparo-sys-sub001/internal/logger"
	"github.com/dariast03/reparo-sys-sub001/internal/migrate"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.LoadDB(log)

	db := database.ConnectDBForMigration(&cfg.Config, log)
	defer database.CloseDB(db, log)

	ctx := context.Background()

	opts := migrate.DefaultMigrateOptions()

	if err := migrate.MigrateReparoDB(ctx, db, log, opts); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	log.Info("migration completed")
}
