package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dariast03/reparo-sys-sub001/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := logger.Init(os.Getenv("ENV") == "development"); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.Sync()
		os.Exit(1)
	}
}
