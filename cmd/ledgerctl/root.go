package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dariast03/reparo-sys-sub001/config"
	"github.com/dariast03/reparo-sys-sub001/internal/database"
	"github.com/dariast03/reparo-sys-sub001/internal/logger"
	"github.com/dariast03/reparo-sys-sub001/internal/reconcile"
	"github.com/dariast03/reparo-sys-sub001/internal/repository"
	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Inspect and verify the workshop stock ledger and order histories",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// app holds the read-only services the commands need.
type app struct {
	db        *gorm.DB
	stock     service.StockService
	orders    service.OrderService
	reconcile *reconcile.ReconcileService
	log       *zap.Logger
}

func newApp() *app {
	log := logger.L()
	cfg := config.LoadDB(log)
	db := database.ConnectDB(&cfg.Config, log)

	repos := repository.New(db)
	ledger := service.NewLedger(log, service.DefaultMaxRetries)
	stock := service.NewStockService(repos, ledger, log)
	orders := service.NewOrderService(repos, nil, log, service.DefaultMaxRetries)

	return &app{
		db:        db,
		stock:     stock,
		orders:    orders,
		reconcile: reconcile.NewReconcileService(repos, stock, orders, log),
		log:       log,
	}
}

func (a *app) close() {
	database.CloseDB(a.db, a.log)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
