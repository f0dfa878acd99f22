package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dariast03/reparo-sys-sub001/config"
	"github.com/dariast03/reparo-sys-sub001/internal/cache"
	"github.com/dariast03/reparo-sys-sub001/internal/database"
	"github.com/dariast03/reparo-sys-sub001/internal/logger"
	"github.com/dariast03/reparo-sys-sub001/internal/producer"
	"github.com/dariast03/reparo-sys-sub001/internal/reconcile"
	"github.com/dariast03/reparo-sys-sub001/internal/repository"
	"github.com/dariast03/reparo-sys-sub001/internal/router"
	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// @Title Reparo workshop API
// @Version 1.0
// @Description Repair orders, parts consumption, stock ledger and commerce postings.
// @BasePath /
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	var events service.Notifier
	if cfg.Kafka.Enabled() {
		p := producer.NewEventProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		defer p.Close()
		events = p
		log.Info("kafka events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.EventsTopic))
	}

	var idem service.IdempotencyStore
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		defer rc.Close()
		idem = rc
	}

	repos := repository.New(db)
	ledger := service.NewLedger(log, cfg.Ledger.MaxRetries)
	stock := service.NewStockService(repos, ledger, log)
	orders := service.NewOrderService(repos, events, log, cfg.Ledger.MaxRetries)
	parts := service.NewPartsService(repos, ledger, events, log)
	commerce := service.NewCommerceService(repos, ledger, idem, cfg.Redis.IdempotencyTTL, events, log)

	rec := reconcile.NewReconcileService(repos, stock, orders, log)
	sched := reconcile.NewScheduler(rec, cfg.Ledger.ReconcileSchedule, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(ctx); err != nil {
		log.Fatal("failed to start reconcile scheduler", zap.Error(err))
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.HealthPort)
	if err != nil {
		log.Fatal("failed to listen", zap.String("addr", cfg.HealthPort), zap.Error(err))
	}
	go func() {
		log.Info("gRPC health server started", zap.String("addr", cfg.HealthPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr: cfg.Port,
		Handler: router.Router(router.Services{
			Stock:    stock,
			Orders:   orders,
			Parts:    parts,
			Commerce: commerce,
		}, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("HTTP server started", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to run http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down reparo service...")

	healthSrv.Shutdown()
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()

	log.Info("reparo service stopped gracefully")
}
