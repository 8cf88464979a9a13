package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"parking-gate-service/internal/config"
	"parking-gate-service/internal/db"
	gatehttp "parking-gate-service/internal/http"
	"parking-gate-service/internal/repository"
	"parking-gate-service/internal/service"
)

func main() {
	configPath := flag.String("config", os.Getenv("GATE_CONFIG"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := newLogger(cfg.Log)

	store, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}

	if cfg.Database.SeedDemo {
		seedCfg := db.SeedConfig{
			Count:           cfg.Database.SeedCount,
			SeatFeePerTable: cfg.Parking.SeatFeePerTable,
			DepositPerTable: cfg.Parking.DepositPerTable,
		}
		if err := db.SeedDemoRoster(context.Background(), store, seedCfg); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo roster")
		}
		log.Info().Int("count", cfg.Database.SeedCount).Msg("seeded demo roster")
	}

	admissionCfg := service.AdmissionConfig{
		FreeParkingRatio: cfg.Parking.FreeParkingRatio,
		Fee:              cfg.Parking.Fee,
		SeatFeePerTable:  cfg.Parking.SeatFeePerTable,
		DepositPerTable:  cfg.Parking.DepositPerTable,
	}
	admissions := service.NewAdmissionService(store, admissionCfg, log)
	stats := service.NewStatsService(store, store, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	handler := gatehttp.NewHandler(admissions, stats, cfg, log)
	handler.Register(r, gatehttp.OperatorAuth(cfg.Auth.TokenSecret))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("driver", cfg.Database.Driver).
			Msg("parking gate service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

func openStore(cfg *config.Config, log zerolog.Logger) (repository.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		gdb, err := db.Connect(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("connected to postgres")
		return repository.NewGateRepository(gdb), nil
	default:
		log.Warn().Msg("using transient in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil
	}
}
