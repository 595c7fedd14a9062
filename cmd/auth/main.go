package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/rhythmix/backend/internal/auth/http"
	"github.com/AlibekovAA/rhythmix/backend/internal/auth/service"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/bootstrap"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/clock"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/rhythmix/backend/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/rhythmix/backend/internal/common/http"
	srv "github.com/AlibekovAA/rhythmix/backend/internal/common/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewAuthApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start auth service: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	log := app.Log
	cfg := app.Config

	registration := service.NewRegistrationService(
		service.RegistrationServiceDeps{
			Repo:        app.UserRepo,
			Hasher:      commoncrypto.NewBcryptHasher(cfg.BcryptCost),
			IDGenerator: commoncrypto.NewUUIDGenerator(),
			Clock:       clock.NewRealClock(),
			Log:         log,
		},
		service.RegistrationServiceConfig{
			HashConcurrency:         cfg.HashConcurrency,
			CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
			CircuitBreakerTimeout:   cfg.CircuitBreakerTimeout,
			CircuitBreakerReset:     cfg.CircuitBreakerReset,
		},
	)

	mux := http.NewServeMux()
	mux.Handle("/", authhttp.NewHandler(registration, cfg.RequestTimeout, log))
	mux.Handle(constants.RouteMetrics, promhttp.Handler())

	server := srv.New(srv.DefaultConfig(cfg.HTTPPort), commonhttp.BuildBaseHandler(log, mux))

	hooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("auth service: restoring default signal handling")
			stop()
			return nil
		},
	}

	if err := srv.Run(ctx, server, log, "auth", hooks); err != nil {
		log.Errorf("auth service exited with error: %v", err)
		app.Close()
		os.Exit(1)
	}
}
