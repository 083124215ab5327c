package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mayan-101/torc/internal/broadcast"
	"github.com/Mayan-101/torc/internal/config"
	"github.com/Mayan-101/torc/internal/handler"
	liveHandler "github.com/Mayan-101/torc/internal/handler/live"
	questionHandler "github.com/Mayan-101/torc/internal/handler/question"
	sessionHandler "github.com/Mayan-101/torc/internal/handler/session"
	questionModel "github.com/Mayan-101/torc/internal/model/question"
	"github.com/Mayan-101/torc/internal/service/market"
	"github.com/Mayan-101/torc/internal/service/scoring"
	sessionService "github.com/Mayan-101/torc/internal/service/session"
	"github.com/Mayan-101/torc/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	sessionStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}
	defer sessionStore.Close()
	log.Printf("session store backend: %s", cfg.Store.Backend)

	gateway := broadcast.NewGateway()
	runner := market.NewRunner(sessionStore, gateway, cfg.Sim)
	defer runner.Close()

	engine := scoring.NewEngine(cfg.Scoring)
	sessionSvc := sessionService.NewService(sessionStore, runner, engine, cfg.Sim)
	questionStore := questionModel.NewMemoryStore(questionModel.Seed())

	router := handler.NewRouter(handler.Deps{
		Session:  sessionHandler.New(sessionSvc),
		Question: questionHandler.New(questionStore, cfg.Sim.PhaseDuration),
		Live:     liveHandler.New(sessionSvc, gateway),
	})

	startServer(ctx, cfg.Server, router)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.Backend == "sqlite" {
		return store.NewSQLiteStore(ctx, cfg.DSN)
	}
	return store.NewMemoryStore(), nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("TORC backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
