package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobarin/clipforge/internal/aiproc"
	"github.com/bobarin/clipforge/internal/api"
	"github.com/bobarin/clipforge/internal/config"
	"github.com/bobarin/clipforge/internal/engine"
	"github.com/bobarin/clipforge/internal/queue"
)

func main() {
	log.Println("Starting ClipForge engine...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ai *aiproc.Processor
	if cfg.AI.Enabled {
		ai, err = aiproc.New(ctx, cfg.AI)
		if err != nil {
			log.Fatalf("Failed to initialize AI co-processor: %v", err)
		}
		log.Printf("AI co-processor enabled (model=%s, vision=%s)", cfg.AI.Model, cfg.AI.VisionModel)
	} else {
		ai, _ = aiproc.New(ctx, cfg.AI)
		log.Println("AI co-processor disabled — analyzers use deterministic heuristics only")
	}

	eng := engine.New(cfg, q, ai)
	eng.Start(ctx)
	log.Println("Engine worker and retention sweep started")

	handler := api.NewHandler(eng, "/v1/downloads")
	router := api.NewRouter(handler, api.RouterConfig{
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Engine exited")
}
