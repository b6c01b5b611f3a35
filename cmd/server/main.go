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

	"sgbridge/internal/app"
	"sgbridge/internal/bot"
	"sgbridge/internal/config"
	"sgbridge/internal/ports/httpapi"
	"sgbridge/internal/store"

	"github.com/joho/godotenv"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	configPath := getenv("BRIDGE_CONFIG", "data/game_config.json")
	if err := config.LoadGameConfig(configPath); err != nil {
		log.Printf("running with default config: %v", err)
	}
	if path := config.GetGameConfig(); path != nil && path.BotIdentitiesPath != "" {
		if err := bot.LoadIdentities(path.BotIdentitiesPath); err != nil {
			log.Printf("running with default bot roster: %v", err)
		}
	}

	svc := app.NewService(nil, config.GetMinHandPoints())
	server := httpapi.NewServer(svc, store.New())

	addr := getenv("BRIDGE_LISTEN_ADDR", config.GetHTTPListenAddr())
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("server stopped")
}
