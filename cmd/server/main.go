// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/seatzero/seatzero/internal/auth"
	"github.com/seatzero/seatzero/internal/cache"
	"github.com/seatzero/seatzero/internal/config"
	"github.com/seatzero/seatzero/internal/database"
	"github.com/seatzero/seatzero/internal/handlers"
	"github.com/seatzero/seatzero/internal/middleware"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	auth.Init()

	pool, err := database.Connect(context.Background())
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	rdb, err := cache.Connect(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	srv := handlers.NewRealtimeServer(cache.NewRuntimeStore(rdb), database.NewMetadata(pool), logger)
	srv.Lobby.CountdownSeconds = cfg.CountdownSeconds
	srv.Lobby.TickInterval = cfg.TickInterval

	// Game engine factories register here, e.g.:
	//   srv.Engines.Register(wordduel.GameTypeID, wordduel.New)

	r := chi.NewRouter()
	r.Use(middleware.LogMiddleware(logger))
	r.Get("/health", handlers.HealthHandler)
	r.Get("/rooms/ws/{lobbyID}", handlers.RoomWSHandler(logger, srv))
	r.Get("/lobbies/ws", handlers.ListWSHandler(logger, srv))

	logger.Infof("Running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
