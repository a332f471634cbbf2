package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trackiq_agent/internal/devserver"
	"trackiq_agent/internal/logger"
)

func main() {
	logger.Setup(envOr("LOG_FILE", "./logs/devserver.log"), envOr("LOG_LEVEL", "debug"))

	db, err := gorm.Open(sqlite.Open(envOr("DEV_DB_PATH", "./devserver.db")), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open devserver database: %v", err)
	}

	ttl, err := time.ParseDuration(envOr("TOKEN_TTL", "72h"))
	if err != nil {
		log.Fatalf("invalid TOKEN_TTL: %v", err)
	}

	srv, err := devserver.New(db, ttl)
	if err != nil {
		log.Fatalf("failed to init devserver: %v", err)
	}

	if err := srv.Seed(
		envOr("DEV_USER_NAME", "Dev User"),
		envOr("DEV_USER_EMAIL", "dev@example.com"),
		envOr("DEV_USER_PASSWORD", "password"),
	); err != nil {
		log.Fatalf("failed to seed devserver account: %v", err)
	}

	addr := envOr("DEV_LISTEN_ADDR", "127.0.0.1:9090")
	log.Printf("🚀 Devserver running at %s", addr)
	log.Fatal(http.ListenAndServe(addr, srv.Router()))
}

func envOr(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}
