package config

import (
	"os"

	"github.com/joho/godotenv"
)

func Load() App {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	cfg := App{
		Port:      getenv("APP_PORT", "8080"),
		JWTSecret: getenv("JWT_SECRET", "local_dev_secret"),
		DataDir:   getenv("DATA_DIR", "data"),
		SeedBooks: os.Getenv("SEED_BOOKS") == "true",
		Env:       getenv("APP_ENV", "dev"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
