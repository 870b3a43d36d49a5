package env

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
)

var Env map[string]string

// GetEnv returns a config value, preferring the loaded .env file over the
// process environment; def when neither carries the key.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt returns a positive integer config value, def when the key is
// unset, non-numeric, or not positive. Used for worker counts and retry
// budgets, which are never zero.
func GetEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(GetEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return def
}

// SetupEnvFile loads the .env file if one exists. Container deployments carry
// their config in the process environment and ship no file; that is not an
// error.
func SetupEnvFile() {
	envFiles := []string{
		".env",          // current directory
		"../../.env",    // from cmd/masoori or cmd/migrate to the repo root
		"../../../.env", // fallback for deeper nesting
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			return
		}
	}

	log.Info("No .env file found, using process environment only")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
