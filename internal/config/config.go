package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI  string
	DBName    string
	JWTSecret string

	// RedisAddr is optional; empty disables purchase idempotency dedup.
	RedisAddr     string
	RedisPassword string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	Port string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:      getEnvOrDefault("MONGO_URI", ""),
		DBName:        getEnvOrDefault("DB_NAME", "fanpuri"),
		JWTSecret:     getEnvOrDefault("JWT_SECRET", ""),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		SMTPHost:      getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:      getIntEnv("SMTP_PORT", 587),
		SMTPUser:      getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:      getEnvOrDefault("SMTP_PASS", ""),
		MailFrom:      getEnvOrDefault("MAIL_FROM", "Fanpuri <noreply@fanpuri.com>"),
		Port:          getEnvOrDefault("PORT", "8080"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
