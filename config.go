package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the app needs to run. Values come from the
// environment (a .env file is loaded when present); in development every
// field falls back to a usable default.
type Config struct {
	Port         int
	Env          string
	Pepper       string
	JWTSecret    string
	MaxBodyBytes int64
	Database     PostgresConfig
	SMTP         SMTPConfig
}

// IsProd reports whether the app runs in production mode.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// ConnectionInfo assembles the postgres DSN.
func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
}

// LoadConfig reads the configuration from the environment. With prod set,
// the secrets must be provided explicitly and the app refuses to start on
// baked-in development defaults.
func LoadConfig(prod bool) Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	c := Config{
		Port:         envInt("PORT", 5001),
		Env:          envString("APP_ENV", "dev"),
		Pepper:       envString("PASSWORD_PEPPER", "secret-random-string"),
		JWTSecret:    envString("JWT_SECRET", "secret-jwt-key"),
		MaxBodyBytes: int64(envInt("MAX_BODY_BYTES", 4<<20+512<<10)),
		Database: PostgresConfig{
			Host:     envString("DB_HOST", "localhost"),
			Port:     envInt("DB_PORT", 5432),
			User:     envString("DB_USER", "postgres"),
			Password: envString("DB_PASSWORD", ""),
			Name:     envString("DB_NAME", "gamerlog"),
		},
		SMTP: SMTPConfig{
			Host: envString("SMTP_HOST", "localhost"),
			Port: envInt("SMTP_PORT", 587),
			User: envString("SMTP_USER", ""),
			Pass: envString("SMTP_PASS", ""),
		},
	}
	if prod {
		c.Env = "prod"
		if os.Getenv("JWT_SECRET") == "" || os.Getenv("PASSWORD_PEPPER") == "" {
			panic("JWT_SECRET and PASSWORD_PEPPER must be set in production")
		}
	}
	return c
}

// envString reads a string variable with a fallback.
func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads an integer variable with a fallback.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid value for %s, using default %d", key, fallback)
		return fallback
	}
	return n
}
