package app

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"schoolgear/auth"
	"schoolgear/db"
	"schoolgear/session"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Ctx = gin.Context
type H = gin.H

// App aggregates the process-wide dependencies.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Log    zerolog.Logger
	Config Config

	Tokens *session.TokenStore
	Issuer *auth.TokenIssuer
}

// Config is read from environment variables once at startup.
type Config struct {
	RedisAddr      string
	RedisPwd       string
	WebOrigin      string
	JWTSecret      string
	LogLevel       string
	RateLimitRPS   float64
	RateLimitBurst int
}

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
}

func MustNew() *App {
	cfg := loadConfig()

	logger := newLogger(cfg.LogLevel)

	dbConn := db.ConnectDB()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router: r,
		DB:     dbConn,
		RDB:    rdb,
		Log:    logger,
		Config: cfg,
		Tokens: session.NewTokenStore(rdb),
		Issuer: auth.NewTokenIssuer(cfg.JWTSecret),
	}
}

func (a *App) Close() { _ = a.RDB.Close() }

func newLogger(level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && level != "" {
		lvl = parsed
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Str("app", "schoolgear").Logger()
}

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	rps := 10.0
	if v, err := strconv.ParseFloat(get("RATE_LIMIT_RPS", "10"), 64); err == nil && v > 0 {
		rps = v
	}
	burst := 20
	if v, err := strconv.Atoi(get("RATE_LIMIT_BURST", "20")); err == nil && v > 0 {
		burst = v
	}

	return Config{
		RedisAddr:      get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:       os.Getenv("REDIS_PASSWORD"),
		WebOrigin:      get("WEB_ORIGIN", "http://localhost:3000"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		LogLevel:       get("LOG_LEVEL", "info"),
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}
}
