package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	Server   ServerConfig
	CORS     CORSConfig
	Dispatch DispatchConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type JWTConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// DispatchConfig holds the tunables of the ranking and dispatch logic.
type DispatchConfig struct {
	// Scoring weights, expected to sum to 1
	DistanceWeight       float64
	LoadWeight           float64
	SpecializationWeight float64

	// SearchRadiusKm bounds the candidate query around the patient
	SearchRadiusKm float64
	// MaxResults caps a ranking response
	MaxResults int
	// NotifyNearest is how many hospitals get a new-emergency notification
	NotifyNearest int
	// RenotifyAfter is how long an emergency may sit pending before the
	// background worker re-publishes it
	RenotifyAfter time.Duration
	// WorkerInterval is the background reconciliation tick
	WorkerInterval time.Duration
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "emergency_response"),
		},
		JWT: JWTConfig{
			AccessSecret:       getEnv("JWT_ACCESS_SECRET", "your-access-secret-key"),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", "your-refresh-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Dispatch: DispatchConfig{
			DistanceWeight:       parseFloat(getEnv("SCORE_WEIGHT_DISTANCE", "0.4"), 0.4),
			LoadWeight:           parseFloat(getEnv("SCORE_WEIGHT_LOAD", "0.3"), 0.3),
			SpecializationWeight: parseFloat(getEnv("SCORE_WEIGHT_SPECIALIZATION", "0.3"), 0.3),
			SearchRadiusKm:       parseFloat(getEnv("SEARCH_RADIUS_KM", "50"), 50),
			MaxResults:           parseInt(getEnv("RANKING_MAX_RESULTS", "50"), 50),
			NotifyNearest:        parseInt(getEnv("NOTIFY_NEAREST_HOSPITALS", "20"), 20),
			RenotifyAfter:        parseDuration(getEnv("RENOTIFY_AFTER", "5m"), 5*time.Minute),
			WorkerInterval:       parseDuration(getEnv("WORKER_INTERVAL", "10s"), 10*time.Second),
		},
	}

	validateWeights(&config.Dispatch)

	return config
}

// validateWeights resets the scoring weights to the defaults when the
// configured values do not sum to 1.
func validateWeights(d *DispatchConfig) {
	sum := d.DistanceWeight + d.LoadWeight + d.SpecializationWeight
	positive := d.DistanceWeight >= 0 && d.LoadWeight >= 0 && d.SpecializationWeight >= 0
	if positive && sum > 0.999 && sum < 1.001 {
		return
	}
	fmt.Printf("Warning: invalid scoring weights (sum %.3f), using defaults\n", sum)
	d.DistanceWeight = 0.4
	d.LoadWeight = 0.3
	d.SpecializationWeight = 0.3
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		fmt.Printf("Warning: Invalid duration format '%s', using default\n", s)
		return fallback
	}
	return duration
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fmt.Printf("Warning: Invalid number '%s', using default\n", s)
		return fallback
	}
	return v
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		fmt.Printf("Warning: Invalid integer '%s', using default\n", s)
		return fallback
	}
	return v
}

func splitCSV(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
