package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("should fall back to defaults", func(t *testing.T) {
		cfg := LoadConfig()

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "emergency_response", cfg.Database.Database)
		assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiry)

		d := cfg.Dispatch
		assert.InDelta(t, 0.4, d.DistanceWeight, 1e-9)
		assert.InDelta(t, 0.3, d.LoadWeight, 1e-9)
		assert.InDelta(t, 0.3, d.SpecializationWeight, 1e-9)
		assert.InDelta(t, 50, d.SearchRadiusKm, 1e-9)
		assert.Equal(t, 50, d.MaxResults)
		assert.Equal(t, 20, d.NotifyNearest)
		assert.Equal(t, 5*time.Minute, d.RenotifyAfter)
		assert.Equal(t, 10*time.Second, d.WorkerInterval)
	})

	t.Run("should read tunables from the environment", func(t *testing.T) {
		t.Setenv("SCORE_WEIGHT_DISTANCE", "0.5")
		t.Setenv("SCORE_WEIGHT_LOAD", "0.25")
		t.Setenv("SCORE_WEIGHT_SPECIALIZATION", "0.25")
		t.Setenv("SEARCH_RADIUS_KM", "25")
		t.Setenv("NOTIFY_NEAREST_HOSPITALS", "5")
		t.Setenv("RENOTIFY_AFTER", "90s")

		d := LoadConfig().Dispatch
		assert.InDelta(t, 0.5, d.DistanceWeight, 1e-9)
		assert.InDelta(t, 0.25, d.LoadWeight, 1e-9)
		assert.InDelta(t, 0.25, d.SpecializationWeight, 1e-9)
		assert.InDelta(t, 25, d.SearchRadiusKm, 1e-9)
		assert.Equal(t, 5, d.NotifyNearest)
		assert.Equal(t, 90*time.Second, d.RenotifyAfter)
	})

	t.Run("should keep defaults on malformed values", func(t *testing.T) {
		t.Setenv("SEARCH_RADIUS_KM", "fifty")
		t.Setenv("WORKER_INTERVAL", "soon")
		t.Setenv("RANKING_MAX_RESULTS", "many")

		d := LoadConfig().Dispatch
		assert.InDelta(t, 50, d.SearchRadiusKm, 1e-9)
		assert.Equal(t, 10*time.Second, d.WorkerInterval)
		assert.Equal(t, 50, d.MaxResults)
	})

	t.Run("should reset scoring weights that do not sum to 1", func(t *testing.T) {
		t.Setenv("SCORE_WEIGHT_DISTANCE", "0.8")
		t.Setenv("SCORE_WEIGHT_LOAD", "0.5")
		t.Setenv("SCORE_WEIGHT_SPECIALIZATION", "0.2")

		d := LoadConfig().Dispatch
		assert.InDelta(t, 0.4, d.DistanceWeight, 1e-9)
		assert.InDelta(t, 0.3, d.LoadWeight, 1e-9)
		assert.InDelta(t, 0.3, d.SpecializationWeight, 1e-9)
	})

	t.Run("should reset negative scoring weights", func(t *testing.T) {
		t.Setenv("SCORE_WEIGHT_DISTANCE", "1.4")
		t.Setenv("SCORE_WEIGHT_LOAD", "-0.2")
		t.Setenv("SCORE_WEIGHT_SPECIALIZATION", "-0.2")

		d := LoadConfig().Dispatch
		assert.InDelta(t, 0.4, d.DistanceWeight, 1e-9)
		assert.InDelta(t, 0.3, d.LoadWeight, 1e-9)
	})

	t.Run("should split allowed origins on commas", func(t *testing.T) {
		t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://ops.example.com")

		cfg := LoadConfig()
		assert.Equal(t, []string{
			"https://app.example.com",
			"https://ops.example.com",
		}, cfg.CORS.AllowedOrigins)
	})
}
