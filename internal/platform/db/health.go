package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// HealthStatus is the payload returned by the health endpoints.
type HealthStatus struct {
	Status        string     `json:"status"`
	Message       string     `json:"message"`
	Database      string     `json:"database"`
	Error         string     `json:"error,omitempty"`
	UptimeSeconds float64    `json:"uptime"`
	Environment   string     `json:"environment"`
	Timestamp     time.Time  `json:"timestamp"`
	Pool          *PoolStats `json:"pool,omitempty"`
}

// statusFor builds the health payload for a ping result. In production the
// underlying error text is not exposed.
func statusFor(pingErr error, env string, started time.Time, stats *PoolStats) *HealthStatus {
	hs := &HealthStatus{
		Status:        "OK",
		Message:       "Server berjalan dengan baik",
		Database:      "Connected",
		UptimeSeconds: time.Since(started).Seconds(),
		Environment:   env,
		Timestamp:     time.Now().UTC(),
		Pool:          stats,
	}
	if pingErr != nil {
		hs.Status = "ERROR"
		hs.Message = "Server mengalami gangguan"
		hs.Database = "Disconnected"
		if env == "production" {
			hs.Error = "Database connection failed"
		} else {
			hs.Error = pingErr.Error()
		}
		if stats != nil {
			stats.Healthy = false
		}
	}
	return hs
}

// HealthHandler returns a handler for the health check endpoints. It pings
// the database with a short timeout and reports 503 when the ping fails.
func HealthHandler(pool *pgxpool.Pool, env string, started time.Time) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		err := pool.Ping(ctx)
		hs := statusFor(err, env, started, GetPoolStats(pool))

		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, hs)
		}
		return c.JSON(http.StatusOK, hs)
	}
}
