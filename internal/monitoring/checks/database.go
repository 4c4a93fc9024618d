package checks

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vwmedia/siteutil/internal/database"
	"github.com/vwmedia/siteutil/internal/monitoring"
	"github.com/vwmedia/siteutil/internal/settings"
)

const defaultDatabaseTimeout = 2 * time.Second

// Database pings the connection and then confirms the settings record can be
// read. A reachable database without the record reports degraded, since the
// mail hook then falls back to the relay.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	timeout = chooseTimeout(timeout, defaultDatabaseTimeout)

	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if db == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "database not configured"}
		}

		sqlDB, err := db.DB()
		if err != nil {
			return monitoring.ResultFromError(err, time.Since(start))
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := sqlDB.PingContext(probeCtx); err != nil {
			return monitoring.ResultFromError(err, time.Since(start))
		}

		_, err = database.GetOption(probeCtx, db, settings.OptionName)
		if errors.Is(err, database.ErrOptionNotFound) {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  "settings record missing",
				Duration: time.Since(start),
			}
		}
		return monitoring.ResultFromError(err, time.Since(start))
	})
}

func chooseTimeout(provided, fallback time.Duration) time.Duration {
	if provided <= 0 {
		return fallback
	}
	return provided
}
