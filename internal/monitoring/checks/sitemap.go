package checks

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/vwmedia/siteutil/internal/monitoring"
)

const defaultSitemapMaxAge = 48 * time.Hour

// Sitemap reports degraded when the sitemap at path is missing or older than
// maxAge, and down when it cannot be stat'ed at all.
func Sitemap(path string, maxAge time.Duration, now func() time.Time) monitoring.Check {
	maxAge = chooseTimeout(maxAge, defaultSitemapMaxAge)
	if now == nil {
		now = time.Now
	}

	return monitoring.NewCheck("sitemap", func(context.Context) monitoring.ProbeResult {
		info, err := os.Stat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "sitemap not generated yet"}
		case err != nil:
			return monitoring.ResultFromError(err, 0)
		}

		if age := now().Sub(info.ModTime()); age > maxAge {
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: "stale sitemap written " + info.ModTime().UTC().Format(time.RFC3339),
			}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	})
}
