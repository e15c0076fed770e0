package contract

import (
	"fmt"
	"strings"
	"time"
)

// RequestOverrides are the per-request settings accepted by the MCP tools and the
// HTTP API. Empty fields keep the value from the base configuration.
type RequestOverrides struct {
	Timezone  string
	Now       string
	WeekStart string
	Range     string
	Start     string
	End       string
}

// ApplyOverrides validates o and applies it to cfg, which should be a clone of the
// base configuration. The timezone is applied first so a bare --now date is read in it.
func ApplyOverrides(cfg *Config, o RequestOverrides) error {
	if tz := strings.TrimSpace(o.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", tz, err)
		}
		cfg.Location = loc
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	if o.Now != "" {
		now, err := ParseInstant(o.Now, time.Now(), cfg.Location)
		if err != nil {
			return fmt.Errorf("invalid now: %w", err)
		}
		cfg.FixedNow = now
	}

	if o.WeekStart != "" {
		ws, err := ParseWeekStart(o.WeekStart)
		if err != nil {
			return err
		}
		cfg.WeekStart = ws
	}

	if o.Range != "" || o.Start != "" || o.End != "" {
		r, err := ParseGridRangeFlags(o.Range, o.Start, o.End)
		if err != nil {
			return err
		}
		cfg.GridRange = r
	}
	return nil
}
