package matcher

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TimurManjosov/gwselect/internal/reqctx"
)

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday, "sun": time.Sunday,
}

// TimeWindow is a recurring time-of-day window in a fixed IANA
// timezone, optionally restricted to a subset of weekdays, with
// midnight-crossing support.
type TimeWindow struct {
	TZ         string
	StartStr   string
	EndStr     string
	Days       []string // original declared days, preserved for ToJSON
	loc        *time.Location
	start      time.Duration // offset since local midnight
	end        time.Duration
	dayAllowed map[time.Weekday]struct{}
}

// NewTimeWindow validates and precompiles tz/start/end/days at
// ruleset-compile time.
func NewTimeWindow(tz, start, end string, days []string) (*TimeWindow, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	startDur, err := parseClock(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start %q: %w", start, err)
	}
	endDur, err := parseClock(end)
	if err != nil {
		return nil, fmt.Errorf("invalid end %q: %w", end, err)
	}

	var allowed map[time.Weekday]struct{}
	if len(days) > 0 {
		allowed = make(map[time.Weekday]struct{}, len(days))
		for _, d := range days {
			wd, ok := weekdayNames[strings.ToLower(d)]
			if !ok {
				return nil, fmt.Errorf("invalid day of week %q", d)
			}
			allowed[wd] = struct{}{}
		}
	}

	return &TimeWindow{
		TZ: tz, StartStr: start, EndStr: end, Days: days,
		loc: loc, start: startDur, end: endDur, dayAllowed: allowed,
	}, nil
}

// parseClock parses HH:MM[:SS] into a duration since midnight.
func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("expected HH:MM[:SS]")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute")
	}
	sec := 0
	if len(parts) == 3 {
		sec, err = strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid second")
		}
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}

func (m *TimeWindow) Evaluate(ctx reqctx.Context, fallbackNow time.Time) bool {
	instant := ctx.Now(fallbackNow)
	// Naive (no-zone) timestamps are treated as UTC.
	if instant.Location() == time.Local {
		instant = time.Date(instant.Year(), instant.Month(), instant.Day(),
			instant.Hour(), instant.Minute(), instant.Second(), instant.Nanosecond(), time.UTC)
	}
	local := instant.In(m.loc)

	if m.dayAllowed != nil {
		if _, ok := m.dayAllowed[local.Weekday()]; !ok {
			return false
		}
	}

	tod := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second

	if m.start <= m.end {
		return tod >= m.start && tod <= m.end
	}
	// Crosses midnight: match if t >= start OR t <= end.
	return tod >= m.start || tod <= m.end
}

func (m *TimeWindow) ToJSON() map[string]any {
	out := map[string]any{
		"type":  "TIME_WINDOW",
		"tz":    m.TZ,
		"start": m.StartStr,
		"end":   m.EndStr,
	}
	if len(m.Days) > 0 {
		out["days_of_week"] = m.Days
	}
	return out
}
