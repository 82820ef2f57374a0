package services

import (
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

// maxTodaySkewDays bounds a caller's local date against the server's UTC
// date. Real offsets run from UTC-12 to UTC+14.
const maxTodaySkewDays = 1

// resolveToday returns the caller's date, or the server's UTC date when the
// caller sends none.
func resolveToday(now time.Time, today domain.CalendarKey) (domain.CalendarKey, error) {
	serverToday := domain.KeyOf(now.UTC())
	if today.IsZero() {
		return serverToday, nil
	}

	parsed, err := domain.ParseCalendarKey(string(today))
	if err != nil {
		return "", err
	}

	skew := int(parsed.Time().Sub(serverToday.Time()) / (24 * time.Hour))
	if skew > maxTodaySkewDays || skew < -maxTodaySkewDays {
		return "", fmt.Errorf("%w: %s (server date %s)", domain.ErrTodayOutOfRange, parsed, serverToday)
	}
	return parsed, nil
}

// resolveDate parses an anchor date that may lie anywhere in history.
func resolveDate(now time.Time, date domain.CalendarKey) (domain.CalendarKey, error) {
	if date.IsZero() {
		return domain.KeyOf(now.UTC()), nil
	}
	return domain.ParseCalendarKey(string(date))
}
