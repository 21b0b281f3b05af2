package utils

import (
	"fmt"
	"strings"
	"time"

	"rentlink-backend/internal/domain"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts RFC3339 timestamps or yyyy-mm-dd dates (UTC midnight).
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", domain.ErrInvalidInput)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidInput, s)
}

// ParseDateRange parses both bounds and requires start strictly before end.
func ParseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := ParseTimestamp(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseTimestamp(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startDate must be before endDate", domain.ErrInvalidInput)
	}
	return start, end, nil
}
