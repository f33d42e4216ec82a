package store

import "time"

// rfc3339Micro is the canonical storage layout. The fixed-width fraction
// keeps lexicographic TEXT ordering consistent with time ordering, and
// SQLite's date() understands it.
const rfc3339Micro = "2006-01-02T15:04:05.000000Z07:00"

// dateLayout is the calendar-day form accepted in queries and payloads.
const dateLayout = "2006-01-02"

func timeToString(t time.Time) string {
	return t.UTC().Format(rfc3339Micro)
}

func nullableTimeToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := timeToString(*t)
	return &s
}

func parseStoredTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseStoredNullableTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t := parseStoredTime(*s)
	return &t
}

// parseDate accepts RFC3339 timestamps or bare YYYY-MM-DD dates.
// Malformed input is a validation failure, never a 500.
func parseDate(path, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, validationf(path, "invalid date: "+value)
}

// ParseDate is the exported form of parseDate, used for HTTP query
// parameters.
func ParseDate(path, value string) (time.Time, error) {
	return parseDate(path, value)
}

func parseNullableDate(path string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDate(path, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
