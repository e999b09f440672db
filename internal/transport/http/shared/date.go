package shared

import "time"

const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar date at UTC
// midnight. An empty value yields the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		full, rfcErr := time.Parse(time.RFC3339, value)
		if rfcErr != nil {
			return time.Time{}, err
		}
		parsed = full
	}
	y, m, d := parsed.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
