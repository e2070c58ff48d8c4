package clock

import "time"

// Now returns the current UTC time formatted for API responses.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
