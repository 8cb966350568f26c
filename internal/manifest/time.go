package manifest

import (
	"fmt"
	"strconv"
	"time"
)

// SyncTime is a timestamp serialized as ISO-8601 with fractional seconds.
// Parsing tolerates both the fractional and the plain-seconds encodings, so
// manifests written by older builds still load.
type SyncTime time.Time

// timeFormats lists accepted encodings, primary first.
var timeFormats = []string{time.RFC3339Nano, time.RFC3339}

// Time returns the underlying time value.
func (t SyncTime) Time() time.Time {
	return time.Time(t)
}

// MarshalJSON encodes the timestamp in the primary format.
func (t SyncTime) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, time.Time(t).Format(time.RFC3339Nano)), nil
}

// UnmarshalJSON decodes the timestamp, trying each accepted encoding in turn.
func (t *SyncTime) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}

	var lastErr error
	for _, format := range timeFormats {
		parsed, err := time.Parse(format, s)
		if err == nil {
			*t = SyncTime(parsed)
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("invalid timestamp %q: %w", s, lastErr)
}
