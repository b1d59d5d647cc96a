package xcresults

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// dateLayout is what xcresulttool emits, e.g. 2024-03-01T10:15:30.123+0100.
const dateLayout = "2006-01-02T15:04:05.000Z0700"

// ParseDate converts an xcresult timestamp to epoch milliseconds. Unparseable input yields nil.
func ParseDate(raw string) *int64 {
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		// Only date-time shaped values reach the lenient parser: bare years or epoch numbers are not timestamps.
		if !strings.Contains(raw, "-") || !strings.Contains(raw, ":") {
			return nil
		}

		parsed, err = dateparse.ParseAny(raw)
		if err != nil {
			return nil
		}
	}

	millis := parsed.UnixMilli()

	return &millis
}
