package timeutil

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// 1e11 seconds is in the year 5138; 1e11 milliseconds is March 1973.
const epochMillisThreshold = 1e11

// legacyLayouts are the string shapes dates have been stored in over time.
var legacyLayouts = []string{
	time.RFC3339Nano,
	DateLayout,
	DateTimeLayout,
	"02-Jan-2006",
	"2006/01/02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
}

// AsTime converts a stored date of unknown shape into a time. It accepts
// time values, epoch numbers (seconds or milliseconds, told apart by
// magnitude), the legacy string layouts, and {"$date": ...} wrappers.
// The second result is false when the value cannot be read as a date.
func AsTime(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return val.In(Location), true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return AsTime(*val)
	case float64:
		return fromEpoch(val)
	case float32:
		return fromEpoch(float64(val))
	case int:
		return fromEpoch(float64(val))
	case int64:
		return fromEpoch(float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(f)
	case string:
		return parseString(val)
	case map[string]interface{}:
		if inner, ok := val["$date"]; ok {
			if m, ok := inner.(map[string]interface{}); ok {
				if n, ok := m["$numberLong"]; ok {
					if s, ok := n.(string); ok {
						return AsTime(json.Number(s))
					}
				}
			}
			return AsTime(inner)
		}
	}
	return time.Time{}, false
}

func fromEpoch(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return time.Time{}, false
	}
	if f > epochMillisThreshold {
		ms := int64(f)
		return time.UnixMilli(ms).In(Location), true
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).In(Location), true
}

func parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range legacyLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, Location)
		}
		if err == nil {
			return t.In(Location), true
		}
	}
	return time.Time{}, false
}

// ParseDate parses a 2006-01-02 request parameter.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), Location)
}
