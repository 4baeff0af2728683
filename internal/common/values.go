package common

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// DateTimeLayout is the canonical rendering of timestamps in CDM output.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateLayout is the canonical rendering of dates in CDM output.
const DateLayout = "2006-01-02"

// IsNull reports whether v is a null cell. NaN floats count as null.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	default:
		return false
	}
}

// Key returns the canonical string form of a cell value. It is used
// wherever values from different sources must compare equal, e.g. 101
// (int) and "101" (string from CSV) or 101.0 (float).
// The second return value is false for null cells.
func Key(v any) (string, bool) {
	if IsNull(v) {
		return "", false
	}

	return Format(v), true
}

// Format renders a non-null cell value as text. Null cells render as "".
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		if math.IsNaN(x) {
			return ""
		}

		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(DateTimeLayout)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(v)
	}
}
