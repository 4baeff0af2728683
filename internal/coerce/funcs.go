package coerce

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"cdm-mapper/internal/common"
)

// Func coerces a single cell.
type Func func(v any) Result

// dateLayouts are tried in order when parsing text as a timestamp.
// Slash dates are month-first.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2 January 2006",
	"Jan 2, 2006",
	"20060102",
}

// Integer parses a cell into an int64.
func Integer(v any) Result {
	if common.IsNull(v) {
		return null(ReasonMissing)
	}

	switch x := v.(type) {
	case int:
		return ok(int64(x))
	case int64:
		return ok(x)
	case int32:
		return ok(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return null(ReasonOutOfRange)
		}

		return ok(int64(x))
	case bool:
		if x {
			return ok(int64(1))
		}

		return ok(int64(0))
	case float64:
		return integerFromFloat(x)
	case float32:
		return integerFromFloat(float64(x))
	case string:
		return integerFromString(x)
	default:
		return null(ReasonUnparsable)
	}
}

func integerFromString(s string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return null(ReasonMissing)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return ok(n)
	}

	if errors.Is(err, strconv.ErrRange) {
		return null(ReasonOutOfRange)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return null(ReasonOutOfRange)
		}

		return null(ReasonUnparsable)
	}

	return integerFromFloat(f)
}

func integerFromFloat(f float64) Result {
	switch {
	case math.IsNaN(f):
		return null(ReasonMissing)
	case math.IsInf(f, 0):
		return null(ReasonOutOfRange)
	case f != math.Trunc(f):
		return null(ReasonUnparsable)
	case f < math.MinInt64 || f >= math.MaxInt64:
		return null(ReasonOutOfRange)
	}

	return ok(int64(f))
}

// Float parses a cell into a float64.
func Float(v any) Result {
	if common.IsNull(v) {
		return null(ReasonMissing)
	}

	switch x := v.(type) {
	case float64:
		return ok(x)
	case float32:
		return ok(float64(x))
	case int:
		return ok(float64(x))
	case int64:
		return ok(float64(x))
	case int32:
		return ok(float64(x))
	case bool:
		if x {
			return ok(1.0)
		}

		return ok(0.0)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return null(ReasonMissing)
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return null(ReasonOutOfRange)
			}

			return null(ReasonUnparsable)
		}

		if math.IsNaN(f) {
			return null(ReasonMissing)
		}

		return ok(f)
	default:
		return null(ReasonUnparsable)
	}
}

// String returns a text coercion truncating to n characters; n <= 0 keeps
// the full text. Null becomes the empty string.
func String(n int) Func {
	return func(v any) Result {
		if common.IsNull(v) {
			return Result{Value: "", Reason: ReasonMissing}
		}

		s := common.Format(v)
		if n > 0 && utf8.RuneCountInString(s) > n {
			s = string([]rune(s)[:n])
		}

		return ok(s)
	}
}

// DateTime parses a cell into a timestamp rendered as YYYY-MM-DD HH:MM:SS.
func DateTime(v any) Result {
	return parseTime(v, common.DateTimeLayout)
}

// Date parses a cell into a date rendered as YYYY-MM-DD.
func Date(v any) Result {
	return parseTime(v, common.DateLayout)
}

// ParseTime parses a cell into a time.Time using the accepted layouts.
func ParseTime(v any) (time.Time, NullReason) {
	if common.IsNull(v) {
		return time.Time{}, ReasonMissing
	}

	if t, isTime := v.(time.Time); isTime {
		return t, ReasonNone
	}

	s := strings.TrimSpace(common.Format(v))
	if s == "" {
		return time.Time{}, ReasonMissing
	}

	// A layout that matched the shape but not the calendar (month 13,
	// February 30) makes the value out of range rather than unparsable,
	// unless a later layout accepts it.
	reason := ReasonUnparsable

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, ReasonNone
		}

		var perr *time.ParseError
		if errors.As(err, &perr) && strings.Contains(perr.Message, "out of range") {
			reason = ReasonOutOfRange
		}
	}

	return time.Time{}, reason
}

func parseTime(v any, layout string) Result {
	t, reason := ParseTime(v)
	if reason != ReasonNone {
		return null(reason)
	}

	return ok(t.Format(layout))
}
