// Package timeutil resolves the timestamp shapes found in Firestore documents and their JSON exports.
package timeutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day layout used in slugs and sitemaps.
const DateLayout = "2006-01-02"

var (
	ErrMissing     = errors.New("timestamp is missing")
	ErrUnsupported = errors.New("unsupported timestamp type")
	ErrUnparseable = errors.New("timestamp is not parseable")
)

// Timestamp mirrors the {seconds, nanoseconds} object Firestore clients serialize.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// Time converts the timestamp to UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, t.Nanoseconds).UTC()
}

type dateConverter interface {
	ToDate() time.Time
}

type protoTimestamp interface {
	AsTime() time.Time
}

var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

// Parse resolves v into a UTC time. Supported inputs: string, time.Time, *time.Time, Timestamp,
// *Timestamp, map[string]any carrying seconds/_seconds, json.Number and values exposing
// ToDate() or AsTime().
func Parse(v any) (time.Time, error) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, ErrMissing
	case string:
		return parseString(val)
	case time.Time:
		return nonZero(val)
	case *time.Time:
		if val == nil {
			return time.Time{}, ErrMissing
		}
		return nonZero(*val)
	case Timestamp:
		return val.Time(), nil
	case *Timestamp:
		if val == nil {
			return time.Time{}, ErrMissing
		}
		return val.Time(), nil
	case map[string]any:
		return parseSecondsMap(val)
	case dateConverter:
		return nonZero(val.ToDate())
	case protoTimestamp:
		return nonZero(val.AsTime())
	default:
		return time.Time{}, fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func parseString(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrMissing
	}
	for _, layout := range stringLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, raw)
}

func parseSecondsMap(m map[string]any) (time.Time, error) {
	secs, ok := numberField(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, fmt.Errorf("%w: object without seconds", ErrUnsupported)
	}
	nanos, _ := numberField(m, "nanoseconds", "_nanoseconds")
	return time.Unix(secs, nanos).UTC(), nil
}

func numberField(m map[string]any, keys ...string) (int64, bool) {
	for _, key := range keys {
		switch n := m[key].(type) {
		case int64:
			return n, true
		case int:
			return int64(n), true
		case float64:
			return int64(n), true
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

func nonZero(t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, ErrMissing
	}
	return t.UTC(), nil
}
