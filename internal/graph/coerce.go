package graph

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/octoharvest/octoharvest/internal/errors"
)

// Sentinel defaults returned when coercion fails: callers always have a
// safe value to fall back on, so a coercion failure is never fatal. The
// CoercionError built on failure is discarded: nothing is logged or returned.
const (
	SentinelString = "-"
	SentinelInt    = -1
	SentinelFloat  = -1.0
)

var SentinelBool = false
var SentinelTime = mustParseSentinelTime("0001-01-01T01:01:01Z")

func mustParseSentinelTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// CoerceString coerces an arbitrary decoded JSON value to a string. Only
// nil, string, and fmt.Stringer values coerce cleanly; anything else falls
// back to SentinelString rather than risk an opaque %v rendering of a
// type the graph was never meant to carry as a string property.
func CoerceString(v interface{}) string {
	if v == nil {
		return SentinelString
	}
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		_ = errors.CoercionErrorf("coercing %T to string", t)
		return SentinelString
	}
}

// CoerceInt coerces an arbitrary decoded JSON value to an int, falling
// back to SentinelInt on failure.
func CoerceInt(v interface{}) int {
	switch t := v.(type) {
	case nil:
		return SentinelInt
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			_ = errors.CoercionErrorf("coercing %q to int: %v", t, err)
			return SentinelInt
		}
		return n
	default:
		_ = errors.CoercionErrorf("coercing %T to int", t)
		return SentinelInt
	}
}

// CoerceFloat coerces an arbitrary decoded JSON value to a float64.
func CoerceFloat(v interface{}) float64 {
	switch t := v.(type) {
	case nil:
		return SentinelFloat
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			_ = errors.CoercionErrorf("coercing %q to float: %v", t, err)
			return SentinelFloat
		}
		return f
	default:
		_ = errors.CoercionErrorf("coercing %T to float", t)
		return SentinelFloat
	}
}

// CoerceBool coerces an arbitrary decoded JSON value to a bool.
func CoerceBool(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return SentinelBool
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			_ = errors.CoercionErrorf("coercing %q to bool: %v", t, err)
			return SentinelBool
		}
		return b
	default:
		_ = errors.CoercionErrorf("coercing %T to bool", t)
		return SentinelBool
	}
}

// datetimeLayouts are tried in order; GitHub's REST and GraphQL APIs mix
// RFC3339 and the legacy "2006-01-02T15:04:05Z" form across endpoints.
var datetimeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// CoerceDatetime coerces an arbitrary decoded JSON value to a UTC time.Time.
func CoerceDatetime(v interface{}) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		if t, ok := v.(time.Time); ok {
			return t.UTC()
		}
		return SentinelTime
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	_ = errors.CoercionErrorf("coercing %q to datetime: no layout matched", s)
	return SentinelTime
}

// Coerce applies the PropertyType-appropriate coercion and returns the
// result as an interface{} ready for CSV serialization or driver binding.
func Coerce(t PropertyType, v interface{}) interface{} {
	switch t {
	case TypeInteger:
		return CoerceInt(v)
	case TypeFloat:
		return CoerceFloat(v)
	case TypeBoolean:
		return CoerceBool(v)
	case TypeDatetime:
		return CoerceDatetime(v)
	default:
		return CoerceString(v)
	}
}
