package filter

import (
	"reflect"
	"strings"
)

// Spec maps a dotted field path (e.g. "user_data.id") to the value the
// field must carry. String values match as case-insensitive substrings,
// everything else requires exact equality. An empty Spec matches every
// record.
type Spec map[string]interface{}

// Matches reports whether the record satisfies every path/value pair in
// the spec. A path whose segments cannot be fully walked (missing key, or
// a non-object in the middle of the path) fails the whole match.
func (s Spec) Matches(record map[string]interface{}) bool {
	for path, expected := range s {
		value, ok := lookup(record, path)
		if !ok {
			return false
		}
		if !leafMatches(value, expected) {
			return false
		}
	}
	return true
}

// lookup walks the record through each dot-separated path segment
func lookup(record map[string]interface{}, path string) (interface{}, bool) {
	var value interface{} = record
	for _, segment := range strings.Split(path, ".") {
		obj, ok := value.(map[string]interface{})
		if !ok {
			return nil, false
		}
		value, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}
	return value, true
}

// leafMatches compares a record value against the expected filter value.
// Strings get a case-insensitive substring check so users can filter by
// a partial professor name; all other types require exact equality, so
// numeric identifiers never match their string spellings.
func leafMatches(value, expected interface{}) bool {
	if want, ok := expected.(string); ok {
		got, ok := value.(string)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	}

	// JSON decoding yields float64 for every number, so numeric
	// expectations compare by value across int/float representations.
	if wantNum, ok := toFloat(expected); ok {
		gotNum, ok := toFloat(value)
		return ok && gotNum == wantNum
	}

	return reflect.DeepEqual(value, expected)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
