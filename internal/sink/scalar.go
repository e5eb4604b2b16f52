package sink

import "strconv"

// canonicalScalarString renders a TableRecord scalar in its canonical
// textual form for sinks that need one — bool/number get their plain
// textual form, null becomes the empty string, and strings are returned
// unescaped (callers that need CSV or JSON-specific escaping apply it
// themselves on top of this).
func canonicalScalarString(v any) (s string, isString bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case bool:
		return strconv.FormatBool(val), false
	case int64:
		return strconv.FormatInt(val, 10), false
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), false
	case string:
		return val, true
	default:
		return "", false
	}
}
