package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleString converts a decoded JSON literal to a string. JSON-LD
// literals arrive as strings, numbers or booleans depending on their datatype;
// the projection layer only ever needs their lexical form. Returns empty
// string for nil and for composite values.
func FlexibleString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case map[string]interface{}, []interface{}:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FlexibleBool interprets a decoded JSON literal as a boolean, accepting
// native booleans and their string forms. Anything else is false.
func FlexibleBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(val)
		return err == nil && b
	}
	return false
}

// FlexibleInt interprets a decoded JSON literal as an integer, accepting
// numbers and numeric strings. The second result is false when v is not numeric.
func FlexibleInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), val == float64(int(val))
	case json.Number:
		n, err := val.Int64()
		return int(n), err == nil
	case int:
		return val, true
	case string:
		n, err := strconv.Atoi(val)
		return n, err == nil
	}
	return 0, false
}
