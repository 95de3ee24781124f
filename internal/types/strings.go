package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

func ToString(value any) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// InlineValue renders a literal for a single line of text.
// Scalars are printed as is, composite values as compact JSON.
func InlineValue(value any) string {
	switch value.(type) {
	case map[string]any, []any:
		return InlineJSON(value)
	}
	return ToString(value)
}

// InlineJSON renders a value as compact JSON.
// Values that cannot be encoded fall back to fmt formatting.
func InlineJSON(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return strings.TrimSpace(string(data))
}
