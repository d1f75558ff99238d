package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexBool is a JSON bool that also accepts quoted spellings ("true", "1",
// "false", "") and numbers, where zero is false. null leaves it false.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = FlexBool(t)
	case float64:
		*b = t != 0
	case string:
		if t == "" {
			*b = false
			return nil
		}
		parsed, err := strconv.ParseBool(t)
		if err != nil {
			return fmt.Errorf("cannot parse %q as bool", t)
		}
		*b = FlexBool(parsed)
	default:
		return fmt.Errorf("cannot parse %s as bool", data)
	}
	return nil
}
