package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexBool decodes booleans that summary generators sometimes emit as
// strings or numbers.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch value := raw.(type) {
	case nil:
		*b = false
	case bool:
		*b = FlexBool(value)
	case float64:
		*b = value != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "", "false", "no", "0", "n":
			*b = false
		case "true", "yes", "1", "y":
			*b = true
		default:
			return fmt.Errorf("invalid boolean value %q", value)
		}
	default:
		return fmt.Errorf("invalid boolean value %s", string(data))
	}
	return nil
}

func (b FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}
