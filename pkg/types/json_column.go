package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

func jsonValue(v any, empty string) (driver.Value, error) {
	if v == nil {
		return empty, nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

func scanJSON(name string, value any, dest any) error {
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("%s: unsupported scan type %T", name, value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
