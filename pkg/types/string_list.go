package types

import "database/sql/driver"

// StringList is a JSONB-backed list of strings (service areas, attributes).
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return jsonValue([]string(s), "[]")
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var out []string
	if err := scanJSON("string list", value, &out); err != nil {
		return err
	}
	*s = out
	return nil
}
