package types

import "database/sql/driver"

// FAQ is a single question/answer pair rendered on a storefront.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQList is persisted as a JSONB array.
type FAQList []FAQ

func (f FAQList) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	return jsonValue([]FAQ(f), "[]")
}

func (f *FAQList) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	var out []FAQ
	if err := scanJSON("faq list", value, &out); err != nil {
		return err
	}
	*f = out
	return nil
}
