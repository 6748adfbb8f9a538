package types

import "database/sql/driver"

// OpeningPeriod is one open interval; Day follows the directory convention
// (0 = Sunday). Times are HHMM in local time.
type OpeningPeriod struct {
	OpenDay   int    `json:"open_day"`
	OpenTime  string `json:"open_time"`
	CloseDay  int    `json:"close_day"`
	CloseTime string `json:"close_time"`
}

// OpeningHours mirrors the directory's regular opening hours.
type OpeningHours struct {
	WeekdayDescriptions []string        `json:"weekday_descriptions,omitempty"`
	Periods             []OpeningPeriod `json:"periods,omitempty"`
}

// IsZero reports whether no hours were supplied.
func (o OpeningHours) IsZero() bool {
	return len(o.WeekdayDescriptions) == 0 && len(o.Periods) == 0
}

func (o OpeningHours) Value() (driver.Value, error) {
	return jsonValue(o, "{}")
}

func (o *OpeningHours) Scan(value interface{}) error {
	if value == nil {
		*o = OpeningHours{}
		return nil
	}
	var out OpeningHours
	if err := scanJSON("opening hours", value, &out); err != nil {
		return err
	}
	*o = out
	return nil
}
