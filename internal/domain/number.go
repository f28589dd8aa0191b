package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number decodes from a JSON number or a numeric string. The remote API stores
// whatever the admin form submitted, so both shapes show up for the same
// field. Empty strings, null and anything that is not numeric (a "TBD"
// placeholder, a boolean) decode to zero so one sloppy record cannot fail a
// whole list.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = Number(v)
		}
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err == nil {
			*n = Number(v)
		}
	}
	return nil
}

func (n Number) Float64() float64 {
	return float64(n)
}

func (n Number) Int() int {
	return int(n)
}
