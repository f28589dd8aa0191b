package domain

// SearchCriteria narrows the flight directory. Empty substrings match every
// record; a nil Date matches every day.
type SearchCriteria struct {
	Origin      string
	Destination string
	Date        *CalendarDate
}

func (c SearchCriteria) IsZero() bool {
	return c.Origin == "" && c.Destination == "" && c.Date == nil
}

func (c SearchCriteria) Equal(o SearchCriteria) bool {
	if c.Origin != o.Origin || c.Destination != o.Destination {
		return false
	}
	if c.Date == nil || o.Date == nil {
		return c.Date == nil && o.Date == nil
	}
	return *c.Date == *o.Date
}
