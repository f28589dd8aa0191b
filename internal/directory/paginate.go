package directory

import "slices"

// DefaultPageSize matches the eight cards per page of the flight listing.
const DefaultPageSize = 8

type Page[T any] struct {
	Items      []T  `json:"items"`
	Number     int  `json:"page"`
	Size       int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// PageCount is ceil(total/size). Non-positive sizes use DefaultPageSize.
func PageCount(total, size int) int {
	size = normalizeSize(size)
	if total <= 0 {
		return 0
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// Paginate returns items [(page-1)*size, page*size). Pages outside
// 1..PageCount come back with no items rather than an error. The returned
// items never alias the input.
func Paginate[T any](items []T, page, size int) Page[T] {
	size = normalizeSize(size)
	total := len(items)
	pages := PageCount(total, size)

	p := Page[T]{
		Items:      []T{},
		Number:     page,
		Size:       size,
		Total:      total,
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
	if page < 1 || page > pages {
		return p
	}

	start := (page - 1) * size
	end := min(start+size, total)
	p.Items = slices.Clone(items[start:end])
	return p
}

func normalizeSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return size
}
