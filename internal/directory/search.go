package directory

import "github.com/Domenick1991/flightdesk/internal/domain"

// Search is one user's search interaction: the applied criteria and the page
// being viewed. It is not safe for concurrent use.
type Search struct {
	criteria domain.SearchCriteria
	page     int
	size     int
}

func NewSearch(size int) *Search {
	return &Search{page: 1, size: normalizeSize(size)}
}

func (s *Search) Criteria() domain.SearchCriteria {
	return s.criteria
}

func (s *Search) Page() int {
	return s.page
}

// Apply replaces the criteria and returns to the first page.
func (s *Search) Apply(c domain.SearchCriteria) {
	s.criteria = c
	s.page = 1
}

// GoTo moves to page n. Out-of-range pages are allowed and render empty.
func (s *Search) GoTo(n int) {
	s.page = n
}

// View filters and paginates flights freshly on every call.
func (s *Search) View(flights []domain.Flight) Page[domain.Flight] {
	return Paginate(Filter(flights, s.criteria), s.page, s.size)
}
