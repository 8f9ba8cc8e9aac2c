package pagination

// Default and maximum page sizes.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params holds 1-based pagination parameters.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// NewParams normalizes page and perPage: page is at least 1, perPage falls
// back to DefaultPerPage when not positive and is capped at MaxPerPage.
func NewParams(page, perPage int) Params {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

// Offset returns the number of rows preceding the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// TotalPages returns ceil(total / perPage). Zero rows means zero pages.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	pages := total / perPage
	if total%perPage > 0 {
		pages++
	}
	return pages
}

// Clamp bounds page to [1, max(1, totalPages)].
func Clamp(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Summary describes where a page sits in the full result set.
type Summary struct {
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewSummary computes the summary for the given total and params.
func NewSummary(totalCount int, params Params) Summary {
	totalPages := TotalPages(totalCount, params.PerPage)
	return Summary{
		TotalCount: totalCount,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data []T `json:"data"`
	Summary
}

// NewResult creates a paginated result.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	return Result[T]{
		Data:    data,
		Summary: NewSummary(totalCount, params),
	}
}
