package models

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NormalizePage clamps page and size into the accepted range.
func NormalizePage(page, size, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// NewPagination builds list metadata from a normalised page request.
func NewPagination(page, size, defaultSize, total int) *Pagination {
	page, size = NormalizePage(page, size, defaultSize)
	return &Pagination{Page: page, PageSize: size, TotalCount: total}
}
