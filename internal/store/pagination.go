package store

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type OffsetPage[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices items into the requested 1-based page. Out-of-range
// page sizes fall back to DefaultPageSize.
func Paginate[T any](items []T, page, pageSize int) OffsetPage[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	total := len(items)
	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}

	start := total
	if page-1 <= total/pageSize {
		start = (page - 1) * pageSize
	}
	end := min(start+pageSize, total)

	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])

	return OffsetPage[T]{
		Items:      pageItems,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
