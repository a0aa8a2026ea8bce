package views

// DefaultPageSize is the number of cards per list page.
const DefaultPageSize = 9

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// TotalPages is ceil(count / pageSize).
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// Paginate slices items into 1-based pages. Pages outside the range yield no
// items; the page number is reported back unchanged. Use ClampPage first to
// keep callers in range.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(items),
		TotalPages: TotalPages(len(items), pageSize),
	}
	if page < 1 || page > p.TotalPages {
		return p
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	p.Items = items[start:end]
	return p
}

// ClampPage moves page into [1, totalPages]; with no pages it returns 1.
func ClampPage(page, count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	last := max(TotalPages(count, pageSize), 1)
	return max(1, min(page, last))
}
