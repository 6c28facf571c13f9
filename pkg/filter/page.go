package filter

// Page is one slice of a client-side paginated list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}

// Paginate clamps page into [1, TotalPages]. An empty list still has one page.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = ItemsPerPage
	}

	total := len(items)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	page = min(max(page, 1), pages)

	start := (page - 1) * size
	end := min(start+size, total)

	out := make([]T, 0, end-start)
	out = append(out, items[start:end]...)
	return Page[T]{Items: out, Page: page, TotalPages: pages, Total: total}
}
