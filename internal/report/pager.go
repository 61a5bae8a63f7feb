package report

// PageRequest selects one page of an ordered result set.
type PageRequest struct {
	Index int
	Size  int
}

// Page is a slice of an ordered result set plus totals over the whole set.
type Page[T any] struct {
	Content       []T
	PageIndex     int
	PageSize      int
	TotalElements int
	TotalPages    int
}

// Paginate slices items into the requested page. It never fails: an index past
// the end, a negative index or a non-positive size yields empty content with
// accurate totals. items must already be in a deterministic order.
func Paginate[T any](items []T, req PageRequest) Page[T] {
	total := len(items)
	page := Page[T]{
		Content:       []T{},
		PageIndex:     req.Index,
		PageSize:      req.Size,
		TotalElements: total,
	}
	if req.Size <= 0 {
		return page
	}
	page.TotalPages = total / req.Size
	if total%req.Size != 0 {
		page.TotalPages++
	}

	if req.Index < 0 || req.Index >= page.TotalPages {
		return page
	}
	start := req.Index * req.Size
	end := min(start+req.Size, total)

	page.Content = make([]T, end-start)
	copy(page.Content, items[start:end])
	return page
}
