package types

// Pagination is the page metadata reported by the server alongside a page
// of data. Clients trust it verbatim.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// PageResult is one page of a collection plus its pagination metadata.
type PageResult[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPagination computes server-side page metadata for a listing of total
// items. TotalPages is at least 1 so that page 1 of an empty listing is valid.
func NewPagination(page, limit, total int) Pagination {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}

// PaginationState is the client-side pagination bookkeeping. The navigation
// flags are always derived from CurrentPage and TotalPages.
type PaginationState struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// PageInfo describes the 1-based item range shown on the current page.
type PageInfo struct {
	StartItem  int `json:"startItem"`
	EndItem    int `json:"endItem"`
	TotalItems int `json:"totalItems"`
}
