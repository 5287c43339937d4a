package model

// Paged is a single page of query results together with the paging metadata
// that produced it. TotalRows is the full unfiltered count regardless of
// slicing. Paged values are view projections only, never persisted.
type Paged[T any] struct {
	Data        []T    `json:"data"`
	TotalRows   int64  `json:"total_rows"`
	CurrentPage int    `json:"current_page"`
	PageSize    int    `json:"page_size"`
	OrderBy     string `json:"order_by"`
	Direction   string `json:"direction"`
}
