package model

// MaxPageSize is the largest page the upstream search API returns.
const MaxPageSize = 100

// Accepted values for Query.Sort.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Accepted values for Query.SortType.
const (
	SortByScore       = "score"
	SortByNumComments = "num_comments"
	SortByCreated     = "created_utc"
)

// Query holds the search parameters of one upstream request. Zero values
// are left out of the query string.
type Query struct {
	Text     string // q
	Size     int
	Sort     string
	SortType string
	Author   string
	After    int64 // unix seconds, exclusive
	Before   int64 // unix seconds, exclusive
}
