package models

// ErrorResponse documents the error envelope for swagger
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 100
)

type SortField struct {
	Field string
	Desc  bool
}

// ListOptions carries pagination and sorting parsed from the query string
type ListOptions struct {
	Page  int
	Limit int
	Sort  []SortField
}

func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 || o.Limit > MaxLimit {
		o.Limit = DefaultLimit
	}
	if len(o.Sort) == 0 {
		o.Sort = []SortField{{Field: "createdAt", Desc: true}}
	}
	return o
}

func (o ListOptions) Skip() int {
	return (o.Page - 1) * o.Limit
}
