package domain

import (
	"context"
	"errors"
)

// Sort keys accepted by ListTransactions. Anything else falls back to
// SortDateDesc.
const (
	SortDateDesc         = "date_desc"
	SortDateAsc          = "date_asc"
	SortQuantityDesc     = "quantity_desc"
	SortQuantityAsc      = "quantity_asc"
	SortCustomerNameAsc  = "customer_name_asc"
	SortCustomerNameDesc = "customer_name_desc"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MinPageSize     = 1
	MaxPageSize     = 100
)

var (
	ErrInvalidPage     = errors.New("invalid_page")
	ErrInvalidPageSize = errors.New("invalid_page_size")
)

// ListTransactionsRequest carries the raw optional predicates derived from a
// request. Set-valued fields are already split on commas by the API layer;
// date bounds stay raw strings because unparseable values are silently
// treated as absent rather than rejected.
type ListTransactionsRequest struct {
	Search            string
	CustomerRegions   []string
	Genders           []string
	AgeMin            *int
	AgeMax            *int
	ProductCategories []string
	Tags              []string
	PaymentMethods    []string
	DateFrom          string
	DateTo            string
	SortBy            string
	Page              int
	PageSize          int
}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	TotalCount   int64         `json:"total_count"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	TotalPages   int           `json:"total_pages"`
	HasNext      bool          `json:"has_next"`
	HasPrevious  bool          `json:"has_previous"`
}

type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FilterOptions is the distinct-value and min/max summary used to populate
// UI selection controls.
type FilterOptions struct {
	Regions        []string `json:"regions"`
	Genders        []string `json:"genders"`
	Categories     []string `json:"categories"`
	Tags           []string `json:"tags"`
	PaymentMethods []string `json:"payment_methods"`
	AgeRange       AgeRange `json:"age_range"`
}

type Service interface {
	ListTransactions(context.Context, ListTransactionsRequest) (ListTransactionsResponse, error)
	FilterOptions(context.Context) (FilterOptions, error)
}
