package domain

import (
	"context"

	"gorm.io/gorm"
)

// Filter is the normalized predicate set applied to the store. All provided
// predicates combine with AND; Search and Tags expand to OR groups
// internally.
type Filter struct {
	Search            string
	CustomerRegions   []string
	Genders           []string
	AgeMin            *int
	AgeMax            *int
	ProductCategories []string
	Tags              []string
	PaymentMethods    []string
	DateFrom          *Date
	DateTo            *Date
}

type Repository interface {
	Count(ctx context.Context, db *gorm.DB, filter Filter) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter Filter, sortBy string, limit, offset int) ([]Transaction, error)
	DistinctValues(ctx context.Context, db *gorm.DB, column string) ([]string, error)
	TagStrings(ctx context.Context, db *gorm.DB) ([]string, error)
	AgeRange(ctx context.Context, db *gorm.DB) (min, max *int, err error)
}
