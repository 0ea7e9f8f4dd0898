package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/truestate/sales-backend/internal/sales/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// distinctColumns whitelists the columns exposed through DistinctValues.
var distinctColumns = map[string]struct{}{
	"customer_region":  {},
	"gender":           {},
	"product_category": {},
	"payment_method":   {},
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.Filter) (int64, error) {
	var count int64
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Transaction{}), filter)
	if err := stmt.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.Filter, sortBy string, limit, offset int) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Transaction{}), filter)
	err := stmt.
		Order(orderClause(sortBy)).
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *repo) DistinctValues(ctx context.Context, db *gorm.DB, column string) ([]string, error) {
	if _, ok := distinctColumns[column]; !ok {
		return nil, fmt.Errorf("column %q not exposed for distinct values", column)
	}
	var values []string
	err := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Distinct(column).
		Where(column+" <> ''").
		Order(column + " asc").
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (r *repo) TagStrings(ctx context.Context, db *gorm.DB) ([]string, error) {
	var values []string
	err := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Distinct("tags").
		Where("tags <> ''").
		Pluck("tags", &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (r *repo) AgeRange(ctx context.Context, db *gorm.DB) (*int, *int, error) {
	var row struct {
		MinAge *int
		MaxAge *int
	}
	err := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Select("MIN(age) AS min_age, MAX(age) AS max_age").
		Scan(&row).Error
	if err != nil {
		return nil, nil, err
	}
	return row.MinAge, row.MaxAge, nil
}

// applyFilter translates the filter into WHERE clauses. Each
// Where call ANDs with the previous ones; the search and tag groups are OR
// expressions inside a single call so they parenthesize as one predicate.
func applyFilter(stmt *gorm.DB, filter domain.Filter) *gorm.DB {
	if filter.Search != "" {
		// Name matches case-insensitively, phone matches the raw input.
		stmt = stmt.Where(
			"LOWER(customer_name) LIKE ? OR phone_number LIKE ?",
			"%"+strings.ToLower(filter.Search)+"%",
			"%"+filter.Search+"%",
		)
	}
	if len(filter.CustomerRegions) > 0 {
		stmt = stmt.Where("customer_region IN ?", filter.CustomerRegions)
	}
	if len(filter.Genders) > 0 {
		stmt = stmt.Where("gender IN ?", filter.Genders)
	}
	if filter.AgeMin != nil {
		stmt = stmt.Where("age >= ?", *filter.AgeMin)
	}
	if filter.AgeMax != nil {
		stmt = stmt.Where("age <= ?", *filter.AgeMax)
	}
	if len(filter.ProductCategories) > 0 {
		stmt = stmt.Where("product_category IN ?", filter.ProductCategories)
	}
	if len(filter.Tags) > 0 {
		// Tags are a free-form comma-separated string, so a record matches
		// when any requested tag appears as a substring. Exact token
		// membership would change observable behavior.
		conds := make([]string, 0, len(filter.Tags))
		args := make([]any, 0, len(filter.Tags))
		for _, tag := range filter.Tags {
			conds = append(conds, "tags LIKE ?")
			args = append(args, "%"+tag+"%")
		}
		stmt = stmt.Where(strings.Join(conds, " OR "), args...)
	}
	if len(filter.PaymentMethods) > 0 {
		stmt = stmt.Where("payment_method IN ?", filter.PaymentMethods)
	}
	if filter.DateFrom != nil {
		stmt = stmt.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		stmt = stmt.Where("date <= ?", *filter.DateTo)
	}
	return stmt
}

// orderClause resolves the sort key. Ties always break on the primary key so
// repeated identical queries return identical row order.
func orderClause(sortBy string) string {
	switch sortBy {
	case domain.SortDateAsc:
		return "date asc, transaction_id asc"
	case domain.SortQuantityDesc:
		return "quantity desc, transaction_id asc"
	case domain.SortQuantityAsc:
		return "quantity asc, transaction_id asc"
	case domain.SortCustomerNameAsc:
		return "customer_name asc, transaction_id asc"
	case domain.SortCustomerNameDesc:
		return "customer_name desc, transaction_id asc"
	default:
		return "date desc, transaction_id asc"
	}
}
