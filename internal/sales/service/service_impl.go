package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/truestate/sales-backend/internal/observability/metrics"
	"github.com/truestate/sales-backend/internal/sales/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("sales.service"),
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) ListTransactions(ctx context.Context, req domain.ListTransactionsRequest) (domain.ListTransactionsResponse, error) {
	start := time.Now()

	page := req.Page
	if page == 0 {
		page = domain.DefaultPage
	}
	if page < 1 {
		return domain.ListTransactionsResponse{}, domain.ErrInvalidPage
	}

	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize < domain.MinPageSize || pageSize > domain.MaxPageSize {
		return domain.ListTransactionsResponse{}, domain.ErrInvalidPageSize
	}

	filter := domain.Filter{
		Search:            strings.TrimSpace(req.Search),
		CustomerRegions:   normalizeSet(req.CustomerRegions),
		Genders:           normalizeSet(req.Genders),
		AgeMin:            req.AgeMin,
		AgeMax:            req.AgeMax,
		ProductCategories: normalizeSet(req.ProductCategories),
		Tags:              normalizeSet(req.Tags),
		PaymentMethods:    normalizeSet(req.PaymentMethods),
		DateFrom:          parseOptionalDate(req.DateFrom),
		DateTo:            parseOptionalDate(req.DateTo),
	}

	totalCount, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListTransactionsResponse{}, err
	}

	offset := (page - 1) * pageSize
	transactions, err := s.repo.List(ctx, s.db, filter, normalizeSort(req.SortBy), pageSize, offset)
	if err != nil {
		return domain.ListTransactionsResponse{}, err
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))

	s.metrics.RecordQuery(ctx, "transactions", time.Since(start))

	return domain.ListTransactionsResponse{
		Transactions: transactions,
		TotalCount:   totalCount,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   totalPages,
		HasNext:      page < totalPages,
		HasPrevious:  page > 1,
	}, nil
}

func (s *Service) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	start := time.Now()

	regions, err := s.repo.DistinctValues(ctx, s.db, "customer_region")
	if err != nil {
		return domain.FilterOptions{}, err
	}
	genders, err := s.repo.DistinctValues(ctx, s.db, "gender")
	if err != nil {
		return domain.FilterOptions{}, err
	}
	categories, err := s.repo.DistinctValues(ctx, s.db, "product_category")
	if err != nil {
		return domain.FilterOptions{}, err
	}
	paymentMethods, err := s.repo.DistinctValues(ctx, s.db, "payment_method")
	if err != nil {
		return domain.FilterOptions{}, err
	}

	tagStrings, err := s.repo.TagStrings(ctx, s.db)
	if err != nil {
		return domain.FilterOptions{}, err
	}

	minAge, maxAge, err := s.repo.AgeRange(ctx, s.db)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	ageRange := domain.AgeRange{Min: 0, Max: 100}
	if minAge != nil {
		ageRange.Min = *minAge
	}
	if maxAge != nil {
		ageRange.Max = *maxAge
	}

	s.metrics.RecordQuery(ctx, "filter-options", time.Since(start))

	return domain.FilterOptions{
		Regions:        nonNil(regions),
		Genders:        nonNil(genders),
		Categories:     nonNil(categories),
		Tags:           uniqueTags(tagStrings),
		PaymentMethods: nonNil(paymentMethods),
		AgeRange:       ageRange,
	}, nil
}

// uniqueTags splits every stored tags string on commas, trims whitespace,
// drops empty tokens and returns the deduplicated tokens sorted ascending.
func uniqueTags(tagStrings []string) []string {
	seen := make(map[string]struct{})
	for _, raw := range tagStrings {
		for _, token := range strings.Split(raw, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			seen[token] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// parseOptionalDate treats blank or malformed values as "no constraint"
// rather than an error.
func parseOptionalDate(value string) *domain.Date {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := domain.ParseDate(value)
	if err != nil {
		return nil
	}
	return &parsed
}

func normalizeSort(sortBy string) string {
	switch sortBy {
	case domain.SortDateDesc,
		domain.SortDateAsc,
		domain.SortQuantityDesc,
		domain.SortQuantityAsc,
		domain.SortCustomerNameAsc,
		domain.SortCustomerNameDesc:
		return sortBy
	default:
		return domain.SortDateDesc
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
