package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/truestate/sales-backend/internal/sales/domain"
	"github.com/truestate/sales-backend/internal/sales/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if err := conn.AutoMigrate(&domain.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(Params{
		DB:   conn,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
}

func seedService(t *testing.T, svc domain.Service, rows ...domain.Transaction) {
	t.Helper()
	conn := svc.(*Service).db
	if err := conn.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func row(id int64, date domain.Date) domain.Transaction {
	return domain.Transaction{
		TransactionID: id,
		Date:          date,
		CustomerName:  fmt.Sprintf("Customer %d", id),
		PhoneNumber:   fmt.Sprintf("90000%05d", id),
		Gender:        "Male",
		Age:           40,
		Quantity:      2,
	}
}

func TestListTransactionsPaginationMath(t *testing.T) {
	svc := setupService(t)
	for i := int64(1); i <= 25; i++ {
		seedService(t, svc, row(i, domain.NewDate(2024, time.January, 1)))
	}

	resp, err := svc.ListTransactions(context.Background(), domain.ListTransactionsRequest{Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.TotalCount != 25 {
		t.Fatalf("total_count = %d, want 25", resp.TotalCount)
	}
	if resp.TotalPages != 3 {
		t.Fatalf("total_pages = %d, want 3", resp.TotalPages)
	}
	if len(resp.Transactions) != 5 {
		t.Fatalf("expected partial last page of 5, got %d", len(resp.Transactions))
	}
	if resp.HasNext {
		t.Fatalf("last page must not report has_next")
	}
	if !resp.HasPrevious {
		t.Fatalf("page 3 must report has_previous")
	}
}

func TestListTransactionsPageBeyondRangeIsEmptyNotError(t *testing.T) {
	svc := setupService(t)
	seedService(t, svc, row(1, domain.NewDate(2024, time.January, 1)))

	resp, err := svc.ListTransactions(context.Background(), domain.ListTransactionsRequest{Page: 50, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.Transactions) != 0 {
		t.Fatalf("expected empty page, got %d rows", len(resp.Transactions))
	}
	if resp.Transactions == nil {
		t.Fatalf("transactions must marshal as [], not null")
	}
	if resp.TotalCount != 1 || resp.TotalPages != 1 {
		t.Fatalf("counts must reflect the full result set, got %+v", resp)
	}
	if resp.HasNext {
		t.Fatalf("page past the end must not report has_next")
	}
}

func TestListTransactionsRejectsBadPagination(t *testing.T) {
	svc := setupService(t)

	if _, err := svc.ListTransactions(context.Background(), domain.ListTransactionsRequest{Page: -1}); !errors.Is(err, domain.ErrInvalidPage) {
		t.Fatalf("page -1: got %v, want ErrInvalidPage", err)
	}
	if _, err := svc.ListTransactions(context.Background(), domain.ListTransactionsRequest{Page: 1, PageSize: 101}); !errors.Is(err, domain.ErrInvalidPageSize) {
		t.Fatalf("page_size 101: got %v, want ErrInvalidPageSize", err)
	}
	if _, err := svc.ListTransactions(context.Background(), domain.ListTransactionsRequest{Page: 1, PageSize: -5}); !errors.Is(err, domain.ErrInvalidPageSize) {
		t.Fatalf("page_size -5: got %v, want ErrInvalidPageSize", err)
	}
}

func TestListTransactionsAcceptsPageSizeBounds(t *testing.T) {
	svc := setupService(t)
	seedService(t, svc,
		row(1, domain.NewDate(2024, time.January, 1)),
		row(2, domain.NewDate(2024, time.January, 2)),
	)

	for _, size := range []int{1, 100} {
		resp, err := svc.ListTransactions(context.Background(), domain.ListTransactionsRequest{Page: 1, PageSize: size})
		if err != nil {
			t.Fatalf("page_size %d: %v", size, err)
		}
		if resp.PageSize != size {
			t.Fatalf("page_size %d echoed as %d", size, resp.PageSize)
		}
	}
}

func TestListTransactionsDefaults(t *testing.T) {
	svc := setupService(t)
	seedService(t, svc, row(1, domain.NewDate(2024, time.January, 1)))

	resp, err := svc.ListTransactions(context.Background(), domain.ListTransactionsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Page != domain.DefaultPage || resp.PageSize != domain.DefaultPageSize {
		t.Fatalf("defaults not applied, got page=%d page_size=%d", resp.Page, resp.PageSize)
	}
}

func TestListTransactionsIgnoresMalformedDates(t *testing.T) {
	svc := setupService(t)
	seedService(t, svc,
		row(1, domain.NewDate(2024, time.January, 1)),
		row(2, domain.NewDate(2024, time.June, 1)),
	)

	resp, err := svc.ListTransactions(context.Background(), domain.ListTransactionsRequest{
		Page:     1,
		PageSize: 10,
		DateFrom: "not-a-date",
		DateTo:   "2024/13/45",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.TotalCount != 2 {
		t.Fatalf("malformed dates must be treated as absent, got total_count=%d", resp.TotalCount)
	}
}

func TestListTransactionsUnknownSortFallsBackToDateDesc(t *testing.T) {
	svc := setupService(t)
	seedService(t, svc,
		row(1, domain.NewDate(2024, time.January, 1)),
		row(2, domain.NewDate(2024, time.June, 1)),
	)

	resp, err := svc.ListTransactions(context.Background(), domain.ListTransactionsRequest{
		Page:     1,
		PageSize: 10,
		SortBy:   "bogus_field",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Transactions[0].TransactionID != 2 {
		t.Fatalf("expected newest first on unknown sort, got %+v", resp.Transactions)
	}
}

func TestFilterOptionsEmptyTable(t *testing.T) {
	svc := setupService(t)

	opts, err := svc.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("filter options: %v", err)
	}
	if opts.AgeRange.Min != 0 || opts.AgeRange.Max != 100 {
		t.Fatalf("expected default age range 0..100, got %+v", opts.AgeRange)
	}
	if opts.Regions == nil || opts.Genders == nil || opts.Categories == nil || opts.Tags == nil || opts.PaymentMethods == nil {
		t.Fatalf("option lists must be empty slices, not nil: %+v", opts)
	}
}

func TestFilterOptionsTagsTokenized(t *testing.T) {
	svc := setupService(t)
	a := row(1, domain.NewDate(2024, time.January, 1))
	a.Tags = "electronics, home"
	a.Age = 20
	b := row(2, domain.NewDate(2024, time.January, 2))
	b.Tags = " home ,garden"
	b.Age = 65
	seedService(t, svc, a, b)

	opts, err := svc.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("filter options: %v", err)
	}
	want := []string{"electronics", "garden", "home"}
	if len(opts.Tags) != len(want) {
		t.Fatalf("tags = %v, want %v", opts.Tags, want)
	}
	for i := range want {
		if opts.Tags[i] != want[i] {
			t.Fatalf("tags = %v, want %v", opts.Tags, want)
		}
	}
	if opts.AgeRange.Min != 20 || opts.AgeRange.Max != 65 {
		t.Fatalf("age range = %+v, want 20..65", opts.AgeRange)
	}
}

func TestUniqueTagsDropsEmptyTokens(t *testing.T) {
	got := uniqueTags([]string{"a,, b", " ", "b,a"})
	want := []string{"a", "b"}
	if len(got) != len(want) {
		t.Fatalf("uniqueTags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("uniqueTags = %v, want %v", got, want)
		}
	}
}
