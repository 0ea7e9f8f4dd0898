package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/truestate/sales-backend/internal/sales/domain"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *gorm.DB {
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
	return conn
}

func seed(t *testing.T, conn *gorm.DB, rows ...domain.Transaction) {
	t.Helper()
	if err := conn.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func tx(id int64, date domain.Date) domain.Transaction {
	return domain.Transaction{
		TransactionID: id,
		Date:          date,
		CustomerName:  fmt.Sprintf("Customer %d", id),
		PhoneNumber:   fmt.Sprintf("98765%05d", id),
		Gender:        "Female",
		Age:           30,
		Quantity:      1,
	}
}

func TestSearchMatchesNameCaseInsensitively(t *testing.T) {
	conn := setupStore(t)
	asha := tx(1, domain.NewDate(2024, time.January, 10))
	asha.CustomerName = "Asha Rao"
	bala := tx(2, domain.NewDate(2024, time.January, 11))
	bala.CustomerName = "Bala Iyer"
	seed(t, conn, asha, bala)

	repo := Provide()
	got, err := repo.List(context.Background(), conn, domain.Filter{Search: "ASHA"}, domain.SortDateDesc, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].CustomerName != "Asha Rao" {
		t.Fatalf("expected only Asha Rao, got %+v", got)
	}
}

func TestSearchMatchesPhoneSubstring(t *testing.T) {
	conn := setupStore(t)
	a := tx(1, domain.NewDate(2024, time.January, 10))
	a.PhoneNumber = "9876543210"
	b := tx(2, domain.NewDate(2024, time.January, 11))
	b.PhoneNumber = "1112223334"
	seed(t, conn, a, b)

	repo := Provide()
	count, err := repo.Count(context.Background(), conn, domain.Filter{Search: "65432"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 match on phone substring, got %d", count)
	}
}

func TestTagFilterUsesSubstringContainment(t *testing.T) {
	conn := setupStore(t)
	a := tx(1, domain.NewDate(2024, time.February, 1))
	a.Tags = "electronics, home"
	b := tx(2, domain.NewDate(2024, time.February, 2))
	b.Tags = "non-electronics"
	c := tx(3, domain.NewDate(2024, time.February, 3))
	c.Tags = "groceries"
	seed(t, conn, a, b, c)

	repo := Provide()
	// Substring containment: "non-electronics" matches too. This mirrors
	// the production matching and must not be "fixed" to token equality.
	count, err := repo.Count(context.Background(), conn, domain.Filter{Tags: []string{"electronics"}})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected substring match on both rows, got %d", count)
	}
}

func TestTagFilterORsAcrossRequestedTags(t *testing.T) {
	conn := setupStore(t)
	a := tx(1, domain.NewDate(2024, time.February, 1))
	a.Tags = "home"
	b := tx(2, domain.NewDate(2024, time.February, 2))
	b.Tags = "garden"
	c := tx(3, domain.NewDate(2024, time.February, 3))
	c.Tags = "sports"
	seed(t, conn, a, b, c)

	repo := Provide()
	count, err := repo.Count(context.Background(), conn, domain.Filter{Tags: []string{"home", "garden"}})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows for OR of tags, got %d", count)
	}
}

func TestFiltersCombineWithAND(t *testing.T) {
	conn := setupStore(t)
	a := tx(1, domain.NewDate(2024, time.March, 1))
	a.CustomerRegion = "South"
	a.Age = 25
	b := tx(2, domain.NewDate(2024, time.March, 2))
	b.CustomerRegion = "South"
	b.Age = 70
	c := tx(3, domain.NewDate(2024, time.March, 3))
	c.CustomerRegion = "North"
	c.Age = 25
	seed(t, conn, a, b, c)

	ageMin, ageMax := 20, 30
	repo := Provide()
	got, err := repo.List(context.Background(), conn, domain.Filter{
		CustomerRegions: []string{"South"},
		AgeMin:          &ageMin,
		AgeMax:          &ageMax,
	}, domain.SortDateDesc, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].TransactionID != 1 {
		t.Fatalf("expected only transaction 1, got %+v", got)
	}
}

func TestDateBoundsAreInclusive(t *testing.T) {
	conn := setupStore(t)
	seed(t, conn,
		tx(1, domain.NewDate(2024, time.January, 1)),
		tx(2, domain.NewDate(2024, time.January, 15)),
		tx(3, domain.NewDate(2024, time.January, 31)),
	)

	from := domain.NewDate(2024, time.January, 15)
	to := domain.NewDate(2024, time.January, 31)
	repo := Provide()
	count, err := repo.Count(context.Background(), conn, domain.Filter{DateFrom: &from, DateTo: &to})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows in inclusive range, got %d", count)
	}
}

func TestOrderingIsDeterministicOnTies(t *testing.T) {
	conn := setupStore(t)
	day := domain.NewDate(2024, time.April, 1)
	seed(t, conn, tx(3, day), tx(1, day), tx(2, day))

	repo := Provide()
	first, err := repo.List(context.Background(), conn, domain.Filter{}, domain.SortDateDesc, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	second, err := repo.List(context.Background(), conn, domain.Filter{}, domain.SortDateDesc, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := range first {
		if first[i].TransactionID != second[i].TransactionID {
			t.Fatalf("row order differs between identical queries")
		}
	}
	for i, want := range []int64{1, 2, 3} {
		if first[i].TransactionID != want {
			t.Fatalf("expected tie-break on transaction_id asc, got %+v", first)
		}
	}
}

func TestSortByQuantityAndName(t *testing.T) {
	conn := setupStore(t)
	a := tx(1, domain.NewDate(2024, time.May, 1))
	a.Quantity = 5
	a.CustomerName = "Zara"
	b := tx(2, domain.NewDate(2024, time.May, 2))
	b.Quantity = 1
	b.CustomerName = "Amit"
	seed(t, conn, a, b)

	repo := Provide()
	byQty, err := repo.List(context.Background(), conn, domain.Filter{}, domain.SortQuantityAsc, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if byQty[0].TransactionID != 2 {
		t.Fatalf("expected quantity asc to lead with transaction 2")
	}

	byName, err := repo.List(context.Background(), conn, domain.Filter{}, domain.SortCustomerNameDesc, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if byName[0].CustomerName != "Zara" {
		t.Fatalf("expected customer_name desc to lead with Zara")
	}
}

func TestDistinctValuesSortedAndNonEmpty(t *testing.T) {
	conn := setupStore(t)
	a := tx(1, domain.NewDate(2024, time.June, 1))
	a.CustomerRegion = "South"
	b := tx(2, domain.NewDate(2024, time.June, 2))
	b.CustomerRegion = "North"
	c := tx(3, domain.NewDate(2024, time.June, 3))
	c.CustomerRegion = ""
	d := tx(4, domain.NewDate(2024, time.June, 4))
	d.CustomerRegion = "South"
	seed(t, conn, a, b, c, d)

	repo := Provide()
	regions, err := repo.DistinctValues(context.Background(), conn, "customer_region")
	if err != nil {
		t.Fatalf("distinct: %v", err)
	}
	if len(regions) != 2 || regions[0] != "North" || regions[1] != "South" {
		t.Fatalf("expected [North South], got %v", regions)
	}
}

func TestDistinctValuesRejectsUnknownColumn(t *testing.T) {
	conn := setupStore(t)
	repo := Provide()
	if _, err := repo.DistinctValues(context.Background(), conn, "phone_number"); err == nil {
		t.Fatalf("expected error for unexposed column")
	}
}

func TestAgeRange(t *testing.T) {
	conn := setupStore(t)
	a := tx(1, domain.NewDate(2024, time.July, 1))
	a.Age = 20
	b := tx(2, domain.NewDate(2024, time.July, 2))
	b.Age = 65
	seed(t, conn, a, b)

	repo := Provide()
	minAge, maxAge, err := repo.AgeRange(context.Background(), conn)
	if err != nil {
		t.Fatalf("age range: %v", err)
	}
	if minAge == nil || maxAge == nil || *minAge != 20 || *maxAge != 65 {
		t.Fatalf("expected 20..65, got %v..%v", minAge, maxAge)
	}
}

func TestAgeRangeEmptyTable(t *testing.T) {
	conn := setupStore(t)
	repo := Provide()
	minAge, maxAge, err := repo.AgeRange(context.Background(), conn)
	if err != nil {
		t.Fatalf("age range: %v", err)
	}
	if minAge != nil || maxAge != nil {
		t.Fatalf("expected nil bounds on empty table, got %v..%v", minAge, maxAge)
	}
}

func TestListPaginatesWithOffsetAndLimit(t *testing.T) {
	conn := setupStore(t)
	for i := int64(1); i <= 25; i++ {
		seed(t, conn, tx(i, domain.NewDate(2024, time.August, 1)))
	}

	repo := Provide()
	page, err := repo.List(context.Background(), conn, domain.Filter{}, domain.SortDateDesc, 10, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 5 {
		t.Fatalf("expected final partial page of 5, got %d", len(page))
	}
}
