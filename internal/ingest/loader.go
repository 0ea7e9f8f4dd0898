package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/truestate/sales-backend/internal/observability/metrics"
	"github.com/truestate/sales-backend/internal/sales/domain"
	"github.com/truestate/sales-backend/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// column headers as they appear in the source export
const (
	colTransactionID      = "Transaction ID"
	colDate               = "Date"
	colCustomerID         = "Customer ID"
	colCustomerName       = "Customer Name"
	colPhoneNumber        = "Phone Number"
	colGender             = "Gender"
	colAge                = "Age"
	colCustomerRegion     = "Customer Region"
	colCustomerType       = "Customer Type"
	colProductID          = "Product ID"
	colProductName        = "Product Name"
	colBrand              = "Brand"
	colProductCategory    = "Product Category"
	colTags               = "Tags"
	colQuantity           = "Quantity"
	colPricePerUnit       = "Price per Unit"
	colDiscountPercentage = "Discount Percentage"
	colTotalAmount        = "Total Amount"
	colFinalAmount        = "Final Amount"
	colPaymentMethod      = "Payment Method"
	colOrderStatus        = "Order Status"
	colDeliveryType       = "Delivery Type"
	colStoreID            = "Store ID"
	colStoreLocation      = "Store Location"
	colSalespersonID      = "Salesperson ID"
	colEmployeeName       = "Employee Name"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// Loader maps CSV rows onto store records and appends them in batches.
type Loader struct {
	conn      *gorm.DB
	log       *zap.Logger
	metrics   *metrics.Metrics
	batchSize int
}

// Result summarizes one load run.
type Result struct {
	Loaded            int64
	SkippedBadDate    int64
	SkippedBadID      int64
	SkippedDuplicates int64
}

func NewLoader(conn *gorm.DB, log *zap.Logger, m *metrics.Metrics, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Loader{
		conn:      conn,
		log:       log.Named("ingest"),
		metrics:   m,
		batchSize: batchSize,
	}
}

// LoadFile loads a CSV export from disk.
func (l *Loader) LoadFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return l.Load(ctx, f)
}

// Load reads the header row, then maps and inserts every surviving record.
// Rows with an unparseable date or transaction id are dropped; rows whose
// primary key already exists are skipped so re-runs are idempotent.
func (l *Loader) Load(ctx context.Context, r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, fmt.Errorf("empty file: no header row found")
		}
		return Result{}, fmt.Errorf("read header row: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index[colTransactionID]; !ok {
		return Result{}, fmt.Errorf("missing required column %q", colTransactionID)
	}

	var result Result
	batch := make([]domain.Transaction, 0, l.batchSize)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read row: %w", err)
		}

		field := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		id, err := strconv.ParseInt(field(colTransactionID), 10, 64)
		if err != nil {
			result.SkippedBadID++
			continue
		}

		date, ok := parseDate(field(colDate))
		if !ok {
			result.SkippedBadDate++
			continue
		}

		batch = append(batch, domain.Transaction{
			TransactionID:      id,
			Date:               date,
			CustomerID:         field(colCustomerID),
			CustomerName:       field(colCustomerName),
			PhoneNumber:        field(colPhoneNumber),
			Gender:             field(colGender),
			Age:                parseInt(field(colAge)),
			CustomerRegion:     field(colCustomerRegion),
			CustomerType:       field(colCustomerType),
			ProductID:          field(colProductID),
			ProductName:        field(colProductName),
			Brand:              field(colBrand),
			ProductCategory:    field(colProductCategory),
			Tags:               field(colTags),
			Quantity:           parseInt(field(colQuantity)),
			PricePerUnit:       parseFloat(field(colPricePerUnit)),
			DiscountPercentage: parseFloat(field(colDiscountPercentage)),
			TotalAmount:        parseFloat(field(colTotalAmount)),
			FinalAmount:        parseFloat(field(colFinalAmount)),
			PaymentMethod:      field(colPaymentMethod),
			OrderStatus:        field(colOrderStatus),
			DeliveryType:       field(colDeliveryType),
			StoreID:            field(colStoreID),
			StoreLocation:      field(colStoreLocation),
			SalespersonID:      field(colSalespersonID),
			EmployeeName:       field(colEmployeeName),
		})

		if len(batch) == l.batchSize {
			if err := l.flush(ctx, batch, &result); err != nil {
				return result, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := l.flush(ctx, batch, &result); err != nil {
			return result, err
		}
	}

	l.metrics.RecordRowsSkipped(ctx, "bad_date", result.SkippedBadDate)
	l.metrics.RecordRowsSkipped(ctx, "bad_id", result.SkippedBadID)
	l.metrics.RecordRowsSkipped(ctx, "duplicate", result.SkippedDuplicates)

	l.log.Info("load complete",
		zap.Int64("loaded", result.Loaded),
		zap.Int64("skipped_bad_date", result.SkippedBadDate),
		zap.Int64("skipped_bad_id", result.SkippedBadID),
		zap.Int64("skipped_duplicates", result.SkippedDuplicates),
	)

	return result, nil
}

func (l *Loader) flush(ctx context.Context, batch []domain.Transaction, result *Result) error {
	err := l.conn.WithContext(ctx).Create(&batch).Error
	if err == nil {
		result.Loaded += int64(len(batch))
		l.metrics.RecordRowsLoaded(ctx, int64(len(batch)))
		l.logProgress(result.Loaded)
		return nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return err
	}

	// Re-run over existing data: insert row by row and skip collisions.
	for i := range batch {
		rowErr := l.conn.WithContext(ctx).Create(&batch[i]).Error
		switch {
		case rowErr == nil:
			result.Loaded++
			l.metrics.RecordRowsLoaded(ctx, 1)
		case db.IsDuplicateKeyErr(rowErr):
			result.SkippedDuplicates++
		default:
			return rowErr
		}
	}
	l.logProgress(result.Loaded)
	return nil
}

func (l *Loader) logProgress(loaded int64) {
	if loaded > 0 && loaded%10000 == 0 {
		l.log.Info("loading", zap.Int64("rows", loaded))
	}
}

func parseDate(value string) (domain.Date, bool) {
	if value == "" {
		return domain.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return domain.NewDate(t.Year(), t.Month(), t.Day()), true
		}
	}
	return domain.Date{}, false
}

func parseInt(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}

func parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}
