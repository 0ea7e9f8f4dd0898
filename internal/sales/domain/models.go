package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component. It is stored and
// serialized as YYYY-MM-DD so range comparisons behave the same across
// sqlite, postgres and mysql.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string, rejecting invalid calendar dates.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("invalid date %s", raw)
	}
	parsed, err := ParseDate(raw[1 : len(raw)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = Date{time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)}
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

func (d *Date) scanString(value string) error {
	if len(value) > len(dateLayout) {
		value = value[:len(dateLayout)]
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType keeps the column a plain date across dialects.
func (Date) GormDataType() string {
	return "date"
}

// Transaction is one sales record. The table is fully denormalized:
// customer, product, store and employee attributes are duplicated per row.
type Transaction struct {
	TransactionID      int64   `gorm:"column:transaction_id;primaryKey" json:"transaction_id"`
	Date               Date    `gorm:"column:date;index" json:"date"`
	CustomerID         string  `gorm:"column:customer_id;index" json:"customer_id"`
	CustomerName       string  `gorm:"column:customer_name;index" json:"customer_name"`
	PhoneNumber        string  `gorm:"column:phone_number;index" json:"phone_number"`
	Gender             string  `gorm:"column:gender;index" json:"gender"`
	Age                int     `gorm:"column:age;index" json:"age"`
	CustomerRegion     string  `gorm:"column:customer_region;index" json:"customer_region"`
	CustomerType       string  `gorm:"column:customer_type" json:"customer_type"`
	ProductID          string  `gorm:"column:product_id;index" json:"product_id"`
	ProductName        string  `gorm:"column:product_name" json:"product_name"`
	Brand              string  `gorm:"column:brand" json:"brand"`
	ProductCategory    string  `gorm:"column:product_category;index" json:"product_category"`
	Tags               string  `gorm:"column:tags;index" json:"tags"`
	Quantity           int     `gorm:"column:quantity;index" json:"quantity"`
	PricePerUnit       float64 `gorm:"column:price_per_unit" json:"price_per_unit"`
	DiscountPercentage float64 `gorm:"column:discount_percentage" json:"discount_percentage"`
	TotalAmount        float64 `gorm:"column:total_amount" json:"total_amount"`
	FinalAmount        float64 `gorm:"column:final_amount" json:"final_amount"`
	PaymentMethod      string  `gorm:"column:payment_method;index" json:"payment_method"`
	OrderStatus        string  `gorm:"column:order_status" json:"order_status"`
	DeliveryType       string  `gorm:"column:delivery_type" json:"delivery_type"`
	StoreID            string  `gorm:"column:store_id" json:"store_id"`
	StoreLocation      string  `gorm:"column:store_location" json:"store_location"`
	SalespersonID      string  `gorm:"column:salesperson_id" json:"salesperson_id"`
	EmployeeName       string  `gorm:"column:employee_name" json:"employee_name"`
}

func (Transaction) TableName() string {
	return "sales_transactions"
}
