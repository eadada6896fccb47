package extract

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/olist/olap-engine/internal/domain/warehouse"
)

// Timestamp layouts accepted by the source extracts, tried in order.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var validate = validator.New()

func requireHeaders(p *Parser, op string, required []string) error {
	if missing := p.MissingHeaders(required); len(missing) > 0 {
		return warehouse.WrapValidationError(op,
			fmt.Sprintf("missing columns: %s", strings.Join(missing, ", ")),
			warehouse.ErrMissingColumn)
	}
	return nil
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// requiredTimestamp rejects empty and malformed values.
func requiredTimestamp(op, column, value string, line int) (time.Time, error) {
	if value == "" {
		return time.Time{}, warehouse.WrapValidationError(op,
			fmt.Sprintf("row %d: empty %s", line, column), warehouse.ErrMalformedDate)
	}
	t, err := parseTimestamp(value)
	if err != nil {
		return time.Time{}, warehouse.WrapValidationError(op,
			fmt.Sprintf("row %d: bad %s %q", line, column, value), warehouse.ErrMalformedDate)
	}
	return t, nil
}

// optionalTimestamp maps empty to nil but still rejects malformed values.
func optionalTimestamp(op, column, value string, line int) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseTimestamp(value)
	if err != nil {
		return nil, warehouse.WrapValidationError(op,
			fmt.Sprintf("row %d: bad %s %q", line, column, value), warehouse.ErrMalformedDate)
	}
	return &t, nil
}

func parseDecimal(op, column, value string, line int) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, warehouse.WrapValidationError(op,
			fmt.Sprintf("row %d: bad %s %q", line, column, value), err)
	}
	return d, nil
}

func parseFloat(op, column, value string, line int) (float64, error) {
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, warehouse.WrapValidationError(op,
			fmt.Sprintf("row %d: bad %s %q", line, column, value), err)
	}
	return f, nil
}

// ReadCustomers parses the customer extract.
func ReadCustomers(r io.Reader) ([]warehouse.RawCustomer, error) {
	const op = "extract.customers"
	p, err := NewParser(r)
	if err != nil {
		return nil, warehouse.WrapValidationError(op, "unreadable file", err)
	}
	if err := requireHeaders(p, op, []string{"customer_id", "customer_unique_id"}); err != nil {
		return nil, err
	}
	rows, err := p.ReadAllRows()
	if err != nil {
		return nil, warehouse.WrapValidationError(op, "parse failure", err)
	}

	out := make([]warehouse.RawCustomer, 0, len(rows))
	for _, row := range rows {
		c := warehouse.RawCustomer{
			CustomerID:       row.Get("customer_id"),
			CustomerUniqueID: row.Get("customer_unique_id"),
			ZipCode:          row.Get("customer_zip_code_prefix"),
			City:             row.Get("customer_city"),
			State:            row.Get("customer_state"),
		}
		if err := validate.Struct(c); err != nil {
			return nil, warehouse.WrapValidationError(op,
				fmt.Sprintf("row %d: invalid customer", row.LineNumber), err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ReadOrders parses the order extract. The purchase timestamp is
// mandatory; delivery timestamps may be absent for in-flight orders.
func ReadOrders(r io.Reader) ([]warehouse.RawOrder, error) {
	const op = "extract.orders"
	p, err := NewParser(r)
	if err != nil {
		return nil, warehouse.WrapValidationError(op, "unreadable file", err)
	}
	if err := requireHeaders(p, op, []string{"order_id", "customer_id", "order_purchase_timestamp"}); err != nil {
		return nil, err
	}
	rows, err := p.ReadAllRows()
	if err != nil {
		return nil, warehouse.WrapValidationError(op, "parse failure", err)
	}

	out := make([]warehouse.RawOrder, 0, len(rows))
	for _, row := range rows {
		purchased, err := requiredTimestamp(op, "order_purchase_timestamp", row.Get("order_purchase_timestamp"), row.LineNumber)
		if err != nil {
			return nil, err
		}
		approved, err := optionalTimestamp(op, "order_approved_at", row.Get("order_approved_at"), row.LineNumber)
		if err != nil {
			return nil, err
		}
		carrier, err := optionalTimestamp(op, "order_delivered_carrier_date", row.Get("order_delivered_carrier_date"), row.LineNumber)
		if err != nil {
			return nil, err
		}
		delivered, err := optionalTimestamp(op, "order_delivered_customer_date", row.Get("order_delivered_customer_date"), row.LineNumber)
		if err != nil {
			return nil, err
		}
		estimated, err := optionalTimestamp(op, "order_estimated_delivery_date", row.Get("order_estimated_delivery_date"), row.LineNumber)
		if err != nil {
			return nil, err
		}

		o := warehouse.RawOrder{
			OrderID:               row.Get("order_id"),
			CustomerID:            row.Get("customer_id"),
			Status:                row.Get("order_status"),
			PurchaseTimestamp:     purchased,
			ApprovedAt:            approved,
			DeliveredCarrierDate:  carrier,
			DeliveredCustomerDate: delivered,
			EstimatedDeliveryDate: estimated,
		}
		if err := validate.Struct(o); err != nil {
			return nil, warehouse.WrapValidationError(op,
				fmt.Sprintf("row %d: invalid order", row.LineNumber), err)
		}
		out = append(out, o)
	}
	return out, nil
}

// ReadOrderItems parses the order item extract.
func ReadOrderItems(r io.Reader) ([]warehouse.RawOrderItem, error) {
	const op = "extract.order_items"
	p, err := NewParser(r)
	if err != nil {
		return nil, warehouse.WrapValidationError(op, "unreadable file", err)
	}
	if err := requireHeaders(p, op, []string{"order_id", "order_item_id", "product_id", "seller_id"}); err != nil {
		return nil, err
	}
	rows, err := p.ReadAllRows()
	if err != nil {
		return nil, warehouse.WrapValidationError(op, "parse failure", err)
	}

	out := make([]warehouse.RawOrderItem, 0, len(rows))
	for _, row := range rows {
		itemID, err := strconv.Atoi(row.Get("order_item_id"))
		if err != nil {
			return nil, warehouse.WrapValidationError(op,
				fmt.Sprintf("row %d: bad order_item_id %q", row.LineNumber, row.Get("order_item_id")), err)
		}
		price, err := parseDecimal(op, "price", row.Get("price"), row.LineNumber)
		if err != nil {
			return nil, err
		}
		freight, err := parseDecimal(op, "freight_value", row.Get("freight_value"), row.LineNumber)
		if err != nil {
			return nil, err
		}

		item := warehouse.RawOrderItem{
			OrderID:      row.Get("order_id"),
			OrderItemID:  itemID,
			ProductID:    row.Get("product_id"),
			SellerID:     row.Get("seller_id"),
			Price:        price,
			FreightValue: freight,
		}
		if err := validate.Struct(item); err != nil {
			return nil, warehouse.WrapValidationError(op,
				fmt.Sprintf("row %d: invalid order item", row.LineNumber), err)
		}
		out = append(out, item)
	}
	return out, nil
}

// ReadProducts parses the product extract.
func ReadProducts(r io.Reader) ([]warehouse.RawProduct, error) {
	const op = "extract.products"
	p, err := NewParser(r)
	if err != nil {
		return nil, warehouse.WrapValidationError(op, "unreadable file", err)
	}
	if err := requireHeaders(p, op, []string{"product_id"}); err != nil {
		return nil, err
	}
	rows, err := p.ReadAllRows()
	if err != nil {
		return nil, warehouse.WrapValidationError(op, "parse failure", err)
	}

	out := make([]warehouse.RawProduct, 0, len(rows))
	for _, row := range rows {
		weight, err := parseFloat(op, "product_weight_g", row.Get("product_weight_g"), row.LineNumber)
		if err != nil {
			return nil, err
		}
		length, err := parseFloat(op, "product_length_cm", row.Get("product_length_cm"), row.LineNumber)
		if err != nil {
			return nil, err
		}
		height, err := parseFloat(op, "product_height_cm", row.Get("product_height_cm"), row.LineNumber)
		if err != nil {
			return nil, err
		}
		width, err := parseFloat(op, "product_width_cm", row.Get("product_width_cm"), row.LineNumber)
		if err != nil {
			return nil, err
		}

		prod := warehouse.RawProduct{
			ProductID:    row.Get("product_id"),
			CategoryName: row.Get("product_category_name"),
			WeightG:      weight,
			LengthCm:     length,
			HeightCm:     height,
			WidthCm:      width,
		}
		if err := validate.Struct(prod); err != nil {
			return nil, warehouse.WrapValidationError(op,
				fmt.Sprintf("row %d: invalid product", row.LineNumber), err)
		}
		out = append(out, prod)
	}
	return out, nil
}

// ReadSellers parses the seller extract.
func ReadSellers(r io.Reader) ([]warehouse.RawSeller, error) {
	const op = "extract.sellers"
	p, err := NewParser(r)
	if err != nil {
		return nil, warehouse.WrapValidationError(op, "unreadable file", err)
	}
	if err := requireHeaders(p, op, []string{"seller_id"}); err != nil {
		return nil, err
	}
	rows, err := p.ReadAllRows()
	if err != nil {
		return nil, warehouse.WrapValidationError(op, "parse failure", err)
	}

	out := make([]warehouse.RawSeller, 0, len(rows))
	for _, row := range rows {
		s := warehouse.RawSeller{
			SellerID: row.Get("seller_id"),
			ZipCode:  row.Get("seller_zip_code_prefix"),
			City:     row.Get("seller_city"),
			State:    row.Get("seller_state"),
		}
		if err := validate.Struct(s); err != nil {
			return nil, warehouse.WrapValidationError(op,
				fmt.Sprintf("row %d: invalid seller", row.LineNumber), err)
		}
		out = append(out, s)
	}
	return out, nil
}
