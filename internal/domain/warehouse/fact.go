package warehouse

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// JoinMode controls how the order/item join treats orphan rows.
type JoinMode string

const (
	// JoinModeLenient drops items without a matching order and orders
	// without items, counting them in the transform report.
	JoinModeLenient JoinMode = "lenient"
	// JoinModeStrict fails validation when the join would drop rows.
	JoinModeStrict JoinMode = "strict"
)

// IsValid checks if the mode is a known JoinMode
func (m JoinMode) IsValid() bool {
	return m == JoinModeLenient || m == JoinModeStrict
}

// TransformReport summarizes a fact transform run.
type TransformReport struct {
	Orders       int
	Items        int
	FactRows     int
	OrphanItems  int // items whose order_id matched no order
	OrphanOrders int // orders with no item rows
	Undelivered  int // fact rows emitted with nil day-metrics
}

// TransformSalesFacts inner-joins orders with their item rows and computes
// the fact measures. One fact row is emitted per item; undelivered orders
// still produce rows, with both day-metrics nil. SaleIDs are assigned
// monotonically in output order, offset by nextSaleID so re-appended
// batches stay unique.
func TransformSalesFacts(orders []RawOrder, items []RawOrderItem, mode JoinMode, nextSaleID int64) ([]SalesFact, *TransformReport, error) {
	if len(orders) == 0 {
		return nil, nil, NewValidationError("fact_transform", "empty order batch")
	}
	if len(items) == 0 {
		return nil, nil, NewValidationError("fact_transform", "empty order item batch")
	}

	// Reverse-lookup index; built once per run, never held by entities.
	itemsByOrder := make(map[string][]RawOrderItem, len(orders))
	for _, it := range items {
		itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], it)
	}

	orderIDs := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		orderIDs[o.OrderID] = struct{}{}
	}

	report := &TransformReport{Orders: len(orders), Items: len(items)}
	for _, it := range items {
		if _, ok := orderIDs[it.OrderID]; !ok {
			report.OrphanItems++
		}
	}

	facts := make([]SalesFact, 0, len(items))
	saleID := nextSaleID
	for _, o := range orders {
		orderItems, ok := itemsByOrder[o.OrderID]
		if !ok {
			report.OrphanOrders++
			continue
		}
		sort.Slice(orderItems, func(i, j int) bool {
			return orderItems[i].OrderItemID < orderItems[j].OrderItemID
		})

		delay := wholeDaysBetween(o.EstimatedDeliveryDate, o.DeliveredCustomerDate)
		shipping := wholeDaysSince(o.PurchaseTimestamp, o.DeliveredCustomerDate)
		if o.DeliveredCustomerDate == nil {
			report.Undelivered += len(orderItems)
		}

		for _, it := range orderItems {
			facts = append(facts, SalesFact{
				SaleID:            saleID,
				OrderID:           o.OrderID,
				OrderItemID:       it.OrderItemID,
				CustomerID:        o.CustomerID,
				SellerID:          it.SellerID,
				ProductID:         it.ProductID,
				OrderDate:         truncateToDay(o.PurchaseTimestamp),
				DeliveryDate:      o.DeliveredCustomerDate,
				Price:             it.Price,
				FreightValue:      it.FreightValue,
				TotalAmount:       it.Price.Add(it.FreightValue),
				DeliveryDelayDays: delay,
				ShippingDays:      shipping,
			})
			saleID++
		}
	}
	report.FactRows = len(facts)

	if mode == JoinModeStrict && (report.OrphanItems > 0 || report.OrphanOrders > 0) {
		return nil, report, WrapValidationError("fact_transform",
			fmt.Sprintf("strict join found %d orphan items and %d orders without items",
				report.OrphanItems, report.OrphanOrders),
			ErrOrphanRows)
	}

	return facts, report, nil
}

// wholeDaysBetween returns delivered minus estimated in whole days, or
// nil when either side is absent. Negative values mean early delivery.
func wholeDaysBetween(estimated, delivered *time.Time) *int {
	if estimated == nil || delivered == nil {
		return nil
	}
	d := int(math.Floor(delivered.Sub(*estimated).Hours() / 24))
	return &d
}

// wholeDaysSince returns delivered minus purchase in whole days, or nil
// when the order has not been delivered.
func wholeDaysSince(purchase time.Time, delivered *time.Time) *int {
	if delivered == nil {
		return nil
	}
	d := int(math.Floor(delivered.Sub(purchase).Hours() / 24))
	return &d
}
