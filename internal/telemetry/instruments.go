package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/joao-fontenele/restaurant-pos"

// Counters are the business counters recorded by the POS services. They are
// created from the global MeterProvider, so they are no-ops until
// Setup has run.
type Counters struct {
	OrdersCreated     metric.Int64Counter
	OrderTransitions  metric.Int64Counter
	BillsDerived      metric.Int64Counter
	BillSettlements   metric.Int64Counter
	StockAdjustments  metric.Int64Counter
	LowStockAlerts    metric.Int64Counter
	NotificationsSent metric.Int64Counter

	ReservationTransitions metric.Int64Counter
	StaffStatusChanges     metric.Int64Counter
}

func NewCounters() (*Counters, error) {
	meter := otel.Meter(meterName)
	c := &Counters{}

	specs := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&c.OrdersCreated, "pos.orders.created", "Orders accepted by the orders service"},
		{&c.OrderTransitions, "pos.orders.transitions", "Order status transitions applied"},
		{&c.BillsDerived, "pos.bills.derived", "Bills derived from delivered orders"},
		{&c.BillSettlements, "pos.bills.settlements", "Bill settlement status changes"},
		{&c.StockAdjustments, "pos.inventory.adjustments", "Stock ledger adjustments applied"},
		{&c.LowStockAlerts, "pos.inventory.low_stock_alerts", "Items that crossed into low stock"},
		{&c.NotificationsSent, "pos.notifications.sent", "Notification emails sent by the worker"},
		{&c.ReservationTransitions, "pos.reservations.transitions", "Reservation status transitions applied"},
		{&c.StaffStatusChanges, "pos.staff.status_changes", "Employee status changes"},
	}

	for _, s := range specs {
		counter, err := meter.Int64Counter(s.name, metric.WithDescription(s.desc))
		if err != nil {
			return nil, err
		}
		*s.dst = counter
	}

	return c, nil
}
