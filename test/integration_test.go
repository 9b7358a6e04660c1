//go:build integration

package test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/restaurant-pos/internal/billing"
	"github.com/joao-fontenele/restaurant-pos/internal/domain"
	"github.com/joao-fontenele/restaurant-pos/internal/inventory"
	"github.com/joao-fontenele/restaurant-pos/internal/messaging"
	"github.com/joao-fontenele/restaurant-pos/internal/money"
	"github.com/joao-fontenele/restaurant-pos/internal/orders"
	"github.com/joao-fontenele/restaurant-pos/internal/reservations"
	"github.com/joao-fontenele/restaurant-pos/internal/staff"
	"github.com/joao-fontenele/restaurant-pos/internal/worker"
)

const tomatoesID = "7f3c6a52-1d0e-4a8b-9c1e-000000000003"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newOrdersService(t *testing.T, db *sql.DB, pub messaging.Publisher) *orders.Service {
	t.Helper()
	svc, err := orders.NewService(orders.NewOrderRepository(db), pub, decimal.RequireFromString("0.16"), discard)
	if err != nil {
		t.Fatalf("failed to create orders service: %v", err)
	}
	return svc
}

func newOrdersServer(t *testing.T, svc *orders.Service) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	orders.NewHandler(svc, discard).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newBillingService(t *testing.T, db *sql.DB, ordersURL string) *billing.Service {
	t.Helper()
	client := billing.NewOrdersClient(ordersURL, &http.Client{Timeout: 10 * time.Second})
	svc, err := billing.NewService(billing.NewBillRepository(db), client, discard)
	if err != nil {
		t.Fatalf("failed to create billing service: %v", err)
	}
	return svc
}

func createDeliveredOrder(ctx context.Context, t *testing.T, svc *orders.Service) *domain.Order {
	t.Helper()
	table := "T4"
	customer := "wanjiku"
	order, err := svc.Create(ctx, orders.CreateOrderInput{
		Type:               domain.OrderTypeDineIn,
		TableID:            &table,
		CustomerID:         &customer,
		DiscountPercentage: decimal.NewFromInt(10),
		Items: []domain.LineItem{
			{Name: "Burger", UnitPrice: decimal.NewFromInt(1000), Quantity: 2},
			{Name: "Soda", UnitPrice: decimal.RequireFromString("150.50"), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	for _, status := range []domain.OrderStatus{
		domain.OrderStatusConfirmed,
		domain.OrderStatusPreparing,
		domain.OrderStatusReady,
		domain.OrderStatusDelivered,
	} {
		if order, err = svc.UpdateStatus(ctx, order.ID, status); err != nil {
			t.Fatalf("failed to move order to %s: %v", status, err)
		}
	}
	return order
}

func TestOrderToBillFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)

	ordersSvc := newOrdersService(t, db, nil)
	ordersServer := newOrdersServer(t, ordersSvc)

	billingMux := http.NewServeMux()
	billing.NewHandler(newBillingService(t, db, ordersServer.URL), discard).Register(billingMux)

	order := createDeliveredOrder(ctx, t, ordersSvc)
	if order.CompletedAt == nil {
		t.Fatal("expected completed_at to be set on delivery")
	}

	body := `{"order_id":"` + order.ID + `","payment_method":"credit_card","tip_amount":"100"}`
	req := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	billingMux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var bill domain.Bill
	if err := json.NewDecoder(rec.Body).Decode(&bill); err != nil {
		t.Fatalf("failed to decode bill: %v", err)
	}
	if bill.OrderID != order.ID {
		t.Fatalf("expected order_id %s, got %s", order.ID, bill.OrderID)
	}
	if !bill.TaxAmount.Equal(order.Totals.TaxAmount.Round(2)) {
		t.Fatalf("expected tax %s carried from order, got %s", order.Totals.TaxAmount.Round(2), bill.TaxAmount)
	}
	if bill.Status != domain.BillStatusPending {
		t.Fatalf("expected status %s, got %s", domain.BillStatusPending, bill.Status)
	}

	req = httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	billingMux.ServeHTTP(rec, req)

	if rec.Code != http.StatusPreconditionFailed {
		t.Fatalf("expected status %d for second bill, got %d: %s", http.StatusPreconditionFailed, rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPatch, "/bills/"+bill.ID+"/status", strings.NewReader(`{"status":"paid"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	billingMux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var paid domain.Bill
	if err := json.NewDecoder(rec.Body).Decode(&paid); err != nil {
		t.Fatalf("failed to decode bill: %v", err)
	}
	if paid.PaidAt == nil {
		t.Fatal("expected paid_at to be set")
	}
}

func TestConcurrentBillingCreatesOneBill(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)

	ordersSvc := newOrdersService(t, db, nil)
	ordersServer := newOrdersServer(t, ordersSvc)
	billingSvc := newBillingService(t, db, ordersServer.URL)

	order := createDeliveredOrder(ctx, t, ordersSvc)

	const attempts = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := billingSvc.CreateBill(ctx, order.ID, billing.BillInput{PaymentMethod: domain.PaymentMethodCash})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrPreconditionFailed):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Fatalf("expected exactly 1 bill, got %d", created)
	}
	if rejected != attempts-1 {
		t.Fatalf("expected %d rejections, got %d", attempts-1, rejected)
	}
}

func TestConcurrentStatusUpdate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)

	svc := newOrdersService(t, db, nil)
	order, err := svc.Create(ctx, orders.CreateOrderInput{
		Type:  domain.OrderTypeTakeout,
		Items: []domain.LineItem{{Name: "Chips", UnitPrice: decimal.NewFromInt(200), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.UpdateStatus(ctx, order.ID, domain.OrderStatusConfirmed)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, domain.ErrIllegalTransition) {
			t.Fatalf("expected illegal transition, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful update, got %d", succeeded)
	}

	stored, err := svc.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}
	if stored.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected status %s, got %s", domain.OrderStatusConfirmed, stored.Status)
	}
}

func TestInventoryAdjustments(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)

	svc, err := inventory.NewService(inventory.NewInventoryRepository(db), nil, discard)
	if err != nil {
		t.Fatalf("failed to create inventory service: %v", err)
	}

	valuation, err := svc.Valuation(ctx)
	if err != nil {
		t.Fatalf("failed to value inventory: %v", err)
	}
	if valuation.ItemCount != 5 {
		t.Fatalf("expected 5 seeded items, got %d", valuation.ItemCount)
	}
	if !valuation.TotalValue.Equal(decimal.RequireFromString("26901")) {
		t.Fatalf("expected total value 26901.00, got %s", valuation.TotalValue)
	}

	_, err = svc.Adjust(ctx, tomatoesID, -100)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative stock, got %v", err)
	}

	item, err := svc.Adjust(ctx, tomatoesID, -2)
	if err != nil {
		t.Fatalf("failed to adjust stock: %v", err)
	}
	if item.CurrentStock != 10 {
		t.Fatalf("expected stock 10, got %d", item.CurrentStock)
	}
	if item.Tier != domain.StockTierLow {
		t.Fatalf("expected tier %s, got %s", domain.StockTierLow, item.Tier)
	}

	low, err := svc.LowStock(ctx)
	if err != nil {
		t.Fatalf("failed to list low stock: %v", err)
	}
	if len(low) != 3 {
		t.Fatalf("expected 3 low stock items, got %d", len(low))
	}

	restocked, err := svc.Adjust(ctx, tomatoesID, 20)
	if err != nil {
		t.Fatalf("failed to restock: %v", err)
	}
	if restocked.LastRestockedAt == nil {
		t.Fatal("expected last_restocked_at to be set")
	}
}

func TestReservationTableSlots(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)

	svc, err := reservations.NewService(reservations.NewReservationRepository(db), discard)
	if err != nil {
		t.Fatalf("failed to create reservations service: %v", err)
	}

	table := "T7"
	in := reservations.ReservationInput{
		CustomerName: "Achieng", PartySize: 4, TableID: &table, Date: "2026-06-12", Time: "19:30",
	}

	first, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}
	if first.Date != "2026-06-12" || first.Time != "19:30" {
		t.Fatalf("expected slot 2026-06-12 19:30, got %s %s", first.Date, first.Time)
	}

	_, err = svc.Create(ctx, in)
	if !errors.Is(err, domain.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failed for a held table, got %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, first.ID, domain.ReservationStatusCancelled); err != nil {
		t.Fatalf("failed to cancel reservation: %v", err)
	}
	if _, err := svc.Create(ctx, in); err != nil {
		t.Fatalf("expected cancelled slot to be free, got %v", err)
	}

	day, err := svc.List(ctx, "2026-06-12")
	if err != nil {
		t.Fatalf("failed to list reservations: %v", err)
	}
	if len(day) != 2 {
		t.Fatalf("expected 2 reservations on the day, got %d", len(day))
	}
}

func TestStaffRoster(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)

	svc, err := staff.NewService(staff.NewEmployeeRepository(db), discard)
	if err != nil {
		t.Fatalf("failed to create staff service: %v", err)
	}

	cook, err := svc.Hire(ctx, staff.EmployeeInput{
		Name: "Kamau", Position: "Cook", Department: "Kitchen",
		HourlyRate: decimal.RequireFromString("312.50"), HireDate: "2025-01-06",
	})
	if err != nil {
		t.Fatalf("failed to hire: %v", err)
	}
	if _, err := svc.Hire(ctx, staff.EmployeeInput{Name: "Atieno", Position: "Server", Department: "Front of House"}); err != nil {
		t.Fatalf("failed to hire: %v", err)
	}

	stored, err := svc.SetStatus(ctx, cook.ID, domain.EmployeeStatusOnLeave)
	if err != nil {
		t.Fatalf("failed to set status: %v", err)
	}
	if stored.HireDate != "2025-01-06" {
		t.Fatalf("expected hire date 2025-01-06, got %s", stored.HireDate)
	}

	kitchen, err := svc.List(ctx, staff.Filter{Department: "Kitchen"})
	if err != nil {
		t.Fatalf("failed to list staff: %v", err)
	}
	if len(kitchen) != 1 || kitchen[0].Status != domain.EmployeeStatusOnLeave {
		t.Fatalf("expected 1 kitchen employee on leave, got %+v", kitchen)
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("failed to summarize staff: %v", err)
	}
	if summary.Total != 2 || summary.Active != 1 || summary.OnLeave != 1 {
		t.Fatalf("expected 2 employees, 1 active, 1 on leave, got %+v", summary)
	}
	if !summary.MonthlyPayroll.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected payroll 50000, got %s", summary.MonthlyPayroll)
	}
}

type emailCapture struct {
	mu     sync.Mutex
	emails []map[string]string
}

func (e *emailCapture) handler(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	e.mu.Lock()
	e.emails = append(e.emails, req)
	e.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, `{"status":"sent"}`)
}

func (e *emailCapture) getEmails() []map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	result := make([]map[string]string, len(e.emails))
	copy(result, e.emails)
	return result
}

func newNotificationHandler(t *testing.T) (*worker.NotificationHandler, *emailCapture) {
	t.Helper()
	capture := &emailCapture{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /send", capture.handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	h, err := worker.NewNotificationHandler(server.URL, "manager@example.com", money.NewFormatter("KES"),
		&http.Client{Timeout: 10 * time.Second}, discard)
	if err != nil {
		t.Fatalf("failed to create notification handler: %v", err)
	}
	return h, capture
}

func waitForEmails(t *testing.T, capture *emailCapture, n int) []map[string]string {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		if emails := capture.getEmails(); len(emails) >= n {
			return emails
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Fatalf("expected %d emails, got %d", n, len(capture.getEmails()))
	return nil
}

func createTopic(ctx context.Context, t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		t.Fatalf("failed to dial kafka: %v", err)
	}
	defer func() { _ = conn.Close() }()

	controller, err := conn.Controller()
	if err != nil {
		t.Fatalf("failed to find kafka controller: %v", err)
	}
	cconn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		t.Fatalf("failed to dial kafka controller: %v", err)
	}
	defer func() { _ = cconn.Close() }()

	if err := cconn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}); err != nil {
		t.Fatalf("failed to create topic %s: %v", topic, err)
	}
}

func TestDeliveredOrderSendsReceiptOverKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)

	brokers := SetupKafka(ctx, t)
	createTopic(ctx, t, brokers[0], domain.TopicOrderDelivered)

	producer := messaging.NewProducer(brokers)
	defer func() { _ = producer.Close() }()

	ordersSvc := newOrdersService(t, db, producer)
	order := createDeliveredOrder(ctx, t, ordersSvc)

	notifications, capture := newNotificationHandler(t)
	consumer := messaging.NewConsumer(brokers, []string{domain.TopicOrderDelivered}, "notification-worker-test",
		messaging.WithStartOffset(kafka.FirstOffset))
	defer func() { _ = consumer.Close() }()

	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = consumer.Consume(consumeCtx, notifications.Handle) }()

	emails := waitForEmails(t, capture, 1)
	email := emails[0]
	if email["to"] != "wanjiku@example.com" {
		t.Fatalf("expected receipt to wanjiku@example.com, got %s", email["to"])
	}
	if !strings.Contains(email["subject"], order.OrderNumber) {
		t.Fatalf("expected subject to contain %s, got: %s", order.OrderNumber, email["subject"])
	}
	if !strings.Contains(email["body"], "2 x Burger") {
		t.Fatalf("expected body to list burgers, got: %s", email["body"])
	}
}

func TestLowStockAlertOverAMQP(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)

	amqpURL := SetupRabbitMQ(ctx, t)

	// The queue must be bound before anything is published.
	consumer, err := messaging.DialAMQPConsumer(amqpURL, "pos.notifications", []string{domain.TopicInventoryLowStock})
	if err != nil {
		t.Fatalf("failed to dial consumer: %v", err)
	}
	defer func() { _ = consumer.Close() }()

	publisher, err := messaging.DialAMQPPublisher(amqpURL)
	if err != nil {
		t.Fatalf("failed to dial publisher: %v", err)
	}
	defer func() { _ = publisher.Close() }()

	svc, err := inventory.NewService(inventory.NewInventoryRepository(db), publisher, discard)
	if err != nil {
		t.Fatalf("failed to create inventory service: %v", err)
	}

	notifications, capture := newNotificationHandler(t)
	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = consumer.Consume(consumeCtx, notifications.Handle) }()

	if _, err := svc.Adjust(ctx, tomatoesID, -2); err != nil {
		t.Fatalf("failed to adjust stock: %v", err)
	}

	emails := waitForEmails(t, capture, 1)
	email := emails[0]
	if email["to"] != "manager@example.com" {
		t.Fatalf("expected alert to manager@example.com, got %s", email["to"])
	}
	if email["subject"] != "Restock needed: Tomatoes (Low Stock)" {
		t.Fatalf("unexpected subject: %s", email["subject"])
	}
}
