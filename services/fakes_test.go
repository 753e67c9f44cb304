package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func item(id string, price int64, qty int) models.OrderItem {
	return models.OrderItem{ID: id, Name: "Taom " + id, Price: price, Quantity: qty, Status: models.ItemStatusServed}
}

func cancelledItem(id string, price int64, qty int) models.OrderItem {
	it := item(id, price, qty)
	it.Status = models.ItemStatusCancelled
	return it
}

func deletedItem(id string, price int64, qty int) models.OrderItem {
	it := item(id, price, qty)
	it.IsDeleted = true
	return it
}

func paidItem(id string, price int64, qty int, session string) models.OrderItem {
	it := item(id, price, qty)
	at := testNow.Add(-time.Minute)
	_ = it.Settle(models.PartiallySettled(session, &at, models.PaymentTypeCash))
	return it
}

func dineIn(id string, items ...models.OrderItem) models.Order {
	return models.Order{
		ID:            id,
		OrderNumber:   7,
		OrderType:     models.OrderTypeDineIn,
		Status:        models.OrderStatusActive,
		PaymentStatus: models.PaymentStatusPending,
		TableName:     "Stol 4",
		Waiter:        models.Waiter{ID: "w1", Name: "Aziz"},
		CreatedAt:     testNow.Add(-30 * time.Minute),
		Items:         items,
	}
}

func takeaway(id string, items ...models.OrderItem) models.Order {
	o := dineIn(id, items...)
	o.OrderType = models.OrderTypeSaboy
	n := 3
	o.SaboyNumber = &n
	o.TableName = ""
	return o
}

func paidOrder(o models.Order) models.Order {
	o.PaymentStatus = models.PaymentStatusPaid
	o.Status = models.OrderStatusPaid
	o.PaymentType = models.PaymentTypeCash
	at := testNow
	o.PaidAt = &at
	for i := range o.Items {
		_ = o.Items[i].Settle(models.FullySettled("", &at, models.PaymentTypeCash))
	}
	return o
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fakeSource is an OrderSource with canned answers.
type fakeSource struct {
	mu          sync.Mutex
	orders      []models.Order
	summary     models.DailySummary
	shift       *models.Shift
	shiftErr    error
	ordersErr   error
	shiftCalls  int
	orderCalls  int
	lastShiftID string
}

func (f *fakeSource) TodayOrders(ctx context.Context, shiftID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderCalls++
	f.lastShiftID = shiftID
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	return cloneOrders(f.orders), nil
}

func (f *fakeSource) DailySummary(ctx context.Context, shiftID string) (models.DailySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summary, nil
}

func (f *fakeSource) ActiveShift(ctx context.Context) (*models.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shiftCalls++
	if f.shiftErr != nil {
		err := f.shiftErr
		f.shiftErr = nil
		return nil, err
	}
	return f.shift, nil
}

func (f *fakeSource) calls() (shift, orders int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shiftCalls, f.orderCalls
}

type hubEvent struct {
	Name string
	Data interface{}
}

type fakeHub struct {
	mu     sync.Mutex
	events []hubEvent
}

func (h *fakeHub) Broadcast(event string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, hubEvent{Name: event, Data: data})
}

func (h *fakeHub) names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Name
	}
	return out
}

func (h *fakeHub) last(name string) (interface{}, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.events) - 1; i >= 0; i-- {
		if h.events[i].Name == name {
			return h.events[i].Data, true
		}
	}
	return nil, false
}

type fakeBills struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (b *fakeBills) PrintBill(ctx context.Context, orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, orderID)
	return b.err
}

func (b *fakeBills) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

// fakeBackend implements CashierBackend on top of fakeSource.
type fakeBackend struct {
	fakeSource

	token        string
	session      models.Session
	loginErr     error
	payOrder     models.Order
	payItems     models.ItemsPayment
	saboy        models.Order
	added        models.Order
	err          error
	payCalls     int
	itemsCalls   int
	saboyCalls   int
	addCalls     int
	merged       []MergeRequest
	stats        []models.WaiterStat
	menu         []models.MenuItem
	categories   []models.Category
	lastTender   models.PaymentType
	lastSplit    *models.PaymentSplit
	lastItemIDs  []string
	lastNewItems []models.ItemRequest

	payCtxErr      error
	onUnauthorized func()
}

// fail returns err, reporting a 401 to the hook first the way the REST client does.
func (f *fakeBackend) fail() error {
	var authErr *AuthError
	if errors.As(f.err, &authErr) && f.onUnauthorized != nil {
		f.onUnauthorized()
	}
	return f.err
}

func (f *fakeBackend) Login(ctx context.Context, phone, password string) (models.Session, error) {
	if f.loginErr != nil {
		return models.Session{}, f.loginErr
	}
	return f.session, nil
}

func (f *fakeBackend) SetToken(token string) { f.token = token }

func (f *fakeBackend) PayOrder(ctx context.Context, orderID string, tender models.PaymentType, split *models.PaymentSplit) (models.Order, error) {
	f.payCalls++
	f.lastTender, f.lastSplit = tender, split
	f.payCtxErr = ctx.Err()
	if f.err != nil {
		return models.Order{}, f.fail()
	}
	return f.payOrder, nil
}

func (f *fakeBackend) PayItems(ctx context.Context, orderID string, itemIDs []string, tender models.PaymentType, split *models.PaymentSplit) (models.ItemsPayment, error) {
	f.itemsCalls++
	f.lastTender, f.lastSplit, f.lastItemIDs = tender, split, itemIDs
	if f.err != nil {
		return models.ItemsPayment{}, f.fail()
	}
	return f.payItems, nil
}

func (f *fakeBackend) CreateSaboy(ctx context.Context, items []models.ItemRequest, tender models.PaymentType, split *models.PaymentSplit) (models.Order, error) {
	f.saboyCalls++
	f.lastTender, f.lastSplit, f.lastNewItems = tender, split, items
	if f.err != nil {
		return models.Order{}, f.fail()
	}
	return f.saboy, nil
}

func (f *fakeBackend) AddItems(ctx context.Context, orderID string, items []models.ItemRequest) (models.Order, error) {
	f.addCalls++
	f.lastNewItems = items
	if f.err != nil {
		return models.Order{}, f.fail()
	}
	return f.added, nil
}

func (f *fakeBackend) MergeOrders(ctx context.Context, req MergeRequest) error {
	if f.err != nil {
		return f.fail()
	}
	f.merged = append(f.merged, req)
	return nil
}

func (f *fakeBackend) Menu(ctx context.Context) ([]models.MenuItem, error) {
	return f.menu, f.err
}

func (f *fakeBackend) Categories(ctx context.Context) ([]models.Category, error) {
	return f.categories, f.err
}

func (f *fakeBackend) WaiterStats(ctx context.Context, shiftID string) ([]models.WaiterStat, error) {
	return f.stats, f.err
}

type fakePrinter struct {
	receipts []models.PaymentReceipt
	reports  []models.DailyReport
	printer  []string
	err      error
}

func (p *fakePrinter) PrintPayment(ctx context.Context, printerName string, receipt models.PaymentReceipt) error {
	p.printer = append(p.printer, printerName)
	p.receipts = append(p.receipts, receipt)
	return p.err
}

func (p *fakePrinter) PrintDailyReport(ctx context.Context, printerName string, report models.DailyReport) error {
	p.printer = append(p.printer, printerName)
	p.reports = append(p.reports, report)
	return p.err
}

type fakePrefs struct {
	printer string
	session models.Session
	has     bool
	cleared int
}

func (p *fakePrefs) SelectedPrinter() string { return p.printer }

func (p *fakePrefs) Session() (models.Session, bool) { return p.session, p.has }

func (p *fakePrefs) SaveSession(s models.Session) error {
	p.session, p.has = s, true
	return nil
}

func (p *fakePrefs) ClearSession() error {
	p.session, p.has = models.Session{}, false
	p.cleared++
	return nil
}

type published struct {
	Key     string
	Payload interface{}
}

type fakeAudit struct {
	events []published
}

func (a *fakeAudit) Publish(ctx context.Context, key string, payload interface{}) {
	a.events = append(a.events, published{Key: key, Payload: payload})
}

type fakeReloader struct {
	signals int
	shifts  int
}

func (r *fakeReloader) Signal()       { r.signals++ }
func (r *fakeReloader) RefreshShift() { r.shifts++ }
