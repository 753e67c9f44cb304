package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/utils"
)

// Audit routing keys.
const (
	AuditPaymentSettled = "payment.settled"
	AuditSaboyCreated   = "saboy.created"
	AuditOrdersMerged   = "orders.merged"
)

// CashierBackend is everything the desk asks of the remote backend.
type CashierBackend interface {
	OrderSource
	Login(ctx context.Context, phone, password string) (models.Session, error)
	SetToken(token string)
	PayOrder(ctx context.Context, orderID string, tender models.PaymentType, split *models.PaymentSplit) (models.Order, error)
	PayItems(ctx context.Context, orderID string, itemIDs []string, tender models.PaymentType, split *models.PaymentSplit) (models.ItemsPayment, error)
	CreateSaboy(ctx context.Context, items []models.ItemRequest, tender models.PaymentType, split *models.PaymentSplit) (models.Order, error)
	AddItems(ctx context.Context, orderID string, items []models.ItemRequest) (models.Order, error)
	MergeOrders(ctx context.Context, req MergeRequest) error
	Menu(ctx context.Context) ([]models.MenuItem, error)
	Categories(ctx context.Context) ([]models.Category, error)
	WaiterStats(ctx context.Context, shiftID string) ([]models.WaiterStat, error)
}

// ReceiptPrinter is the print agent as seen by the desk.
type ReceiptPrinter interface {
	PrintPayment(ctx context.Context, printerName string, receipt models.PaymentReceipt) error
	PrintDailyReport(ctx context.Context, printerName string, report models.DailyReport) error
}

// Preferences is the locally persisted state the desk reads on every operation.
type Preferences interface {
	SelectedPrinter() string
	Session() (models.Session, bool)
	SaveSession(session models.Session) error
	ClearSession() error
}

// AuditPublisher receives settlement and merge events. Publishing is fire and forget.
type AuditPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{})
}

// Reloader is satisfied by the Reconciler.
type Reloader interface {
	Signal()
	RefreshShift()
}

// PayRequest is the cashier's payment intent for one order.
type PayRequest struct {
	Mode        PaymentMode          `json:"mode"`
	ItemIDs     []string             `json:"itemIds"`
	PaymentType models.PaymentType   `json:"paymentType"`
	Split       *models.PaymentSplit `json:"paymentSplit"`
}

// PaymentResult is returned after the backend accepted a payment. PrintError is set
// when the receipt failed to print and Warning when the backend's answer was unreadable;
// the payment itself stands in both cases.
type PaymentResult struct {
	Order          models.Order         `json:"order"`
	AmountDue      int64                `json:"amountDue"`
	PaymentType    models.PaymentType   `json:"paymentType"`
	PaymentSplit   *models.PaymentSplit `json:"paymentSplit,omitempty"`
	SessionID      string               `json:"paymentSessionId,omitempty"`
	AllItemsPaid   bool                 `json:"allItemsPaid"`
	PaidTotal      int64                `json:"paidTotal"`
	UnpaidTotal    int64                `json:"unpaidTotal"`
	RemainingTotal int64                `json:"remainingTotal"`
	PrintError     string               `json:"printError,omitempty"`
	Warning        string               `json:"warning,omitempty"`
}

// CashierService runs every cashier action: validate locally, make exactly one backend
// call, apply the answer optimistically, then print and signal a reload.
type CashierService struct {
	Backend  CashierBackend
	Printer  ReceiptPrinter
	Prefs    Preferences
	State    *DashboardState
	Reloader Reloader
	Audit    AuditPublisher
	Hub      Broadcaster

	now   func() time.Time
	newID func() string
}

func NewCashierService(backend CashierBackend, printer ReceiptPrinter, prefs Preferences, state *DashboardState) *CashierService {
	return &CashierService{
		Backend: backend,
		Printer: printer,
		Prefs:   prefs,
		State:   state,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Quote previews what a payment would charge without contacting the backend.
func (s *CashierService) Quote(orderID string, mode PaymentMode, itemIDs []string) (Partition, error) {
	order, ok := s.State.Order(orderID)
	if !ok {
		return Partition{}, ErrOrderNotFound
	}
	return PartitionOrder(order, mode, itemIDs, s.now())
}

// Pay settles an order fully or partially. Nothing local changes unless the backend
// accepts the payment, and the backend call is never retried.
func (s *CashierService) Pay(ctx context.Context, orderID string, req PayRequest) (PaymentResult, error) {
	if !req.Mode.Valid() {
		return PaymentResult{}, ErrInvalidMode
	}
	order, ok := s.State.Order(orderID)
	if !ok {
		return PaymentResult{}, ErrOrderNotFound
	}
	now := s.now()
	part, err := PartitionOrder(order, req.Mode, req.ItemIDs, now)
	if err != nil {
		return PaymentResult{}, err
	}
	tender, split, err := ResolveTender(part.AmountDue, req.PaymentType, req.Split)
	if err != nil {
		return PaymentResult{}, err
	}

	// The browser leaving must not abort a payment already on its way to the backend.
	payCtx := context.WithoutCancel(ctx)

	mark := s.State.Mark()
	var (
		updated   models.Order
		sessionID string
		warning   string
	)
	switch req.Mode {
	case PaymentModeFull:
		updated, err = s.Backend.PayOrder(payCtx, orderID, tender, split)
		if err != nil {
			if !acceptedButUnreadable(err) {
				return PaymentResult{}, s.paymentFailure("pay order", orderID, err)
			}
			warning = s.unreadablePayment(orderID, err)
			updated = ApplySettlement(order, part.ItemIDs(), "", tender, now)
		}
	case PaymentModePartial:
		res, err := s.Backend.PayItems(payCtx, orderID, part.ItemIDs(), tender, split)
		if err != nil {
			if !acceptedButUnreadable(err) {
				return PaymentResult{}, s.paymentFailure("pay items", orderID, err)
			}
			warning = s.unreadablePayment(orderID, err)
		}
		sessionID = res.Session.SessionID
		if res.Order != nil {
			updated = *res.Order
		} else {
			if sessionID == "" {
				sessionID = s.newID()
			}
			paidAt := now
			if res.Session.PaidAt != nil {
				paidAt = *res.Session.PaidAt
			}
			updated = ApplySettlement(order, part.ItemIDs(), sessionID, tender, paidAt)
		}
	}

	s.State.ReplaceOrder(mark, updated)
	s.broadcast(HubOrderUpdate, NewOrderView(updated, s.now()))

	result := PaymentResult{
		Order:        updated,
		AmountDue:    part.AmountDue,
		PaymentType:  tender,
		PaymentSplit: split,
		SessionID:    sessionID,
		AllItemsPaid: updated.IsPaid() || AllItemsPaid(updated),
		Warning:      warning,
	}
	result.PaidTotal, result.UnpaidTotal = paidAndUnpaid(updated)
	if !result.AllItemsPaid {
		result.RemainingTotal = CalculateTotals(updated, now).GrandTotal
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":     orderID,
		"mode":         req.Mode,
		"amount":       part.AmountDue,
		"payment_type": tender,
		"all_paid":     result.AllItemsPaid,
	}).Info("Payment accepted")

	receipt := s.paymentReceipt(updated, part, tender, split, now)
	if err := s.print(ctx, receipt); err != nil {
		result.PrintError = utils.UserMessage(err)
	}

	s.publish(ctx, AuditPaymentSettled, map[string]interface{}{
		"orderId":      orderID,
		"orderNumber":  updated.OrderNumber,
		"mode":         req.Mode,
		"itemIds":      part.ItemIDs(),
		"amount":       part.AmountDue,
		"paymentType":  tender,
		"paymentSplit": split,
		"sessionId":    sessionID,
		"allItemsPaid": result.AllItemsPaid,
		"paidAt":       now,
	})
	s.signal()
	return result, nil
}

// CreateSaboy creates a takeaway order and pays it in the same backend call.
func (s *CashierService) CreateSaboy(ctx context.Context, items []models.ItemRequest, tender models.PaymentType, split *models.PaymentSplit) (PaymentResult, error) {
	if err := validateItems(items); err != nil {
		return PaymentResult{}, err
	}
	var amount int64
	for _, it := range items {
		amount += it.Price * int64(it.Quantity)
	}
	tender, split, err := ResolveTender(amount, tender, split)
	if err != nil {
		return PaymentResult{}, err
	}

	mark := s.State.Mark()
	order, err := s.Backend.CreateSaboy(context.WithoutCancel(ctx), items, tender, split)
	if err != nil {
		if !acceptedButUnreadable(err) {
			return PaymentResult{}, s.paymentFailure("create saboy", "", err)
		}
		// created and paid, but there is no order to show until the reload lands
		s.signal()
		return PaymentResult{
			AmountDue:    amount,
			PaymentType:  tender,
			PaymentSplit: split,
			AllItemsPaid: true,
			Warning:      s.unreadablePayment("", err),
		}, nil
	}
	s.State.ReplaceOrder(mark, order)
	s.broadcast(HubOrderUpdate, NewOrderView(order, s.now()))

	result := PaymentResult{
		Order:        order,
		AmountDue:    amount,
		PaymentType:  tender,
		PaymentSplit: split,
		AllItemsPaid: true,
	}
	result.PaidTotal, result.UnpaidTotal = paidAndUnpaid(order)

	now := s.now()
	part := Partition{Mode: PaymentModeFull, Items: order.ActiveItems(), Subtotal: amount, AmountDue: amount}
	if err := s.print(ctx, s.paymentReceipt(order, part, tender, split, now)); err != nil {
		result.PrintError = utils.UserMessage(err)
	}
	s.publish(ctx, AuditSaboyCreated, map[string]interface{}{
		"orderId":     order.ID,
		"saboyNumber": order.SaboyNumber,
		"amount":      amount,
		"paymentType": tender,
		"createdAt":   now,
	})
	s.signal()
	return result, nil
}

// AddItems appends menu items to an open order.
func (s *CashierService) AddItems(ctx context.Context, orderID string, items []models.ItemRequest) (models.Order, error) {
	if err := validateItems(items); err != nil {
		return models.Order{}, err
	}
	order, ok := s.State.Order(orderID)
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	if order.IsPaid() || order.IsEffectivelyCancelled() {
		return models.Order{}, ErrOrderNotOpen
	}

	mark := s.State.Mark()
	updated, err := s.Backend.AddItems(ctx, orderID, items)
	if err != nil {
		return models.Order{}, s.backendFailure("add items", orderID, err)
	}
	s.State.ReplaceOrder(mark, updated)
	s.broadcast(HubOrderUpdate, NewOrderView(updated, s.now()))
	s.signal()
	return updated, nil
}

// Merge folds the selected orders into the first one. The backend does the merge;
// the desk only validates the selection and reloads.
func (s *CashierService) Merge(ctx context.Context, orderIDs []string) (MergeRequest, error) {
	sel, err := SelectForMerge(s.State.Orders(), orderIDs)
	if err != nil {
		return MergeRequest{}, err
	}
	req, err := sel.Request()
	if err != nil {
		return MergeRequest{}, err
	}
	if err := s.Backend.MergeOrders(ctx, req); err != nil {
		return MergeRequest{}, s.backendFailure("merge orders", req.TargetID, err)
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"target":  req.TargetID,
		"sources": req.SourceIDs,
	}).Info("Orders merged")
	s.publish(ctx, AuditOrdersMerged, req)
	s.signal()
	return req, nil
}

// PrintBill prints the pending bill ("HISOB") of an open order.
func (s *CashierService) PrintBill(ctx context.Context, orderID string) error {
	order, ok := s.State.Order(orderID)
	if !ok {
		return ErrOrderNotFound
	}
	now := s.now()
	totals := CalculateTotals(order, now)
	part := Partition{
		Mode:          PaymentModeFull,
		Items:         order.UnpaidActiveItems(),
		Subtotal:      totals.Subtotal,
		ServiceCharge: totals.ServiceCharge,
		HourlyCharge:  totals.HourlyCharge,
		AmountDue:     totals.GrandTotal,
	}
	if order.IsPaid() {
		part.Items = order.ActiveItems()
	}
	receipt := s.paymentReceipt(order, part, "", nil, now)
	receipt.IsPaid = order.IsPaid()
	return s.print(ctx, receipt)
}

// Receipt builds the receipt of an order as it stands locally, for display or download.
func (s *CashierService) Receipt(orderID string) (models.PaymentReceipt, error) {
	order, ok := s.State.Order(orderID)
	if !ok {
		return models.PaymentReceipt{}, ErrOrderNotFound
	}
	now := s.now()
	if order.IsPaid() {
		part := Partition{
			Mode:          PaymentModeFull,
			Items:         order.ActiveItems(),
			Subtotal:      order.Subtotal,
			ServiceCharge: order.ServiceCharge,
			HourlyCharge:  order.HourlyCharge,
			AmountDue:     order.GrandTotal,
		}
		return s.paymentReceipt(order, part, order.PaymentType, order.PaymentSplit, now), nil
	}
	totals := CalculateTotals(order, now)
	part := Partition{
		Mode:          PaymentModeFull,
		Items:         order.UnpaidActiveItems(),
		Subtotal:      totals.Subtotal,
		ServiceCharge: totals.ServiceCharge,
		HourlyCharge:  totals.HourlyCharge,
		AmountDue:     totals.GrandTotal,
	}
	return s.paymentReceipt(order, part, "", nil, now), nil
}

// DailyReport assembles the end-of-day report from local state and waiter stats.
func (s *CashierService) DailyReport(ctx context.Context) (models.DailyReport, error) {
	snap := s.State.Snapshot()
	shiftID := ""
	if snap.Shift != nil {
		shiftID = snap.Shift.ID
	}
	stats, err := s.Backend.WaiterStats(ctx, shiftID)
	if err != nil {
		return models.DailyReport{}, s.backendFailure("waiter stats", "", err)
	}

	report := models.DailyReport{
		Shift:   snap.Shift,
		Summary: snap.Summary,
		Waiters: stats,
		Date:    s.now(),
	}
	if session, ok := s.Prefs.Session(); ok {
		report.RestaurantName = session.Restaurant.Name
		report.CashierName = session.User.Name
	}
	for _, order := range snap.Orders {
		if !order.IsPaid() && !order.IsEffectivelyCancelled() {
			report.UnpaidTotal += CalculateTotals(order, report.Date).GrandTotal
		}
		for _, item := range order.Items {
			if item.Status != models.ItemStatusCancelled {
				continue
			}
			report.Cancelled = append(report.Cancelled, models.CancelledLine{
				OrderNumber: order.OrderNumber,
				TableName:   order.DisplayName(),
				Name:        item.Name,
				Quantity:    item.Quantity,
				Price:       item.Price,
				Reason:      item.CancelReason,
			})
		}
	}
	return report, nil
}

// PrintDailyReport prints the end-of-day slip on the selected printer.
func (s *CashierService) PrintDailyReport(ctx context.Context) error {
	report, err := s.DailyReport(ctx)
	if err != nil {
		return err
	}
	return s.Printer.PrintDailyReport(ctx, s.Prefs.SelectedPrinter(), report)
}

func (s *CashierService) WaiterStats(ctx context.Context) ([]models.WaiterStat, error) {
	stats, err := s.Backend.WaiterStats(ctx, s.State.ShiftID())
	if err != nil {
		return nil, s.backendFailure("waiter stats", "", err)
	}
	return stats, nil
}

func (s *CashierService) Menu(ctx context.Context) ([]models.MenuItem, error) {
	menu, err := s.Backend.Menu(ctx)
	if err != nil {
		return nil, s.backendFailure("menu", "", err)
	}
	return menu, nil
}

func (s *CashierService) Categories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.Backend.Categories(ctx)
	if err != nil {
		return nil, s.backendFailure("categories", "", err)
	}
	return cats, nil
}

// Login authenticates against the backend and caches the session locally.
func (s *CashierService) Login(ctx context.Context, phone, password string) (models.Session, error) {
	if phone == "" || password == "" {
		return models.Session{}, &ValidationError{Message: "Telefon va parolni kiriting"}
	}
	session, err := s.Backend.Login(ctx, phone, password)
	if err != nil {
		return models.Session{}, err
	}
	if err := s.Prefs.SaveSession(session); err != nil {
		utils.ErrorLogger.WithError(err).Error("Failed to persist session")
	}
	s.Backend.SetToken(session.Token)
	utils.InfoLogger.WithFields(logrus.Fields{
		"user":       session.User.Name,
		"restaurant": session.Restaurant.Name,
	}).Info("Cashier logged in")
	if s.Reloader != nil {
		s.Reloader.RefreshShift()
	}
	return session, nil
}

// Logout forgets the session and empties the dashboard.
func (s *CashierService) Logout() error {
	s.Backend.SetToken("")
	s.State.Clear()
	return s.Prefs.ClearSession()
}

// Session returns the cached session if it has not expired.
func (s *CashierService) Session() (models.Session, bool) {
	session, ok := s.Prefs.Session()
	if !ok || session.Expired(s.now()) {
		return models.Session{}, false
	}
	return session, true
}

// HandleUnauthorized drops the cached session after the backend rejected the token.
func (s *CashierService) HandleUnauthorized() {
	utils.InfoLogger.Warn("Backend rejected the session token, logging out")
	s.Backend.SetToken("")
	if err := s.Prefs.ClearSession(); err != nil {
		utils.ErrorLogger.WithError(err).Error("Failed to clear session")
	}
}

// backendFailure logs a failed backend call. A 401 has already been reported through the
// client's OnUnauthorized hook, which ends the session.
func (s *CashierService) backendFailure(op, orderID string, err error) error {
	utils.ErrorLogger.WithFields(logrus.Fields{
		"op":       op,
		"order_id": orderID,
		"kind":     KindOf(err),
		"error":    err.Error(),
	}).Error("Backend call failed")
	return err
}

// paymentFailure -> backendFailure, plus a reload when the outcome is unknown
func (s *CashierService) paymentFailure(op, orderID string, err error) error {
	if KindOf(err) == KindNetwork {
		s.signal()
	}
	return s.backendFailure(op, orderID, err)
}

// unreadablePayment logs an accepted payment whose answer could not be read. The reload
// queued at the end of the payment brings in the backend's version.
func (s *CashierService) unreadablePayment(orderID string, err error) string {
	utils.ErrorLogger.WithFields(logrus.Fields{
		"order_id": orderID,
		"error":    err.Error(),
	}).Error("Payment accepted but the response was unreadable")
	return utils.UserMessage(err)
}

func acceptedButUnreadable(err error) bool {
	var unreadable *UnreadableResponseError
	return errors.As(err, &unreadable)
}

func (s *CashierService) print(ctx context.Context, receipt models.PaymentReceipt) error {
	if s.Printer == nil {
		return nil
	}
	err := s.Printer.PrintPayment(ctx, s.Prefs.SelectedPrinter(), receipt)
	if err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id": receipt.OrderID,
			"error":    err.Error(),
		}).Error("Receipt print failed")
	}
	return err
}

func (s *CashierService) publish(ctx context.Context, key string, payload interface{}) {
	if s.Audit != nil {
		s.Audit.Publish(ctx, key, payload)
	}
}

func (s *CashierService) broadcast(event string, data interface{}) {
	if s.Hub != nil {
		s.Hub.Broadcast(event, data)
	}
}

func (s *CashierService) signal() {
	if s.Reloader != nil {
		s.Reloader.Signal()
	}
}

func (s *CashierService) paymentReceipt(order models.Order, part Partition, tender models.PaymentType, split *models.PaymentSplit, now time.Time) models.PaymentReceipt {
	receipt := models.PaymentReceipt{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		TableName:    order.DisplayName(),
		WaiterName:   order.Waiter.Name,
		Subtotal:     part.Subtotal,
		ServiceFee:   part.ServiceCharge,
		HourlyCharge: part.HourlyCharge,
		Total:        part.AmountDue,
		PaymentType:  tender,
		PaymentSplit: split,
		Comment:      order.Comment,
		IsPaid:       tender != "",
		Date:         now,
	}
	for _, item := range part.Items {
		receipt.Items = append(receipt.Items, models.ReceiptLine{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	receipt.RestaurantName = "Restoran"
	if session, ok := s.Prefs.Session(); ok {
		if session.Restaurant.Name != "" {
			receipt.RestaurantName = session.Restaurant.Name
		}
		receipt.CashierName = session.User.Name
	}
	return receipt
}

func validateItems(items []models.ItemRequest) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// paidAndUnpaid -> line totals of settled and still open active items
func paidAndUnpaid(order models.Order) (paid, unpaid int64) {
	for _, item := range order.ActiveItems() {
		if item.IsPaid() || order.IsPaid() {
			paid += item.LineTotal()
		} else {
			unpaid += item.LineTotal()
		}
	}
	return paid, unpaid
}
