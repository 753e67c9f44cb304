package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/utils"
	"golang.org/x/sync/errgroup"
)

// Hub events pushed to the cashier UI.
const (
	HubDashboard   = "dashboard"
	HubShiftClosed = "shift_closed"
	HubConnection  = "connection"
	HubPrintError  = "print_error"
	HubTotalsTick  = "totals_tick"
	HubOrderUpdate = "order_updated"
)

// OrderSource is the read side of the backend.
type OrderSource interface {
	TodayOrders(ctx context.Context, shiftID string) ([]models.Order, error)
	DailySummary(ctx context.Context, shiftID string) (models.DailySummary, error)
	ActiveShift(ctx context.Context) (*models.Shift, error)
}

// Broadcaster pushes a named event to every connected cashier UI.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

// BillPrinter prints the pending bill of an order.
type BillPrinter interface {
	PrintBill(ctx context.Context, orderID string) error
}

// Reconciler is the single consumer of realtime events. Events are signals:
// they trigger a full reload instead of being merged into local state.
type Reconciler struct {
	Source   OrderSource
	State    *DashboardState
	Hub      Broadcaster
	Bills    BillPrinter
	Dedupe   *PrintDeduper
	Timeout  time.Duration
	StopChan chan struct{}

	reload     chan struct{}
	shiftStale atomic.Bool
	wg         sync.WaitGroup
	now        func() time.Time
}

func NewReconciler(source OrderSource, state *DashboardState, hub Broadcaster, dedupe *PrintDeduper) *Reconciler {
	r := &Reconciler{
		Source:   source,
		State:    state,
		Hub:      hub,
		Dedupe:   dedupe,
		Timeout:  15 * time.Second,
		StopChan: make(chan struct{}),
		reload:   make(chan struct{}, 1),
		now:      time.Now,
	}
	r.shiftStale.Store(true)
	return r
}

// Start consumes events until ctx is cancelled or Stop is called.
// One reload is queued at start so the dashboard fills without waiting for a push.
func (r *Reconciler) Start(ctx context.Context, events <-chan models.Event) {
	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				r.Handle(ctx, ev)
			case <-r.StopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-r.reload:
				if err := r.Reload(ctx); err != nil {
					utils.ErrorLogger.WithError(err).Error("Dashboard reload failed")
				}
			case <-r.StopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	r.Signal()
}

func (r *Reconciler) Stop() {
	close(r.StopChan)
	r.wg.Wait()
}

// Signal queues a reload. A burst of signals collapses into one pending reload.
func (r *Reconciler) Signal() {
	select {
	case r.reload <- struct{}{}:
	default:
	}
}

// RefreshShift marks the active shift for refetching on the next reload.
func (r *Reconciler) RefreshShift() {
	r.shiftStale.Store(true)
	r.Signal()
}

// Handle reacts to one realtime event.
func (r *Reconciler) Handle(ctx context.Context, ev models.Event) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"event":    ev.Name,
		"order_id": ev.OrderID,
	}).Info("Realtime event received")

	switch ev.Name {
	case models.EventShiftClosed:
		r.State.Clear()
		r.shiftStale.Store(true)
		r.broadcast(HubShiftClosed, nil)
		r.broadcast(HubDashboard, BuildDashboard(r.State.Snapshot(), r.now()))
	case models.EventShiftOpened:
		r.RefreshShift()
	case models.EventConnected:
		r.broadcast(HubConnection, map[string]interface{}{"connected": true})
		r.RefreshShift()
	case models.EventDisconnected:
		r.broadcast(HubConnection, map[string]interface{}{"connected": false})
	case models.EventPrintCheckRequested:
		r.printRequested(ctx, ev)
		r.Signal()
	default:
		r.Signal()
	}
}

func (r *Reconciler) printRequested(ctx context.Context, ev models.Event) {
	if r.Bills == nil || ev.OrderID == "" {
		return
	}
	if r.Dedupe != nil && !r.Dedupe.Allow(ev.OrderID, ev.RequestID) {
		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id":   ev.OrderID,
			"request_id": ev.RequestID,
		}).Info("Duplicate print request suppressed")
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		pctx, cancel := context.WithTimeout(ctx, r.Timeout)
		defer cancel()
		if err := r.Bills.PrintBill(pctx, ev.OrderID); err != nil {
			if r.Dedupe != nil {
				r.Dedupe.Forget(ev.OrderID, ev.RequestID)
			}
			utils.ErrorLogger.WithFields(logrus.Fields{
				"order_id": ev.OrderID,
				"error":    err.Error(),
			}).Error("Requested bill print failed")
			r.broadcast(HubPrintError, map[string]interface{}{"orderId": ev.OrderID, "message": utils.UserMessage(err)})
		}
	}()
}

// Reload fetches orders and summary for the active shift and applies them unless a
// newer reload or a shift close got there first.
func (r *Reconciler) Reload(ctx context.Context) error {
	ticket := r.State.BeginReload()

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	if r.shiftStale.Swap(false) {
		shift, err := r.Source.ActiveShift(ctx)
		if err != nil {
			r.shiftStale.Store(true)
			return err
		}
		r.State.SetShift(ticket, shift)
	}
	shiftID := r.State.ShiftID()

	var (
		orders  []models.Order
		summary models.DailySummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = r.Source.TodayOrders(gctx, shiftID)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = r.Source.DailySummary(gctx, shiftID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if !r.State.ApplyReload(ticket, orders, summary, r.now()) {
		utils.InfoLogger.WithField("ticket", ticket).Info("Stale reload discarded")
		return nil
	}
	r.broadcast(HubDashboard, BuildDashboard(r.State.Snapshot(), r.now()))
	return nil
}

func (r *Reconciler) broadcast(event string, data interface{}) {
	if r.Hub != nil {
		r.Hub.Broadcast(event, data)
	}
}
