package services

import (
	"sync"
	"time"

	"github.com/yeremiapane/cashier-desk/models"
)

// Ticket orders asynchronous results against each other. Higher tickets are newer.
type Ticket uint64

// Snapshot is a consistent copy of the dashboard at one point in time.
type Snapshot struct {
	Orders   []models.Order      `json:"orders"`
	Summary  models.DailySummary `json:"summary"`
	Shift    *models.Shift       `json:"shift"`
	LoadedAt time.Time           `json:"loadedAt"`
}

// DashboardState is the cashier's view of the backend. It only changes through
// ApplyReload, ReplaceOrder, SetShift and Clear; the generation counter decides
// whether a late async result may still be applied.
type DashboardState struct {
	mu         sync.RWMutex
	orders     []models.Order
	summary    models.DailySummary
	shift      *models.Shift
	loadedAt   time.Time
	generation Ticket
	applied    Ticket
	// pinned: order id -> mark of its last optimistic replacement
	pinned map[string]Ticket
}

func NewDashboardState() *DashboardState {
	return &DashboardState{pinned: make(map[string]Ticket)}
}

// BeginReload issues the ticket of a new full reload.
func (s *DashboardState) BeginReload() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Mark returns the current generation without starting a reload. Optimistic updates
// take a mark before their request leaves the desk.
func (s *DashboardState) Mark() Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// ApplyReload stores a full reload result unless a newer one was already applied.
func (s *DashboardState) ApplyReload(t Ticket, orders []models.Order, summary models.DailySummary, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t <= s.applied {
		return false
	}
	s.applied = t
	s.orders = s.keepPinned(t, cloneOrders(orders))
	s.summary = summary
	s.loadedAt = at
	return true
}

// keepPinned puts back every optimistic replacement that the reload holding t started
// too early to see, and forgets the pins it supersedes.
func (s *DashboardState) keepPinned(t Ticket, orders []models.Order) []models.Order {
	if len(s.pinned) == 0 {
		return orders
	}
	local := make(map[string]models.Order, len(s.pinned))
	for _, o := range s.orders {
		if mark, ok := s.pinned[o.ID]; ok && t <= mark {
			local[o.ID] = o
		}
	}
	for i := range orders {
		if o, ok := local[orders[i].ID]; ok {
			orders[i] = o
			delete(local, o.ID)
		}
	}
	for _, o := range s.orders {
		if _, ok := local[o.ID]; ok {
			orders = append(orders, o)
		}
	}
	for id, mark := range s.pinned {
		if mark < t {
			delete(s.pinned, id)
		}
	}
	return orders
}

// ReplaceOrder swaps one order in place, or appends it when unknown. The update is
// dropped when a reload started after mark has already been applied, since that
// reload reflects newer backend state. Otherwise the order stays pinned: a reload
// started at or before mark cannot overwrite it.
func (s *DashboardState) ReplaceOrder(mark Ticket, order models.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied > mark {
		return false
	}
	if s.pinned == nil {
		s.pinned = make(map[string]Ticket)
	}
	if mark > s.pinned[order.ID] {
		s.pinned[order.ID] = mark
	}
	for i := range s.orders {
		if s.orders[i].ID == order.ID {
			s.orders[i] = cloneOrder(order)
			return true
		}
	}
	s.orders = append(s.orders, cloneOrder(order))
	return true
}

// SetShift stores the active shift fetched by the reload holding ticket t.
func (s *DashboardState) SetShift(t Ticket, shift *models.Shift) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t <= s.applied {
		return false
	}
	if shift == nil {
		s.shift = nil
		return true
	}
	cp := *shift
	s.shift = &cp
	return true
}

// Clear zeroes the dashboard on shift close and supersedes every reload in flight.
func (s *DashboardState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.applied = s.generation
	s.pinned = make(map[string]Ticket)
	s.orders = nil
	s.summary = models.DailySummary{}
	s.shift = nil
	s.loadedAt = time.Time{}
}

func (s *DashboardState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Orders:   cloneOrders(s.orders),
		Summary:  s.summary,
		LoadedAt: s.loadedAt,
	}
	if s.shift != nil {
		cp := *s.shift
		snap.Shift = &cp
	}
	return snap
}

func (s *DashboardState) Order(id string) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return cloneOrder(o), true
		}
	}
	return models.Order{}, false
}

func (s *DashboardState) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrders(s.orders)
}

// ShiftID -> "" when no shift is open
func (s *DashboardState) ShiftID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.shift == nil {
		return ""
	}
	return s.shift.ID
}

func cloneOrders(in []models.Order) []models.Order {
	if in == nil {
		return nil
	}
	out := make([]models.Order, len(in))
	for i, o := range in {
		out[i] = cloneOrder(o)
	}
	return out
}

func cloneOrder(o models.Order) models.Order {
	if o.Items == nil {
		return o
	}
	items := make([]models.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
