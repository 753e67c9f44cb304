package services

import (
	"github.com/yeremiapane/cashier-desk/models"
)

// MergeRequest is what the backend merge endpoint receives.
type MergeRequest struct {
	TargetID  string   `json:"targetOrderId"`
	SourceIDs []string `json:"sourceOrderIds"`
}

// MergeSelection collects orders to merge. The first selected order is the target;
// the rest are sources that the backend folds into it.
type MergeSelection struct {
	ids []string
}

func NewMergeSelection() *MergeSelection {
	return &MergeSelection{}
}

// Toggle adds an open order to the selection or removes it if already there.
// Removing the target promotes the next selected order.
func (m *MergeSelection) Toggle(order models.Order) error {
	for i, id := range m.ids {
		if id == order.ID {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			return nil
		}
	}
	if order.IsPaid() {
		return ErrOrderNotMergeable
	}
	m.ids = append(m.ids, order.ID)
	return nil
}

func (m *MergeSelection) Target() string {
	if len(m.ids) == 0 {
		return ""
	}
	return m.ids[0]
}

func (m *MergeSelection) Selected() []string {
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}

func (m *MergeSelection) Len() int {
	return len(m.ids)
}

func (m *MergeSelection) Clear() {
	m.ids = nil
}

// Request validates the selection and builds the backend request.
func (m *MergeSelection) Request() (MergeRequest, error) {
	if len(m.ids) < 2 {
		return MergeRequest{}, NewInsufficientSelectionError(len(m.ids))
	}
	sources := make([]string, len(m.ids)-1)
	copy(sources, m.ids[1:])
	return MergeRequest{TargetID: m.ids[0], SourceIDs: sources}, nil
}

// SelectForMerge builds a selection from ids in order, looking each one up in orders.
// Used by the HTTP API where the whole selection arrives at once.
func SelectForMerge(orders []models.Order, ids []string) (*MergeSelection, error) {
	byID := make(map[string]models.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	sel := NewMergeSelection()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		order, ok := byID[id]
		if !ok {
			return nil, ErrOrderNotFound
		}
		if err := sel.Toggle(order); err != nil {
			return nil, err
		}
	}
	return sel, nil
}
