package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/utils"
)

// UnknownItemName is shown for items the backend sent without any name.
const UnknownItemName = "Noma'lum taom"

// itemContainers are the item array names used by the backend over time, merged in this order.
var itemContainers = []string{"items", "orderItems", "selectFoods"}

type rawOrder struct {
	ID                   json.RawMessage `json:"_id"`
	AltID                json.RawMessage `json:"id"`
	OrderNumber          json.RawMessage `json:"orderNumber"`
	SaboyNumber          json.RawMessage `json:"saboyNumber"`
	OrderType            string          `json:"orderType"`
	IsSaboy              bool            `json:"isSaboy"`
	IsTakeaway           bool            `json:"isTakeaway"`
	Status               string          `json:"status"`
	PaymentStatus        string          `json:"paymentStatus"`
	IsPaid               bool            `json:"isPaid"`
	TableNumber          json.RawMessage `json:"tableNumber"`
	TableName            string          `json:"tableName"`
	Table                json.RawMessage `json:"table"`
	Waiter               json.RawMessage `json:"waiter"`
	WaiterName           string          `json:"waiterName"`
	Comment              string          `json:"comment"`
	CreatedAt            string          `json:"createdAt"`
	PaidAt               string          `json:"paidAt"`
	Total                json.RawMessage `json:"total"`
	Subtotal             json.RawMessage `json:"subtotal"`
	ServiceFee           json.RawMessage `json:"serviceFee"`
	ServiceCharge        json.RawMessage `json:"serviceCharge"`
	HourlyCharge         json.RawMessage `json:"hourlyCharge"`
	GrandTotal           json.RawMessage `json:"grandTotal"`
	FinalTotal           json.RawMessage `json:"finalTotal"`
	ServiceChargePercent json.RawMessage `json:"serviceChargePercent"`
	HasHourlyCharge      bool            `json:"hasHourlyCharge"`
	HourlyChargeAmount   json.RawMessage `json:"hourlyChargeAmount"`
	PaymentType          string          `json:"paymentType"`
	PaymentSplit         *rawSplit       `json:"paymentSplit"`
}

type rawSplit struct {
	Cash  json.RawMessage `json:"cash"`
	Card  json.RawMessage `json:"card"`
	Click json.RawMessage `json:"click"`
}

type rawItem struct {
	ID       json.RawMessage `json:"_id"`
	AltID    json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	FoodName string          `json:"foodName"`
	Food     *struct {
		Name string `json:"name"`
	} `json:"food"`
	Price            json.RawMessage `json:"price"`
	Quantity         json.RawMessage `json:"quantity"`
	Status           string          `json:"status"`
	IsDeleted        bool            `json:"isDeleted"`
	ReadyAt          string          `json:"readyAt"`
	CancelledAt      string          `json:"cancelledAt"`
	CancelReason     string          `json:"cancelReason"`
	IsPaid           bool            `json:"isPaid"`
	PaidAt           string          `json:"paidAt"`
	PaymentSessionID string          `json:"paymentSessionId"`
	ItemPaymentType  string          `json:"itemPaymentType"`
}

// NormalizeOrder turns one backend order payload into the canonical order.
// It is the only place that knows the backend's historical field names.
func NormalizeOrder(raw []byte) (models.Order, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.Order{}, &MalformedOrderError{Reason: "order payload is not an object"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return models.Order{}, &MalformedOrderError{Reason: err.Error()}
	}
	var ro rawOrder
	if err := json.Unmarshal(trimmed, &ro); err != nil {
		return models.Order{}, &MalformedOrderError{Reason: err.Error()}
	}

	id := flexString(ro.ID)
	if id == "" {
		id = flexString(ro.AltID)
	}
	if id == "" {
		return models.Order{}, &MalformedOrderError{Reason: "order has no id"}
	}

	order := models.Order{
		ID:                 id,
		OrderNumber:        int(flexInt64(ro.OrderNumber)),
		OrderType:          resolveOrderType(ro),
		TableName:          ro.TableName,
		TableNumber:        int(flexInt64(ro.TableNumber)),
		Waiter:             resolveWaiter(ro),
		Comment:            ro.Comment,
		CreatedAt:          parseTime(ro.CreatedAt),
		HasHourlyCharge:    ro.HasHourlyCharge,
		HourlyChargeAmount: flexInt64(ro.HourlyChargeAmount),
		HourlyCharge:       flexInt64(ro.HourlyCharge),
	}
	if !isNull(ro.SaboyNumber) {
		n := int(flexInt64(ro.SaboyNumber))
		order.SaboyNumber = &n
	}
	if order.TableName == "" {
		order.TableName = tableTitle(ro.Table)
	}
	if !isNull(ro.ServiceChargePercent) {
		if pct, ok := flexFloat(ro.ServiceChargePercent); ok {
			order.ServiceChargePercent = &pct
		}
	}
	if t := parseTime(ro.PaidAt); !t.IsZero() {
		order.PaidAt = &t
	}

	// paid is a single fact in the canonical model, any paid signal wins
	paid := ro.IsPaid || ro.PaymentStatus == string(models.PaymentStatusPaid) || ro.Status == string(models.OrderStatusPaid)
	if paid {
		order.PaymentStatus = models.PaymentStatusPaid
		order.Status = models.OrderStatusPaid
	} else {
		order.PaymentStatus = models.PaymentStatusPending
		order.Status = models.OrderStatusActive
		if ro.Status == string(models.OrderStatusCancelled) {
			order.Status = models.OrderStatusCancelled
		}
	}

	if pt := models.PaymentType(ro.PaymentType); pt.Valid() {
		order.PaymentType = pt
	}
	if ro.PaymentSplit != nil {
		order.PaymentSplit = &models.PaymentSplit{
			Cash:  flexInt64(ro.PaymentSplit.Cash),
			Card:  flexInt64(ro.PaymentSplit.Card),
			Click: flexInt64(ro.PaymentSplit.Click),
		}
	}

	order.Subtotal = firstInt64(ro.Total, ro.Subtotal)
	order.ServiceCharge = firstInt64(ro.ServiceFee, ro.ServiceCharge)
	if isNull(ro.GrandTotal) && isNull(ro.FinalTotal) {
		order.GrandTotal = order.Subtotal + order.ServiceCharge + order.HourlyCharge
	} else {
		order.GrandTotal = firstInt64(ro.GrandTotal, ro.FinalTotal)
	}

	items, err := normalizeItems(fields, order)
	if err != nil {
		return models.Order{}, err
	}
	order.Items = items

	return order, nil
}

// NormalizeOrders accepts a bare array or an object wrapping it under "orders" or "data".
// Individual orders that cannot be normalized are logged and skipped so one broken
// order does not blank the whole dashboard.
func NormalizeOrders(raw []byte) ([]models.Order, error) {
	list, err := unwrapList(raw, "orders", "data")
	if err != nil {
		return nil, err
	}
	orders := make([]models.Order, 0, len(list))
	for i, entry := range list {
		order, err := NormalizeOrder(entry)
		if err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"index": i,
				"error": err.Error(),
			}).Error("Skipping malformed order")
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func unwrapList(raw []byte, keys ...string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &MalformedOrderError{Reason: "empty order list"}
	}
	if trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, &MalformedOrderError{Reason: err.Error()}
		}
		found := false
		for _, key := range keys {
			if inner, ok := envelope[key]; ok {
				trimmed = bytes.TrimSpace(inner)
				found = true
				break
			}
		}
		if !found {
			return nil, &MalformedOrderError{Reason: "order list not found in response"}
		}
	}
	if isNull(trimmed) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return nil, &MalformedOrderError{Reason: "order list is not an array"}
	}
	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, &MalformedOrderError{Reason: err.Error()}
	}
	return list, nil
}

func normalizeItems(fields map[string]json.RawMessage, order models.Order) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0)
	seen := make(map[string]bool)

	for _, key := range itemContainers {
		container, ok := fields[key]
		if !ok || isNull(container) {
			continue
		}
		container = bytes.TrimSpace(container)
		if container[0] != '[' {
			return nil, &MalformedOrderError{Reason: fmt.Sprintf("%s is not an array", key)}
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(container, &entries); err != nil {
			return nil, &MalformedOrderError{Reason: err.Error()}
		}

		for i, entry := range entries {
			item, deleted, err := normalizeItem(entry, order)
			if err != nil {
				return nil, &MalformedOrderError{Reason: fmt.Sprintf("%s[%d]: %s", key, i, err.Error())}
			}
			// a deleted copy never claims the id; a live copy elsewhere still counts
			if deleted || seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			items = append(items, item)
		}
	}
	return items, nil
}

func normalizeItem(raw json.RawMessage, order models.Order) (models.OrderItem, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.OrderItem{}, false, fmt.Errorf("item is not an object")
	}
	var ri rawItem
	if err := json.Unmarshal(trimmed, &ri); err != nil {
		return models.OrderItem{}, false, err
	}

	id := flexString(ri.ID)
	if id == "" {
		id = flexString(ri.AltID)
	}
	if id == "" {
		return models.OrderItem{}, false, fmt.Errorf("item has no id")
	}

	item := models.OrderItem{
		ID:           id,
		Name:         firstNonEmpty(ri.Name, ri.FoodName),
		Price:        flexInt64(ri.Price),
		Quantity:     int(flexInt64(ri.Quantity)),
		Status:       models.ItemStatus(ri.Status),
		IsDeleted:    ri.IsDeleted,
		CancelReason: ri.CancelReason,
	}
	if item.Name == "" && ri.Food != nil {
		item.Name = ri.Food.Name
	}
	if item.Name == "" {
		item.Name = UnknownItemName
	}
	if isNull(ri.Quantity) || item.Quantity < 1 {
		item.Quantity = 1
	}
	if !item.Status.Valid() {
		item.Status = models.ItemStatusPending
	}
	if t := parseTime(ri.ReadyAt); !t.IsZero() {
		item.ReadyAt = &t
	}
	if t := parseTime(ri.CancelledAt); !t.IsZero() {
		item.CancelledAt = &t
	}

	if item.Status == models.ItemStatusCancelled {
		if ri.IsPaid {
			utils.InfoLogger.WithFields(logrus.Fields{
				"order_id": order.ID,
				"item_id":  id,
			}).Warn("Cancelled item carries a paid flag, ignoring it")
		}
		return item, item.IsDeleted, nil
	}

	var paidAt *time.Time
	if t := parseTime(ri.PaidAt); !t.IsZero() {
		paidAt = &t
	}
	tender := models.PaymentType(ri.ItemPaymentType)
	if !tender.Valid() {
		tender = ""
	}

	switch {
	case order.IsPaid():
		if paidAt == nil {
			paidAt = order.PaidAt
		}
		if tender == "" {
			tender = order.PaymentType
		}
		_ = item.Settle(models.FullySettled(ri.PaymentSessionID, paidAt, tender))
	case ri.IsPaid:
		_ = item.Settle(models.PartiallySettled(ri.PaymentSessionID, paidAt, tender))
	}

	return item, item.IsDeleted, nil
}

func resolveOrderType(ro rawOrder) models.OrderType {
	switch strings.ToLower(strings.TrimSpace(ro.OrderType)) {
	case "saboy", "takeaway":
		return models.OrderTypeSaboy
	case "dine-in", "dinein", "dine_in":
		return models.OrderTypeDineIn
	}
	if ro.IsSaboy || ro.IsTakeaway {
		return models.OrderTypeSaboy
	}
	return models.OrderTypeDineIn
}

// resolveWaiter -> waiter may be a populated object or a bare id
func resolveWaiter(ro rawOrder) models.Waiter {
	var w models.Waiter
	trimmed := bytes.TrimSpace(ro.Waiter)
	switch {
	case len(trimmed) == 0 || isNull(trimmed):
	case trimmed[0] == '{':
		var obj struct {
			ID   json.RawMessage `json:"_id"`
			Name string          `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			w.ID = flexString(obj.ID)
			w.Name = obj.Name
		}
	default:
		w.ID = flexString(trimmed)
	}
	if w.Name == "" {
		w.Name = ro.WaiterName
	}
	return w
}

func tableTitle(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var t struct {
		Title string `json:"title"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(trimmed, &t); err != nil {
		return ""
	}
	return firstNonEmpty(t.Title, t.Name)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// flexString -> JSON string or number as a string, "" otherwise
func flexString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return ""
	}
	return n.String()
}

func flexFloat(raw json.RawMessage) (float64, bool) {
	s := flexString(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// flexInt64 -> whole so'm, fractional amounts rounded half away from zero
func flexInt64(raw json.RawMessage) int64 {
	f, ok := flexFloat(raw)
	if !ok {
		return 0
	}
	return int64(math.Round(f))
}

func firstInt64(candidates ...json.RawMessage) int64 {
	for _, c := range candidates {
		if !isNull(c) {
			return flexInt64(c)
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
