package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/utils"
)

// wireMessage is the backend's push frame.
type wireMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Realtime keeps a websocket open to the backend and turns its pushes into events.
// It reconnects after ReconnectDelay until the context ends.
type Realtime struct {
	URL            string
	ReconnectDelay time.Duration
	Dialer         *websocket.Dialer

	// Token and RestaurantID are read on every connect so a new login is picked up.
	Token        func() string
	RestaurantID func() string

	events  chan models.Event
	writeMu sync.Mutex
}

func NewRealtime(wsURL string, reconnectDelay time.Duration) *Realtime {
	if reconnectDelay <= 0 {
		reconnectDelay = 3 * time.Second
	}
	return &Realtime{
		URL:            wsURL,
		ReconnectDelay: reconnectDelay,
		Dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		Token:        func() string { return "" },
		RestaurantID: func() string { return "" },
		events:       make(chan models.Event, 64),
	}
}

func (r *Realtime) Events() <-chan models.Event {
	return r.events
}

// Run blocks until ctx is cancelled.
func (r *Realtime) Run(ctx context.Context) {
	defer close(r.events)
	for {
		token := r.Token()
		if token != "" {
			if err := r.session(ctx, token); err != nil && ctx.Err() == nil {
				utils.ErrorLogger.WithError(err).Error("Realtime connection lost")
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.ReconnectDelay):
		}
	}
}

func (r *Realtime) session(ctx context.Context, token string) error {
	target, err := url.Parse(r.URL)
	if err != nil {
		return err
	}
	q := target.Query()
	q.Set("token", token)
	target.RawQuery = q.Encode()

	conn, _, err := r.Dialer.DialContext(ctx, target.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	utils.InfoLogger.WithField("url", r.URL).Info("Realtime connected")
	r.emit(ctx, models.Event{Name: models.EventConnected})
	defer r.emit(ctx, models.Event{Name: models.EventDisconnected})

	if restaurantID := r.RestaurantID(); restaurantID != "" {
		r.writeMu.Lock()
		err := conn.WriteJSON(map[string]interface{}{
			"event": models.EventJoinRestaurant,
			"data":  restaurantID,
		})
		r.writeMu.Unlock()
		if err != nil {
			return err
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		ev, ok := DecodeEvent(data)
		if !ok {
			utils.InfoLogger.WithField("frame", string(data)).Debug("Ignoring realtime frame")
			continue
		}
		utils.InfoLogger.WithFields(logrus.Fields{
			"event":    ev.Name,
			"order_id": ev.OrderID,
		}).Debug("Realtime event")
		r.emit(ctx, ev)
	}
}

func (r *Realtime) emit(ctx context.Context, ev models.Event) {
	select {
	case r.events <- ev:
	case <-ctx.Done():
	}
}

// DecodeEvent reduces a push frame to its name and the ids the desk cares about.
// The order id may sit in data.orderId, data._id or data.order._id.
func DecodeEvent(frame []byte) (models.Event, bool) {
	var msg wireMessage
	if err := json.Unmarshal(frame, &msg); err != nil || msg.Event == "" {
		return models.Event{}, false
	}
	ev := models.Event{Name: msg.Event}

	data := bytes.TrimSpace(msg.Data)
	if len(data) == 0 || data[0] != '{' {
		return ev, true
	}
	var payload struct {
		OrderID   json.RawMessage `json:"orderId"`
		ID        json.RawMessage `json:"_id"`
		RequestID json.RawMessage `json:"requestId"`
		Order     *struct {
			ID json.RawMessage `json:"_id"`
		} `json:"order"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ev, true
	}
	if id := idString(payload.OrderID); id != "" {
		ev.OrderID = id
	} else if payload.Order != nil && idString(payload.Order.ID) != "" {
		ev.OrderID = idString(payload.Order.ID)
	} else {
		ev.OrderID = idString(payload.ID)
	}
	ev.RequestID = idString(payload.RequestID)
	return ev, true
}

// idString accepts an id sent either as a JSON string or as a number.
func idString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
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
