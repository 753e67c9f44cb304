package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

// Client talks to the restaurant backend REST API. Order bodies are handed to the
// normalizer untouched; this package never reads order fields itself.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	token      string
	httpClient *http.Client

	// OnUnauthorized is called whenever the backend answers 401.
	OnUnauthorized func()
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) SetBaseURL(base string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(base, "/")
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type loginResponse struct {
	Staff      models.User       `json:"staff"`
	Token      string            `json:"token"`
	Restaurant models.Restaurant `json:"restaurant"`
}

// Login -> POST /api/staff/login
func (c *Client) Login(ctx context.Context, phone, password string) (models.Session, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/staff/login", map[string]string{
		"phone":    phone,
		"password": password,
	})
	if err != nil {
		return models.Session{}, err
	}
	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.Session{}, &services.BackendError{Status: http.StatusOK, Message: "Login javobi noto'g'ri"}
	}
	if resp.Token == "" {
		return models.Session{}, &services.AuthError{Message: "empty token"}
	}
	return models.Session{
		Token:      resp.Token,
		User:       resp.Staff,
		Restaurant: resp.Restaurant,
		ExpiresAt:  TokenExpiry(resp.Token),
	}, nil
}

// TokenExpiry reads the exp claim without verifying the signature; the backend owns
// the key, the desk only needs to know when to ask for a new login.
func TokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}

// TodayOrders -> GET /api/orders/today
func (c *Client) TodayOrders(ctx context.Context, shiftID string) ([]models.Order, error) {
	body, err := c.do(ctx, http.MethodGet, withShift("/api/orders/today", shiftID), nil)
	if err != nil {
		return nil, err
	}
	return services.NormalizeOrders(body)
}

// DailySummary -> GET /api/orders/daily-summary
func (c *Client) DailySummary(ctx context.Context, shiftID string) (models.DailySummary, error) {
	body, err := c.do(ctx, http.MethodGet, withShift("/api/orders/daily-summary", shiftID), nil)
	if err != nil {
		return models.DailySummary{}, err
	}
	var summary models.DailySummary
	if err := decodeObject(body, "summary", &summary); err != nil {
		return models.DailySummary{}, err
	}
	return summary, nil
}

// ActiveShift -> GET /api/shifts/active; nil when no shift is open
func (c *Client) ActiveShift(ctx context.Context) (*models.Shift, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/shifts/active", nil)
	if err != nil {
		var be *services.BackendError
		if errors.As(err, &be) && be.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	var envelope struct {
		Shift *models.Shift `json:"shift"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &services.BackendError{Status: http.StatusOK, Message: "Smena ma'lumotlari noto'g'ri"}
	}
	if envelope.Shift == nil || envelope.Shift.ID == "" {
		return nil, nil
	}
	return envelope.Shift, nil
}

type payRequest struct {
	PaymentType  models.PaymentType   `json:"paymentType"`
	PaymentSplit *models.PaymentSplit `json:"paymentSplit,omitempty"`
}

// PayOrder -> POST /api/orders/{id}/pay
func (c *Client) PayOrder(ctx context.Context, orderID string, tender models.PaymentType, split *models.PaymentSplit) (models.Order, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(orderID)+"/pay", payRequest{
		PaymentType:  tender,
		PaymentSplit: split,
	})
	if err != nil {
		return models.Order{}, err
	}
	order, err := orderFrom(body)
	if err != nil {
		return models.Order{}, &services.UnreadableResponseError{Op: "pay order", Err: err}
	}
	return order, nil
}

type payItemsRequest struct {
	ItemIDs      []string             `json:"itemIds"`
	PaymentType  models.PaymentType   `json:"paymentType"`
	PaymentSplit *models.PaymentSplit `json:"paymentSplit,omitempty"`
}

// PayItems -> POST /api/orders/{id}/pay-items
func (c *Client) PayItems(ctx context.Context, orderID string, itemIDs []string, tender models.PaymentType, split *models.PaymentSplit) (models.ItemsPayment, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(orderID)+"/pay-items", payItemsRequest{
		ItemIDs:      itemIDs,
		PaymentType:  tender,
		PaymentSplit: split,
	})
	if err != nil {
		return models.ItemsPayment{}, err
	}

	var envelope struct {
		Order   json.RawMessage              `json:"order"`
		Session models.PartialPaymentSession `json:"paymentSession"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return models.ItemsPayment{}, &services.UnreadableResponseError{
			Op:  "pay items",
			Err: &services.MalformedOrderError{Reason: err.Error()},
		}
	}
	result := models.ItemsPayment{Session: envelope.Session}
	if len(bytes.TrimSpace(envelope.Order)) > 0 && string(bytes.TrimSpace(envelope.Order)) != "null" {
		order, err := services.NormalizeOrder(envelope.Order)
		if err != nil {
			return models.ItemsPayment{}, &services.UnreadableResponseError{Op: "pay items", Err: err}
		}
		result.Order = &order
	}
	return result, nil
}

type itemsRequest struct {
	Items        []models.ItemRequest `json:"items"`
	PaymentType  models.PaymentType   `json:"paymentType,omitempty"`
	PaymentSplit *models.PaymentSplit `json:"paymentSplit,omitempty"`
}

// CreateSaboy -> POST /api/orders/saboy, created already paid
func (c *Client) CreateSaboy(ctx context.Context, items []models.ItemRequest, tender models.PaymentType, split *models.PaymentSplit) (models.Order, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/orders/saboy", itemsRequest{
		Items:        items,
		PaymentType:  tender,
		PaymentSplit: split,
	})
	if err != nil {
		return models.Order{}, err
	}
	order, err := orderFrom(body)
	if err != nil {
		return models.Order{}, &services.UnreadableResponseError{Op: "create saboy", Err: err}
	}
	return order, nil
}

// AddItems -> POST /api/orders/{id}/items
func (c *Client) AddItems(ctx context.Context, orderID string, items []models.ItemRequest) (models.Order, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(orderID)+"/items", itemsRequest{Items: items})
	if err != nil {
		return models.Order{}, err
	}
	return orderFrom(body)
}

// MergeOrders -> POST /api/orders/merge
func (c *Client) MergeOrders(ctx context.Context, req services.MergeRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/api/orders/merge", req)
	return err
}

// Menu -> GET /api/foods
func (c *Client) Menu(ctx context.Context) ([]models.MenuItem, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/foods", nil)
	if err != nil {
		return nil, err
	}
	var items []models.MenuItem
	if err := decodeList(body, "foods", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Categories -> GET /api/categories
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/categories", nil)
	if err != nil {
		return nil, err
	}
	var cats []models.Category
	if err := decodeList(body, "categories", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// WaiterStats -> GET /api/orders/waiter-stats
func (c *Client) WaiterStats(ctx context.Context, shiftID string) ([]models.WaiterStat, error) {
	body, err := c.do(ctx, http.MethodGet, withShift("/api/orders/waiter-stats", shiftID), nil)
	if err != nil {
		return nil, err
	}
	var stats []models.WaiterStat
	if err := decodeList(body, "stats", &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// do sends one request and classifies every failure. It never retries.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	op := method + " " + path

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reader)
	if err != nil {
		return nil, &services.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &services.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &services.NetworkError{Op: op, Err: err}
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"op":       op,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Backend call")

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return nil, &services.AuthError{Message: backendMessage(body)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &services.BackendError{Status: resp.StatusCode, Message: backendMessage(body)}
	}
	return body, nil
}

// backendMessage -> the backend's "message" field, or the generic fallback
func backendMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return utils.DefaultErrorMessage
}

func withShift(path, shiftID string) string {
	if shiftID == "" {
		return path
	}
	return path + "?shiftId=" + url.QueryEscape(shiftID)
}

// orderFrom -> order under "order" or the whole body
func orderFrom(body []byte) (models.Order, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if inner, ok := envelope["order"]; ok {
			return services.NormalizeOrder(inner)
		}
	}
	return services.NormalizeOrder(body)
}

// decodeList accepts a bare array, {key: [...]} or {data: [...]}.
func decodeList(body []byte, key string, out interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return &services.BackendError{Status: http.StatusOK, Message: utils.DefaultErrorMessage}
		}
		inner, ok := envelope[key]
		if !ok {
			inner, ok = envelope["data"]
		}
		if !ok {
			return &services.BackendError{Status: http.StatusOK, Message: utils.DefaultErrorMessage}
		}
		trimmed = inner
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return &services.BackendError{Status: http.StatusOK, Message: utils.DefaultErrorMessage}
	}
	return nil
}

// decodeObject accepts the object itself or the object wrapped under key.
func decodeObject(body []byte, key string, out interface{}) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &services.BackendError{Status: http.StatusOK, Message: utils.DefaultErrorMessage}
	}
	if inner, ok := envelope[key]; ok {
		body = inner
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &services.BackendError{Status: http.StatusOK, Message: utils.DefaultErrorMessage}
	}
	return nil
}
