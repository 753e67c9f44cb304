package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/services"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second), srv
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "staff-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestClient_Login(t *testing.T) {
	exp := time.Now().Add(12 * time.Hour).Truncate(time.Second)
	token := signedToken(t, exp)

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/staff/login", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+998901234567", body["phone"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":      token,
			"staff":      map[string]string{"_id": "u1", "name": "Dilnoza", "role": "cashier"},
			"restaurant": map[string]string{"_id": "r1", "name": "Kepket"},
		})
	})

	session, err := client.Login(context.Background(), "+998901234567", "secret")
	require.NoError(t, err)
	assert.Equal(t, token, session.Token)
	assert.Equal(t, "Dilnoza", session.User.Name)
	assert.Equal(t, "Kepket", session.Restaurant.Name)
	require.NotNil(t, session.ExpiresAt)
	assert.True(t, exp.Equal(*session.ExpiresAt))
}

func TestClient_LoginRejected(t *testing.T) {
	called := false
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "Parol noto'g'ri"}`))
	})
	client.OnUnauthorized = func() { called = true }

	_, err := client.Login(context.Background(), "+998901234567", "bad")
	var authErr *services.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Parol noto'g'ri", authErr.Message)
	assert.True(t, called)
}

func TestTokenExpiry(t *testing.T) {
	assert.Nil(t, TokenExpiry("not-a-jwt"))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.Nil(t, TokenExpiry(noExp))

	exp := time.Unix(1900000000, 0)
	got := TokenExpiry(signedToken(t, exp))
	require.NotNil(t, got)
	assert.True(t, exp.Equal(*got))
}

func TestClient_TodayOrders(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/today", r.URL.Path)
		assert.Equal(t, "sh1", r.URL.Query().Get("shiftId"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"orders": [
			{"_id": "o1", "orderNumber": 1, "items": [{"_id": "a", "name": "Osh", "price": 30000, "quantity": 1}]},
			{"orderNumber": 2}
		]}`))
	})
	client.SetToken("tok")

	orders, err := client.TodayOrders(context.Background(), "sh1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, int64(30000), orders[0].Items[0].Price)
}

func TestClient_DailySummaryAndShift(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders/daily-summary":
			w.Write([]byte(`{"summary": {"totalOrders": 5, "paidOrders": 3, "totalRevenue": 250000, "cashRevenue": 150000}}`))
		case "/api/shifts/active":
			w.Write([]byte(`{"shift": {"_id": "sh1", "shiftNumber": 4, "status": "open", "openedAt": "2025-03-14T08:00:00Z"}}`))
		default:
			http.NotFound(w, r)
		}
	})

	summary, err := client.DailySummary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, models.DailySummary{TotalOrders: 5, PaidOrders: 3, TotalRevenue: 250000, CashRevenue: 150000}, summary)

	shift, err := client.ActiveShift(context.Background())
	require.NoError(t, err)
	require.NotNil(t, shift)
	assert.Equal(t, "sh1", shift.ID)
	assert.True(t, shift.IsOpen())
}

func TestClient_NoActiveShift(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, `{"message": "Faol smena yo'q"}`},
		{"null shift", http.StatusOK, `{"shift": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			shift, err := client.ActiveShift(context.Background())
			require.NoError(t, err)
			assert.Nil(t, shift)
		})
	}
}

func TestClient_PayOrder(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/o1/pay", r.URL.Path)
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "card", body["paymentType"])
		assert.Equal(t, map[string]interface{}{"cash": 4000.0, "card": 40000.0, "click": 0.0}, body["paymentSplit"])
		w.Write([]byte(`{"order": {"_id": "o1", "paymentStatus": "paid", "items": [{"_id": "a", "price": 40000, "quantity": 1}]}}`))
	})

	order, err := client.PayOrder(context.Background(), "o1", models.PaymentTypeCard, &models.PaymentSplit{Cash: 4000, Card: 40000})
	require.NoError(t, err)
	assert.True(t, order.IsPaid())
	assert.True(t, order.Items[0].IsPaid())
}

func TestClient_PayItems(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantOrder bool
	}{
		{"with order", `{"order": {"_id": "o1"}, "paymentSession": {"sessionId": "s1", "total": 33000}}`, true},
		{"without order", `{"paymentSession": {"sessionId": "s1", "total": 33000}}`, false},
		{"null order", `{"order": null, "paymentSession": {"sessionId": "s1", "total": 33000}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/orders/o1/pay-items", r.URL.Path)
				var body payItemsRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, []string{"a"}, body.ItemIDs)
				assert.Nil(t, body.PaymentSplit)
				w.Write([]byte(tt.body))
			})

			res, err := client.PayItems(context.Background(), "o1", []string{"a"}, models.PaymentTypeCash, nil)
			require.NoError(t, err)
			assert.Equal(t, "s1", res.Session.SessionID)
			assert.Equal(t, int64(33000), res.Session.Total)
			assert.Equal(t, tt.wantOrder, res.Order != nil)
		})
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	client, srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "Buyurtma allaqachon to'langan"}`))
	})

	_, err := client.PayOrder(context.Background(), "o1", models.PaymentTypeCash, nil)
	var be *services.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusBadRequest, be.Status)
	assert.Equal(t, "Buyurtma allaqachon to'langan", be.UserMessage())

	srv.Close()
	_, err = client.PayOrder(context.Background(), "o1", models.PaymentTypeCash, nil)
	assert.Equal(t, services.KindNetwork, services.KindOf(err))
}

func TestClient_ListEnvelopes(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/foods":
			w.Write([]byte(`[{"_id": "f1", "name": "Osh", "price": 30000, "isAvailable": true}]`))
		case "/api/categories":
			w.Write([]byte(`{"categories": [{"_id": "c1", "title": "Issiq taomlar"}]}`))
		case "/api/orders/waiter-stats":
			w.Write([]byte(`{"data": [{"name": "Aziz", "orders": 4, "revenue": 120000}]}`))
		}
	})

	menu, err := client.Menu(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.MenuItem{{ID: "f1", Name: "Osh", Price: 30000, IsAvailable: true}}, menu)

	cats, err := client.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Issiq taomlar", cats[0].Title)

	stats, err := client.WaiterStats(context.Background(), "sh1")
	require.NoError(t, err)
	assert.Equal(t, []models.WaiterStat{{Name: "Aziz", Orders: 4, Revenue: 120000}}, stats)
}

func TestClient_MergeAndSaboy(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders/merge":
			var req services.MergeRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, services.MergeRequest{TargetID: "a", SourceIDs: []string{"b"}}, req)
			w.Write([]byte(`{"success": true}`))
		case "/api/orders/saboy":
			w.Write([]byte(`{"_id": "s1", "orderType": "saboy", "saboyNumber": 9, "isPaid": true}`))
		}
	})

	require.NoError(t, client.MergeOrders(context.Background(), services.MergeRequest{TargetID: "a", SourceIDs: []string{"b"}}))

	order, err := client.CreateSaboy(context.Background(), []models.ItemRequest{{FoodID: "f1", Quantity: 1}}, models.PaymentTypeCash, nil)
	require.NoError(t, err)
	assert.True(t, order.IsTakeaway())
	assert.True(t, order.IsPaid())
}

func TestClient_SetBaseURL(t *testing.T) {
	client := NewClient("http://old/", 0)
	assert.Equal(t, "http://old", client.BaseURL())
	client.SetBaseURL("http://new:5000/")
	assert.Equal(t, "http://new:5000", client.BaseURL())
}

func TestClient_PayAcceptedButUnreadable(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders/o1/pay":
			w.Write([]byte(`{"order": {"_id": "o1", "items": "n/a"}}`))
		case "/api/orders/o1/pay-items":
			w.Write([]byte(`<html>ok</html>`))
		case "/api/orders/saboy":
			w.Write([]byte(`{"order": {"orderNumber": 3}}`))
		}
	})

	var unreadable *services.UnreadableResponseError

	_, err := client.PayOrder(context.Background(), "o1", models.PaymentTypeCash, nil)
	require.ErrorAs(t, err, &unreadable)
	assert.Equal(t, services.KindMalformed, services.KindOf(err))

	_, err = client.PayItems(context.Background(), "o1", []string{"a"}, models.PaymentTypeCash, nil)
	assert.ErrorAs(t, err, &unreadable)

	_, err = client.CreateSaboy(context.Background(), []models.ItemRequest{{FoodID: "f1", Quantity: 1}}, models.PaymentTypeCash, nil)
	assert.ErrorAs(t, err, &unreadable)
}
