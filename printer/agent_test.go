package printer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

type agentCall struct {
	Path string
	Body map[string]interface{}
}

func newTestAgent(t *testing.T, reply string) (*Agent, *[]agentCall) {
	t.Helper()
	calls := &[]agentCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := agentCall{Path: r.URL.Path}
		if r.Method == http.MethodPost {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&call.Body))
		}
		*calls = append(*calls, call)
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/printers":
			w.Write([]byte(`{"printers": [{"name": "XP-58", "displayName": "XP-58 (USB)", "isDefault": true}]}`))
		default:
			w.Write([]byte(reply))
		}
	}))
	t.Cleanup(srv.Close)
	return NewAgent(srv.URL, time.Second), calls
}

func sampleReceipt() models.PaymentReceipt {
	return models.PaymentReceipt{
		OrderID:        "o1",
		OrderNumber:    12,
		TableName:      "Stol 4",
		WaiterName:     "Aziz",
		CashierName:    "Dilnoza",
		RestaurantName: "Kepket",
		Items: []models.ReceiptLine{
			{Name: "Osh", Quantity: 1, Price: 30000},
			{Name: "Choy", Quantity: 2, Price: 5000},
		},
		Subtotal:    40000,
		ServiceFee:  4000,
		Total:       44000,
		PaymentType: models.PaymentTypeCash,
		IsPaid:      true,
		Date:        time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC),
	}
}

func TestAgent_PrintPayment(t *testing.T) {
	agent, calls := newTestAgent(t, `{"success": true}`)

	require.NoError(t, agent.PrintPayment(context.Background(), "XP-58", sampleReceipt()))
	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/print/payment", call.Path)
	assert.Equal(t, "XP-58", call.Body["printerName"])
	assert.Equal(t, 44000.0, call.Body["totalPrice"])
	assert.Equal(t, 40000.0, call.Body["itemsTotal"])
	assert.Equal(t, "14.03.2025 12:30", call.Body["date"])
	items := call.Body["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "Choy", items[1].(map[string]interface{})["foodName"])
}

func TestAgent_NoPrinterSelected(t *testing.T) {
	agent, calls := newTestAgent(t, `{"success": true}`)

	err := agent.PrintPayment(context.Background(), "  ", sampleReceipt())
	var pe *services.PrintError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, msgNoPrinter, pe.UserMessage())
	assert.Empty(t, *calls)
}

func TestAgent_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"agent error", `{"success": false, "error": "Qog'oz tugadi"}`, "Qog'oz tugadi"},
		{"agent error without text", `{"success": false}`, msgFailed},
		{"unreadable reply", `<html>`, msgFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent, _ := newTestAgent(t, tt.reply)
			err := agent.PrintRaw(context.Background(), "XP-58", "salom")
			assert.Equal(t, services.KindPrint, services.KindOf(err))
			assert.Equal(t, tt.want, utils.UserMessage(err))
		})
	}

	unreachable := NewAgent("http://127.0.0.1:1", 200*time.Millisecond)
	err := unreachable.PrintTest(context.Background(), "XP-58", "")
	assert.Equal(t, msgUnreachable, utils.UserMessage(err))
	assert.False(t, unreachable.Healthy(context.Background()))
}

func TestAgent_PrintersAndHealth(t *testing.T) {
	agent, _ := newTestAgent(t, `{"success": true}`)

	printers, err := agent.Printers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []PrinterInfo{{Name: "XP-58", DisplayName: "XP-58 (USB)", IsDefault: true}}, printers)
	assert.True(t, agent.Healthy(context.Background()))
}

func TestAgent_PrintDailyReportAndHTML(t *testing.T) {
	agent, calls := newTestAgent(t, `{"success": true}`)

	report := models.DailyReport{RestaurantName: "Kepket", Summary: models.DailySummary{TotalRevenue: 250000}}
	require.NoError(t, agent.PrintDailyReport(context.Background(), "XP-58", report))
	require.NoError(t, agent.PrintHTML(context.Background(), "XP-58", "<p>chek</p>"))
	require.NoError(t, agent.PrintTest(context.Background(), "XP-58", ""))

	require.Len(t, *calls, 3)
	assert.Equal(t, "/print/raw", (*calls)[0].Path)
	assert.True(t, strings.Contains((*calls)[0].Body["text"].(string), "KUNLIK HISOBOT"))
	assert.Equal(t, "/print/html", (*calls)[1].Path)
	assert.Equal(t, "<p>chek</p>", (*calls)[1].Body["html"])
	assert.Equal(t, "KEPKET", (*calls)[2].Body["restaurantName"])
}
