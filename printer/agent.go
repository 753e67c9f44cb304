package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

const (
	DefaultAgentURL = "http://localhost:3847"

	msgNoPrinter   = "Printer tanlanmagan. Sozlamalardan printer tanlang."
	msgUnreachable = "Printer server bilan bog'lanib bo'lmadi"
	msgFailed      = "Chek chiqarishda xatolik"
)

type PrinterInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	IsDefault   bool   `json:"isDefault"`
}

type agentResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Agent is the client of the local print agent. The agent has no idempotency, so
// nothing here retries.
type Agent struct {
	baseURL      string
	httpClient   *http.Client
	healthClient *http.Client
}

func NewAgent(baseURL string, timeout time.Duration) *Agent {
	if baseURL == "" {
		baseURL = DefaultAgentURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Agent{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		healthClient: &http.Client{Timeout: 2 * time.Second},
	}
}

// Printers -> GET /printers
func (a *Agent) Printers(ctx context.Context) ([]PrinterInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/printers", nil)
	if err != nil {
		return nil, &services.PrintError{Message: msgUnreachable, Err: err}
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &services.PrintError{Message: msgUnreachable, Err: err}
	}
	defer resp.Body.Close()

	var body struct {
		Printers []PrinterInfo `json:"printers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &services.PrintError{Message: msgUnreachable, Err: err}
	}
	if body.Printers == nil {
		body.Printers = []PrinterInfo{}
	}
	return body.Printers, nil
}

// Healthy -> GET /health answered 2xx within two seconds
func (a *Agent) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := a.healthClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

type paymentLine struct {
	FoodName string `json:"foodName"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type paymentJob struct {
	PrinterName    string               `json:"printerName"`
	RestaurantName string               `json:"restaurantName"`
	TableName      string               `json:"tableName"`
	WaiterName     string               `json:"waiterName"`
	CashierName    string               `json:"cashierName,omitempty"`
	OrderNumber    int                  `json:"orderNumber"`
	Items          []paymentLine        `json:"items"`
	ItemsTotal     int64                `json:"itemsTotal"`
	TotalPrice     int64                `json:"totalPrice"`
	ServiceFee     int64                `json:"serviceFee"`
	HourlyCharge   int64                `json:"hourlyCharge,omitempty"`
	Discount       int64                `json:"discount"`
	PaymentType    models.PaymentType   `json:"paymentType,omitempty"`
	PaymentSplit   *models.PaymentSplit `json:"paymentSplit,omitempty"`
	IsPaid         bool                 `json:"isPaid"`
	Comment        string               `json:"comment,omitempty"`
	Date           string               `json:"date"`
}

// PrintPayment -> POST /print/payment; also used for pending bills (IsPaid=false)
func (a *Agent) PrintPayment(ctx context.Context, printerName string, receipt models.PaymentReceipt) error {
	job := paymentJob{
		PrinterName:    printerName,
		RestaurantName: receipt.RestaurantName,
		TableName:      receipt.TableName,
		WaiterName:     receipt.WaiterName,
		CashierName:    receipt.CashierName,
		OrderNumber:    receipt.OrderNumber,
		ItemsTotal:     receipt.Subtotal,
		TotalPrice:     receipt.Total,
		ServiceFee:     receipt.ServiceFee,
		HourlyCharge:   receipt.HourlyCharge,
		PaymentType:    receipt.PaymentType,
		PaymentSplit:   receipt.PaymentSplit,
		IsPaid:         receipt.IsPaid,
		Comment:        receipt.Comment,
		Date:           formatDateTime(receipt.Date),
	}
	job.Items = make([]paymentLine, 0, len(receipt.Items))
	for _, line := range receipt.Items {
		job.Items = append(job.Items, paymentLine{FoodName: line.Name, Quantity: line.Quantity, Price: line.Price})
	}
	return a.post(ctx, "/print/payment", printerName, job)
}

// PrintTest -> POST /print/test
func (a *Agent) PrintTest(ctx context.Context, printerName, restaurantName string) error {
	if restaurantName == "" {
		restaurantName = "KEPKET"
	}
	return a.post(ctx, "/print/test", printerName, map[string]string{
		"printerName":    printerName,
		"restaurantName": restaurantName,
	})
}

// PrintRaw -> POST /print/raw with preformatted text
func (a *Agent) PrintRaw(ctx context.Context, printerName, text string) error {
	return a.post(ctx, "/print/raw", printerName, map[string]string{
		"printerName": printerName,
		"text":        text,
	})
}

// PrintHTML -> POST /print/html with a fully rendered document
func (a *Agent) PrintHTML(ctx context.Context, printerName, html string) error {
	return a.post(ctx, "/print/html", printerName, map[string]string{
		"printerName": printerName,
		"html":        html,
	})
}

// PrintDailyReport renders the end-of-day slip as text and prints it raw.
func (a *Agent) PrintDailyReport(ctx context.Context, printerName string, report models.DailyReport) error {
	return a.PrintRaw(ctx, printerName, DailyReportText(report))
}

func (a *Agent) post(ctx context.Context, path, printerName string, payload interface{}) error {
	if strings.TrimSpace(printerName) == "" {
		return &services.PrintError{Message: msgNoPrinter}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return &services.PrintError{Message: msgFailed, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return &services.PrintError{Message: msgUnreachable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &services.PrintError{Message: msgUnreachable, Err: err}
	}
	defer resp.Body.Close()

	var result agentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return &services.PrintError{Message: msgFailed, Err: fmt.Errorf("decode agent response: %w", err)}
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = msgFailed
		}
		return &services.PrintError{Message: msg}
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"path":    path,
		"printer": printerName,
	}).Info("Print job accepted")
	return nil
}
