package printer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/utils"
)

// 80mm thermal paper fits 32 monospace characters per line.
const (
	LineWidth = 32
	Sep       = "--------------------------------"
	SepDouble = "================================"
	Footer    = "*** KEPKET ***"
)

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("02.01.2006 15:04")
}

// TenderLabel -> printed name of a tender
func TenderLabel(p models.PaymentType) string {
	switch p {
	case models.PaymentTypeCash:
		return "NAQD"
	case models.PaymentTypeCard:
		return "KARTA"
	case models.PaymentTypeClick:
		return "CLICK"
	}
	return strings.ToUpper(string(p))
}

type receiptLineView struct {
	Name     string
	Quantity int
	Total    string
}

type receiptView struct {
	Restaurant   string
	Title        string
	Date         string
	Table        string
	OrderNumber  int
	Waiter       string
	Cashier      string
	Lines        []receiptLineView
	Count        int
	Subtotal     string
	ServiceFee   string
	HourlyCharge string
	Total        string
	IsPaid       bool
	Tender       string
	Split        []splitView
	Comment      string
	Sep          string
	SepDouble    string
	Footer       string
}

type splitView struct {
	Label  string
	Amount string
}

func newReceiptView(r models.PaymentReceipt) receiptView {
	v := receiptView{
		Restaurant:  r.RestaurantName,
		Title:       "HISOB",
		Date:        formatDateTime(r.Date),
		Table:       r.TableName,
		OrderNumber: r.OrderNumber,
		Waiter:      r.WaiterName,
		Cashier:     r.CashierName,
		Count:       len(r.Items),
		Subtotal:    utils.FormatSumWithUnit(r.Subtotal),
		Total:       utils.FormatSumWithUnit(r.Total),
		IsPaid:      r.IsPaid,
		Comment:     r.Comment,
		Sep:         Sep,
		SepDouble:   SepDouble,
		Footer:      Footer,
	}
	if v.Restaurant == "" {
		v.Restaurant = "RESTORAN"
	}
	if v.Table == "" {
		v.Table = "-"
	}
	if r.IsPaid {
		v.Title = "TO'LOV CHEKI"
		v.Tender = TenderLabel(r.PaymentType)
	}
	if r.ServiceFee > 0 {
		v.ServiceFee = utils.FormatSumWithUnit(r.ServiceFee)
	}
	if r.HourlyCharge > 0 {
		v.HourlyCharge = utils.FormatSumWithUnit(r.HourlyCharge)
	}
	if r.PaymentSplit != nil {
		for _, part := range []struct {
			tender models.PaymentType
			amount int64
		}{
			{models.PaymentTypeCash, r.PaymentSplit.Cash},
			{models.PaymentTypeCard, r.PaymentSplit.Card},
			{models.PaymentTypeClick, r.PaymentSplit.Click},
		} {
			if part.amount > 0 {
				v.Split = append(v.Split, splitView{Label: TenderLabel(part.tender), Amount: utils.FormatSumWithUnit(part.amount)})
			}
		}
	}
	for _, line := range r.Items {
		v.Lines = append(v.Lines, receiptLineView{
			Name:     line.Name,
			Quantity: line.Quantity,
			Total:    utils.FormatSum(line.Total()),
		})
	}
	return v
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
html, body { font-family: 'Courier New', monospace; font-size: 12px; line-height: 1.4; width: 100%; padding: 2mm; }
.center { text-align: center; }
.bold { font-weight: bold; }
.header { font-size: 16px; font-weight: bold; margin-bottom: 4px; }
.large { font-size: 13px; font-weight: bold; }
.sep { text-align: center; margin: 2px 0; }
.row { display: flex; justify-content: space-between; white-space: nowrap; margin: 2px 0; }
.left { flex: 1; }
.right { text-align: right; margin-left: 6px; }
.item-row { display: flex; justify-content: space-between; margin: 3px 0; font-weight: bold; }
.item-name { flex: 1; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
.item-qty { width: 15%; text-align: center; }
.item-price { min-width: 24px; text-align: right; }
.pending { border: 1px dashed #000; padding: 3px; margin: 3px 0; text-align: center; font-weight: bold; }
</style>
</head>
<body>
<div class="center header">{{.Restaurant}}</div>
<div class="sep">{{.Sep}}</div>
<div class="center bold">{{.Title}}</div>
<div class="sep">{{.Sep}}</div>
<div class="row"><span class="left">Sana:</span><span class="right">{{.Date}}</span></div>
<div class="row"><span class="left">Stol:</span><span class="right">{{.Table}}</span></div>
{{if .OrderNumber}}<div class="row"><span class="left">Buyurtma:</span><span class="right">#{{.OrderNumber}}</span></div>{{end}}
{{if .Waiter}}<div class="row"><span class="left">Ofitsiant:</span><span class="right">{{.Waiter}}</span></div>{{end}}
{{if .Cashier}}<div class="row"><span class="left">Kassir:</span><span class="right">{{.Cashier}}</span></div>{{end}}
<div class="sep">{{.SepDouble}}</div>
<div class="item-row bold"><span class="item-name">Tovar</span><span class="item-qty">Soni</span><span class="item-price">Summa</span></div>
<div class="sep">{{.Sep}}</div>
{{range .Lines}}<div class="item-row"><span class="item-name">{{.Name}}</span><span class="item-qty">{{.Quantity}}</span><span class="item-price">{{.Total}}</span></div>
{{end}}<div class="sep">{{.SepDouble}}</div>
<div class="row bold"><span class="left">Jami:</span><span class="right">{{.Count}} ta</span></div>
<div class="row"><span class="left">Taomlar:</span><span class="right">{{.Subtotal}}</span></div>
{{if .ServiceFee}}<div class="row"><span class="left">Xizmat haqi:</span><span class="right">{{.ServiceFee}}</span></div>{{end}}
{{if .HourlyCharge}}<div class="row"><span class="left">Soatlik to'lov:</span><span class="right">{{.HourlyCharge}}</span></div>{{end}}
<div class="row large"><span class="left">ITOGO:</span><span class="right">{{.Total}}</span></div>
<div class="sep">{{.Sep}}</div>
{{if .IsPaid}}{{if .Split}}{{range .Split}}<div class="row"><span class="left">{{.Label}}:</span><span class="right">{{.Amount}}</span></div>
{{end}}{{else}}<div class="row"><span class="left">To'lov turi:</span><span class="right bold">{{.Tender}}</span></div>{{end}}{{end}}
{{if .Comment}}<div class="row"><span class="left">Izoh:</span><span class="right">{{.Comment}}</span></div>{{end}}
<div class="sep">{{.SepDouble}}</div>
{{if .IsPaid}}<div class="center">Xaridingiz uchun rahmat!</div>{{else}}<div class="pending">TO'LOV KUTILMOQDA</div>{{end}}
<div class="sep">{{.Sep}}</div>
<div class="center bold">{{.Footer}}</div>
</body>
</html>
`))

// ReceiptHTML renders a payment receipt or, when the receipt is unpaid, a pending bill.
func ReceiptHTML(r models.PaymentReceipt) (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, newReceiptView(r)); err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return buf.String(), nil
}

// row lays out "label value" across one 32 character line.
func row(label, value string) string {
	gap := LineWidth - len([]rune(label)) - len([]rune(value))
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value
}

func center(s string) string {
	pad := (LineWidth - len([]rune(s))) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func restaurantOrDefault(name string) string {
	if name == "" {
		return "RESTORAN"
	}
	return name
}

// DailyReportText is the end-of-day slip: revenue per tender, waiters, cancellations.
func DailyReportText(r models.DailyReport) string {
	s := r.Summary
	lines := []string{
		center(restaurantOrDefault(r.RestaurantName)),
		SepDouble,
		center("KUNLIK HISOBOT"),
		SepDouble,
		row("Sana:", formatDateTime(r.Date)),
	}
	if r.Shift != nil {
		lines = append(lines, row("Smena:", fmt.Sprintf("#%d", r.Shift.ShiftNumber)))
	}
	if r.CashierName != "" {
		lines = append(lines, row("Kassir:", r.CashierName))
	}
	lines = append(lines,
		row("Buyurtmalar:", fmt.Sprintf("%d ta", s.TotalOrders)),
		row("To'langan:", fmt.Sprintf("%d ta", s.PaidOrders)),
		row("Faol:", fmt.Sprintf("%d ta", s.ActiveOrders)),
		Sep,
		row("Naqd:", utils.FormatSumWithUnit(s.CashRevenue)),
		row("Karta:", utils.FormatSumWithUnit(s.CardRevenue)),
		row("Click:", utils.FormatSumWithUnit(s.ClickRevenue)),
	)
	if r.UnpaidTotal > 0 {
		lines = append(lines, row("To'lanmagan:", utils.FormatSumWithUnit(r.UnpaidTotal)))
	}
	lines = append(lines,
		SepDouble,
		row("JAMI:", utils.FormatSumWithUnit(s.TotalRevenue)),
	)
	if len(r.Waiters) > 0 {
		lines = append(lines, waiterLines(r.Waiters)...)
	}
	if len(r.Cancelled) > 0 {
		lines = append(lines, cancelledLines(r.Cancelled)...)
	}
	lines = append(lines, SepDouble, center(Footer))
	return strings.Join(lines, "\n")
}

// WaiterReportText is the standalone per-waiter report.
func WaiterReportText(restaurant string, stats []models.WaiterStat, at time.Time) string {
	lines := []string{
		center("HISOBOT"),
		center("OFITSIANTLAR BO'YICHA"),
		Sep,
		row("Joyi:", restaurantOrDefault(restaurant)),
		row("Sana:", formatDateTime(at)),
	}
	lines = append(lines, waiterLines(stats)...)
	var total int64
	for _, w := range stats {
		total += w.Revenue
	}
	lines = append(lines, SepDouble, row("UMUMIY JAMI:", utils.FormatSumWithUnit(total)), Sep, center(Footer))
	return strings.Join(lines, "\n")
}

// CancelledReportText lists cancelled items with their value.
func CancelledReportText(restaurant string, items []models.CancelledLine, at time.Time) string {
	lines := []string{
		center("HISOBOT"),
		center("BEKOR QILINGANLAR"),
		Sep,
		row("Joyi:", restaurantOrDefault(restaurant)),
		row("Sana:", formatDateTime(at)),
	}
	lines = append(lines, cancelledLines(items)...)
	lines = append(lines, Sep, center(Footer))
	return strings.Join(lines, "\n")
}

func waiterLines(stats []models.WaiterStat) []string {
	lines := []string{Sep, "OFITSIANTLAR:", Sep}
	for _, w := range stats {
		lines = append(lines, row(w.Name+":", fmt.Sprintf("%d ta, %s", w.Orders, utils.FormatSum(w.Revenue))))
	}
	return lines
}

func cancelledLines(items []models.CancelledLine) []string {
	lines := []string{Sep, "BEKOR QILINGANLAR:", Sep}
	var total int64
	for _, it := range items {
		sum := it.Price * int64(it.Quantity)
		total += sum
		lines = append(lines, row(fmt.Sprintf("%s x%d", it.Name, it.Quantity), utils.FormatSum(sum)))
	}
	lines = append(lines, row("JAMI:", utils.FormatSumWithUnit(total)))
	return lines
}

// ReceiptPDF renders the receipt on an 80mm wide page for download.
func ReceiptPDF(r models.PaymentReceipt) ([]byte, error) {
	v := newReceiptView(r)
	height := 110.0 + float64(len(v.Lines))*5 + float64(len(v.Split))*5

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()

	pdf.SetFont("Courier", "B", 12)
	pdf.CellFormat(0, 6, v.Restaurant, "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "B", 10)
	pdf.CellFormat(0, 5, v.Title, "B", 1, "C", false, 0, "")

	pdf.SetFont("Courier", "", 8)
	pdfRow(pdf, "Sana:", v.Date)
	pdfRow(pdf, "Stol:", v.Table)
	if v.OrderNumber > 0 {
		pdfRow(pdf, "Buyurtma:", fmt.Sprintf("#%d", v.OrderNumber))
	}
	if v.Waiter != "" {
		pdfRow(pdf, "Ofitsiant:", v.Waiter)
	}
	if v.Cashier != "" {
		pdfRow(pdf, "Kassir:", v.Cashier)
	}

	pdf.Ln(1)
	pdf.SetFont("Courier", "B", 8)
	pdf.CellFormat(44, 5, "Tovar", "B", 0, "L", false, 0, "")
	pdf.CellFormat(8, 5, "Soni", "B", 0, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Summa", "B", 1, "R", false, 0, "")
	pdf.SetFont("Courier", "", 8)
	for _, line := range v.Lines {
		pdf.CellFormat(44, 5, line.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(8, 5, fmt.Sprintf("%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(0, 5, line.Total, "", 1, "R", false, 0, "")
	}

	pdf.Ln(1)
	pdfRow(pdf, "Taomlar:", v.Subtotal)
	if v.ServiceFee != "" {
		pdfRow(pdf, "Xizmat haqi:", v.ServiceFee)
	}
	if v.HourlyCharge != "" {
		pdfRow(pdf, "Soatlik to'lov:", v.HourlyCharge)
	}
	pdf.SetFont("Courier", "B", 10)
	pdfRow(pdf, "ITOGO:", v.Total)
	pdf.SetFont("Courier", "", 8)

	if v.IsPaid {
		if len(v.Split) > 0 {
			for _, s := range v.Split {
				pdfRow(pdf, s.Label+":", s.Amount)
			}
		} else {
			pdfRow(pdf, "To'lov turi:", v.Tender)
		}
		pdf.CellFormat(0, 6, "Xaridingiz uchun rahmat!", "T", 1, "C", false, 0, "")
	} else {
		pdf.SetFont("Courier", "B", 9)
		pdf.CellFormat(0, 6, "TO'LOV KUTILMOQDA", "1", 1, "C", false, 0, "")
	}
	pdf.SetFont("Courier", "B", 8)
	pdf.CellFormat(0, 5, Footer, "", 1, "C", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return out.Bytes(), nil
}

func pdfRow(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(36, 5, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, value, "", 1, "R", false, 0, "")
}
