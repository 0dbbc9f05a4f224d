// Package epos renders kiosk tickets as Epson ePOS-Print documents and sends
// them to the printer's service.cgi endpoint.
package epos

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

// Column layout of a 58mm/80mm ticket printed with font A.
const (
	LineWidth    = 32
	NameColumn   = 22
	AmountColumn = 10
	labelColumn  = 9

	CurrencySign = "$"
)

var separator = strings.Repeat("-", LineWidth)

// Labels are the fixed captions of the receipt rows.
type Labels struct {
	Order   string
	Date    string
	Time    string
	Total   string
	Payment string
}

func DefaultLabels() Labels {
	return Labels{
		Order:   "PEDIDO:",
		Date:    "FECHA:",
		Time:    "HORA:",
		Total:   "TOTAL A PAGAR:",
		Payment: "PAGO:",
	}
}

// Formatter turns ticket requests into receipt text. The clock and location
// only affect the date and time rows.
type Formatter struct {
	Labels   Labels
	Location *time.Location
	Clock    func() time.Time
}

func NewFormatter(loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{
		Labels:   DefaultLabels(),
		Location: loc,
		Clock:    time.Now,
	}
}

// ReceiptBody renders req at the formatter's current time.
func (f *Formatter) ReceiptBody(req model.TicketRequest) string {
	now := time.Now()
	if f.Clock != nil {
		now = f.Clock()
	}
	if f.Location != nil {
		now = now.In(f.Location)
	}
	return f.receiptBody(req, now)
}

// Document renders req and wraps it for transmission.
func (f *Formatter) Document(req model.TicketRequest, feedLines int, cut CutType) string {
	return WrapAsTransportEnvelope(WrapAsPrinterMarkup(f.ReceiptBody(req), feedLines, cut))
}

func (f *Formatter) receiptBody(req model.TicketRequest, now time.Time) string {
	labels := f.Labels
	if labels == (Labels{}) {
		labels = DefaultLabels()
	}

	lines := make([]string, 0, len(req.Lines)+14)
	lines = append(lines,
		CenterText(req.HeaderText, LineWidth),
		CenterText(req.Subtitle, LineWidth),
		"",
		separator,
		padRight(labels.Order, labelColumn)+"#"+req.OrderReference,
		padRight(labels.Date, labelColumn)+now.Format("2/1/2006"),
		padRight(labels.Time, labelColumn)+now.Format("15:04"),
		separator,
	)

	for _, l := range req.Lines {
		lines = append(lines, FormatCurrencyLine(l.Quantity, l.ProductName, l.LineTotalCents()))
	}

	lines = append(lines,
		separator,
		padRight(labels.Total, NameColumn)+padLeft(CurrencySign+FormatMoney(req.TotalCents()), AmountColumn),
		labels.Payment+" "+req.PaymentNote,
		"",
		CenterText(req.TaglineText, LineWidth),
	)

	return strings.Join(lines, "\n")
}

// BuildReceiptBody renders req with the default labels, stamping the date and
// time rows from now in now's location.
func BuildReceiptBody(req model.TicketRequest, now time.Time) string {
	f := Formatter{Labels: DefaultLabels()}
	return f.receiptBody(req, now)
}

// FormatCurrencyLine renders "{qty} x {name}" truncated or padded to the name
// column, followed by the amount right-justified in the amount column.
// Amounts wider than the column are printed whole.
func FormatCurrencyLine(quantity int, name string, lineTotalCents int64) string {
	left := fmt.Sprintf("%d x %s", quantity, name)
	right := CurrencySign + FormatMoney(lineTotalCents)
	return padRight(left, NameColumn) + padLeft(right, AmountColumn)
}

// CenterText prefixes text with enough spaces to center it in lineWidth.
// Text as wide as the line or wider is returned as is.
func CenterText(text string, lineWidth int) string {
	n := utf8.RuneCountInString(text)
	if n >= lineWidth {
		return text
	}
	return strings.Repeat(" ", (lineWidth-n)/2) + text
}

// FormatMoney renders cents as a fixed two-decimal amount, e.g. 7000 -> "70.00".
func FormatMoney(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func padRight(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if count > n {
		return string([]rune(s)[:n])
	}
	return s + strings.Repeat(" ", n-count)
}

func padLeft(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if count >= n {
		return s
	}
	return strings.Repeat(" ", n-count) + s
}
