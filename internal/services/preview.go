package services

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/epos"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

// ticketWidthMM matches an 80mm roll with its printable margins.
const ticketWidthMM = 72

//go:embed templates/ticket.html
var ticketTemplateHTML string

var templateFuncs = template.FuncMap{
	"formatMoney": epos.FormatMoney,
}

var ticketTemplate = template.Must(template.New("ticket").Funcs(templateFuncs).Parse(ticketTemplateHTML))

type ticketView struct {
	Title      string
	Body       string
	Lines      int
	TotalCents int64
	WidthMM    int
}

// Previewer renders tickets for screens instead of printers.
type Previewer struct {
	service    *PrintService
	chromePath string
	timeout    time.Duration
}

// NewPreviewer uses chromePath when set, otherwise chromedp looks Chrome up
// on its own.
func NewPreviewer(service *PrintService, chromePath string) *Previewer {
	return &Previewer{
		service:    service,
		chromePath: chromePath,
		timeout:    30 * time.Second,
	}
}

// RenderTicketHTML renders the receipt text inside a printable HTML page.
func (p *Previewer) RenderTicketHTML(req model.TicketRequest) (string, error) {
	var htmlBuffer bytes.Buffer

	view := ticketView{
		Title:      req.OrderReference,
		Body:       p.service.ReceiptBody(req),
		Lines:      len(req.Lines),
		TotalCents: req.TotalCents(),
		WidthMM:    ticketWidthMM,
	}
	if err := ticketTemplate.Execute(&htmlBuffer, view); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return htmlBuffer.String(), nil
}

// RenderTicketPNG screenshots the HTML preview with headless Chrome.
func (p *Previewer) RenderTicketPNG(ctx context.Context, req model.TicketRequest) ([]byte, error) {
	html, err := p.RenderTicketHTML(req)
	if err != nil {
		return nil, err
	}

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(320, 480),
	)
	if p.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.chromePath))
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, p.timeout)
	defer cancelTimeout()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	cdpCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var pngBytes []byte

	err = chromedp.Run(cdpCtx,
		chromedp.Navigate("data:text/html,"+epos.QueryEscape(html)),
		chromedp.WaitVisible("#ticket", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, err := page.CaptureScreenshot().
				WithCaptureBeyondViewport(true).
				Do(ctx)
			if err != nil {
				return err
			}

			pngBytes = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed generating image: %w", err)
	}

	return pngBytes, nil
}
