package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/epos"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/log"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/metrics"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/storage"
)

const (
	DefaultTestText = "Ticket de prueba\nKafena Kiosk\nOperación impecable, cada día."
	defaultProduct  = "Producto"
	missingOrderRef = "N/A"
)

// PrintService renders tickets, sends them to the configured printer and
// records every transmission attempt. Prints are never retried.
type PrintService struct {
	client    *epos.Client
	formatter *epos.Formatter
	logs      storage.LogStore
	defaults  model.TicketDefaults
	serialize bool
	locks     sync.Map
	now       func() time.Time
}

func NewPrintService(client *epos.Client, formatter *epos.Formatter, logs storage.LogStore, defaults model.TicketDefaults, serialize bool) *PrintService {
	return &PrintService{
		client:    client,
		formatter: formatter,
		logs:      logs,
		defaults:  defaults,
		serialize: serialize,
		now:       time.Now,
	}
}

type printTarget struct {
	host          string
	deviceID      string
	timeoutMillis int
}

func (t printTarget) key() string {
	return t.host + "/" + t.deviceID
}

// PrintTicket prints a kiosk ticket. Empty texts in req take the configured
// ticket defaults; an empty host, device or timeout takes the printer's.
func (s *PrintService) PrintTicket(ctx context.Context, printer model.PrinterConfig, req model.TicketRequest) (model.PrinterResponse, error) {
	return s.printTicket(ctx, printer, req, model.PrintTypeTicket)
}

// PrintOrder prints a kiosk order received from the backend.
func (s *PrintService) PrintOrder(ctx context.Context, printer model.PrinterConfig, order model.KioskOrder) (model.PrinterResponse, error) {
	return s.printTicket(ctx, printer, TicketFromOrder(order, s.defaults), model.PrintTypeTicket)
}

// Reprint prints a stored order again without creating a new one.
func (s *PrintService) Reprint(ctx context.Context, printer model.PrinterConfig, order model.KioskOrder) (model.PrinterResponse, error) {
	return s.printTicket(ctx, printer, TicketFromOrder(order, s.defaults), model.PrintTypeReprint)
}

// PrintTest sends the printer-setup test ticket.
func (s *PrintService) PrintTest(ctx context.Context, printer model.PrinterConfig, text string) (model.PrinterResponse, error) {
	if text == "" {
		text = DefaultTestText
	}

	target, err := resolveTarget(printer, model.TicketRequest{})
	if err != nil {
		return model.PrinterResponse{}, err
	}

	return s.transmit(ctx, printer, target, model.PrintTypeTestBasic, "", epos.BuildBasicDocument(text))
}

// Document renders req exactly as PrintTicket would send it.
func (s *PrintService) Document(req model.TicketRequest) string {
	return s.formatter.Document(s.withDefaults(req), s.feedLines(), s.cutType())
}

// ReceiptBody renders the printable text of req.
func (s *PrintService) ReceiptBody(req model.TicketRequest) string {
	return s.formatter.ReceiptBody(s.withDefaults(req))
}

func (s *PrintService) printTicket(ctx context.Context, printer model.PrinterConfig, req model.TicketRequest, printType string) (model.PrinterResponse, error) {
	target, err := resolveTarget(printer, req)
	if err != nil {
		return model.PrinterResponse{}, err
	}

	return s.transmit(ctx, printer, target, printType, req.OrderReference, s.Document(req))
}

func (s *PrintService) transmit(ctx context.Context, printer model.PrinterConfig, target printTarget, printType, orderRef, document string) (model.PrinterResponse, error) {
	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"printer": printer.Label(),
		"device":  target.deviceID,
		"type":    printType,
		"order":   orderRef,
	})

	unlock := s.lock(target)
	defer unlock()

	startedAt := s.now()
	resp, err := s.client.Send(ctx, target.host, target.deviceID, target.timeoutMillis, document)
	finishedAt := s.now()

	if err == nil {
		err = epos.CheckResponse(resp)
	}
	kind := epos.KindOf(err)

	outcome := "success"
	if kind != epos.KindNone {
		outcome = string(kind)
	}
	metrics.PrintAttempts.WithLabelValues(printType, outcome).Inc()
	metrics.PrintDuration.WithLabelValues(printType).Observe(finishedAt.Sub(startedAt).Seconds())

	entry := model.PrintLog{
		ID:             uuid.New(),
		Type:           printType,
		OrderReference: orderRef,
		Success:        err == nil,
		ErrorKind:      string(kind),
		ResultCode:     resp.ResultCode,
		DeviceStatus:   resp.DeviceStatus,
		RawResponse:    resp.RawBody,
		StartedAt:      startedAt,
		FinishedAt:     finishedAt,
	}
	if kind == epos.KindTransport {
		entry.RawResponse = err.Error()
	}

	if logErr := s.logs.AppendLog(context.WithoutCancel(ctx), entry); logErr != nil {
		logger.WithError(logErr).Error("Failed to store print log")
	}

	switch kind {
	case epos.KindNone:
		logger.Info("Ticket printed")
	case epos.KindDeviceRejection:
		logger.WithFields(logrus.Fields{"code": resp.ResultCode, "status": resp.DeviceStatus}).Warn("Printer rejected the job")
	default:
		logger.WithError(err).Error("Failed to send to printer")
	}

	return resp, err
}

func (s *PrintService) lock(target printTarget) func() {
	if !s.serialize {
		return func() {}
	}
	m, _ := s.locks.LoadOrStore(target.key(), &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *PrintService) withDefaults(req model.TicketRequest) model.TicketRequest {
	if req.HeaderText == "" {
		req.HeaderText = s.defaults.HeaderText
	}
	if req.Subtitle == "" {
		req.Subtitle = s.defaults.Subtitle
	}
	if req.PaymentNote == "" {
		req.PaymentNote = s.defaults.PaymentNote
	}
	if req.TaglineText == "" {
		req.TaglineText = s.defaults.TaglineText
	}
	return req
}

func (s *PrintService) feedLines() int {
	if s.defaults.FeedLines > 0 {
		return s.defaults.FeedLines
	}
	return epos.DefaultFeedLines
}

func (s *PrintService) cutType() epos.CutType {
	if s.defaults.CutType != "" {
		return epos.CutType(s.defaults.CutType)
	}
	return epos.CutFeed
}

func resolveTarget(printer model.PrinterConfig, req model.TicketRequest) (printTarget, error) {
	if !printer.Enabled {
		return printTarget{}, &epos.ConfigurationError{Field: "enabled", Reason: "is off"}
	}

	target := printTarget{
		host:          firstNonEmpty(req.HostAddress, printer.Host),
		deviceID:      firstNonEmpty(req.DeviceID, printer.DeviceID),
		timeoutMillis: req.TimeoutMillis,
	}
	if target.timeoutMillis == 0 {
		target.timeoutMillis = printer.TimeoutMillis
	}

	if err := epos.ValidateTarget(target.host, target.deviceID, target.timeoutMillis); err != nil {
		return printTarget{}, err
	}
	return target, nil
}

// TicketFromOrder maps a stored kiosk order onto a ticket request.
func TicketFromOrder(order model.KioskOrder, defaults model.TicketDefaults) model.TicketRequest {
	lines := make([]model.TicketLine, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, model.TicketLine{
			Quantity:       it.Quantity,
			ProductName:    firstNonEmpty(it.ProductName, defaultProduct),
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	return model.TicketRequest{
		HeaderText:     defaults.HeaderText,
		Subtitle:       defaults.Subtitle,
		OrderReference: firstNonEmpty(order.Folio, order.ID, missingOrderRef),
		Lines:          lines,
		PaymentNote:    defaults.PaymentNote,
		TaglineText:    defaults.TaglineText,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
