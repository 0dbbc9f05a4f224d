package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/epos"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

const (
	printedReply  = `<?xml version="1.0" encoding="utf-8"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><response success="true" code="" status="251658262" xmlns="http://www.epson-pos.com/schemas/2011/03/epos-print"/></s:Body></s:Envelope>`
	rejectedReply = `<response success="false" code="EPTR_COVER_OPEN" status="251658264"/>`
)

type memLogStore struct {
	mu      sync.Mutex
	entries []model.PrintLog
}

func (m *memLogStore) AppendLog(_ context.Context, entry model.PrintLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memLogStore) RecentLogs(_ context.Context, limit int) ([]model.PrintLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.PrintLog, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *memLogStore) all() []model.PrintLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.PrintLog(nil), m.entries...)
}

func fakePrinter(t *testing.T, handler http.HandlerFunc) (*httptest.Server, model.PrinterConfig) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	printer := model.DefaultPrinterConfig()
	printer.Name = "Caja"
	printer.Host = strings.TrimPrefix(srv.URL, "http://")
	return srv, printer
}

func newTestService(logs *memLogStore, serialize bool) *PrintService {
	formatter := epos.NewFormatter(time.UTC)
	formatter.Clock = func() time.Time {
		return time.Date(2025, 3, 7, 14, 5, 0, 0, time.UTC)
	}
	return NewPrintService(epos.NewClient(nil), formatter, logs, model.DefaultTicketDefaults(), serialize)
}
