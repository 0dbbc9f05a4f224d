// Package storage keeps the printer configuration and the print log, and
// reads kiosk orders from the backend database.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

// RecentLogsLimit is how many print logs the setup screen shows.
const RecentLogsLimit = 50

var ErrNotFound = errors.New("not found")

// ConfigStore returns the default printer configuration when none was saved.
type ConfigStore interface {
	GetPrinterConfig(ctx context.Context) (model.PrinterConfig, error)
	SavePrinterConfig(ctx context.Context, cfg model.PrinterConfig) (model.PrinterConfig, error)
}

type LogStore interface {
	AppendLog(ctx context.Context, entry model.PrintLog) error
	// RecentLogs returns up to limit entries, newest first.
	RecentLogs(ctx context.Context, limit int) ([]model.PrintLog, error)
}

type OrderStore interface {
	GetOrder(ctx context.Context, orderID string) (model.KioskOrder, error)
	ListOrders(ctx context.Context, from, to time.Time) ([]model.KioskOrder, error)
}
