package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestPostgresStore_GetPrinterConfig(t *testing.T) {
	mock := newMock(t)
	updated := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM printer_config WHERE id = 1")).
		WillReturnRows(pgxmock.NewRows([]string{"name", "host", "device_id", "timeout_ms", "enabled", "agent_key", "updated_at"}).
			AddRow("Caja", "192.168.2.251", "local_printer", 30000, true, "key-1", updated))

	cfg, err := NewPostgresStore(mock).GetPrinterConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.PrinterConfig{
		Name:          "Caja",
		Host:          "192.168.2.251",
		DeviceID:      "local_printer",
		TimeoutMillis: 30000,
		Enabled:       true,
		AgentKey:      "key-1",
		UpdatedAt:     updated,
	}, cfg)
}

func TestPostgresStore_GetPrinterConfigMissing(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM printer_config")).WillReturnError(pgx.ErrNoRows)

	cfg, err := NewPostgresStore(mock).GetPrinterConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPrinterConfig(), cfg)
}

func TestPostgresStore_SavePrinterConfig(t *testing.T) {
	mock := newMock(t)
	updated := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO printer_config")).
		WithArgs("Caja", "192.168.2.251", "local_printer", 60000, true, "").
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(updated))

	cfg, err := NewPostgresStore(mock).SavePrinterConfig(context.Background(), model.PrinterConfig{
		Name:    "Caja",
		Host:    "192.168.2.251",
		Enabled: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "local_printer", cfg.DeviceID)
	assert.Equal(t, 60000, cfg.TimeoutMillis)
	assert.Equal(t, updated, cfg.UpdatedAt)
}

func TestPostgresStore_AppendLog(t *testing.T) {
	mock := newMock(t)
	status := 0
	entry := model.PrintLog{
		ID:             uuid.New(),
		Type:           model.PrintTypeTicket,
		OrderReference: "A-1",
		Success:        true,
		DeviceStatus:   &status,
		RawResponse:    `<response success="true" code="" status="0"/>`,
		StartedAt:      time.Now(),
		FinishedAt:     time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO printer_logs")).
		WithArgs(entry.ID, entry.Type, entry.OrderReference, entry.Success, entry.ErrorKind, entry.ResultCode,
			entry.DeviceStatus, entry.RawResponse, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewPostgresStore(mock).AppendLog(context.Background(), entry))
}

func TestPostgresStore_RecentLogs(t *testing.T) {
	mock := newMock(t)
	id := uuid.New()
	status := 251658262
	started := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM printer_logs ORDER BY started_at DESC LIMIT $1")).
		WithArgs(RecentLogsLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "type", "order_reference", "success", "error_kind", "result_code", "device_status", "raw_response", "started_at", "finished_at"}).
			AddRow(id, "ticket", "A-1", false, "device_rejection", "ERR_COVER_OPEN", &status, "<response/>", started, started.Add(time.Second)))

	logs, err := NewPostgresStore(mock).RecentLogs(context.Background(), RecentLogsLimit)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	assert.Equal(t, id, logs[0].ID)
	assert.Equal(t, "ERR_COVER_OPEN", logs[0].ResultCode)
	require.NotNil(t, logs[0].DeviceStatus)
	assert.Equal(t, status, *logs[0].DeviceStatus)
}

func TestPostgresStore_GetOrder(t *testing.T) {
	mock := newMock(t)
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM kiosk_orders WHERE id::text = $1")).
		WithArgs("o-1").
		WillReturnRows(orderRows().AddRow("o-1", "102", "pending", "unpaid", int64(8850), int64(8850), "Ana", "Mesa 4", created))
	mock.ExpectQuery(regexp.QuoteMeta("FROM kiosk_order_items WHERE order_id::text = ANY($1)")).
		WithArgs([]string{"o-1"}).
		WillReturnRows(itemRows().
			AddRow("o-1", "p-1", "Café Americano", "", 2, int64(3500), int64(7000), created).
			AddRow("o-1", "p-2", "Pan dulce", "PD", 1, int64(1850), int64(1850), created.Add(time.Second)))

	order, err := NewPostgresStore(mock).GetOrder(context.Background(), "o-1")
	require.NoError(t, err)

	assert.Equal(t, "102", order.Folio)
	assert.Equal(t, int64(8850), order.TotalCents)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Café Americano", order.Items[0].ProductName)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "PD", order.Items[1].SKU)
}

func TestPostgresStore_GetOrderWithoutCreatedAt(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM kiosk_orders WHERE id::text = $1")).
		WithArgs("o-9").
		WillReturnRows(orderRows().AddRow("o-9", "", "", "", int64(0), int64(1200), "", "", nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM kiosk_order_items WHERE order_id::text = ANY($1)")).
		WithArgs([]string{"o-9"}).
		WillReturnRows(itemRows().AddRow("o-9", "p-1", "Jugo", "", 1, int64(1200), int64(1200), nil))

	order, err := NewPostgresStore(mock).GetOrder(context.Background(), "o-9")
	require.NoError(t, err)

	assert.True(t, order.CreatedAt.IsZero())
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].CreatedAt.IsZero())
	assert.Equal(t, int64(1200), order.TotalCents)
}

func TestPostgresStore_GetOrderNotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM kiosk_orders")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewPostgresStore(mock).GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_ListOrders(t *testing.T) {
	mock := newMock(t)
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM kiosk_orders WHERE created_at >= $1 AND created_at <= $2")).
		WithArgs(from, to).
		WillReturnRows(orderRows().
			AddRow("o-2", "103", "paid", "paid", int64(1000), int64(1000), "", "", from.Add(2*time.Hour)).
			AddRow("o-1", "102", "pending", "unpaid", int64(500), int64(500), "", "", from.Add(time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM kiosk_order_items")).
		WithArgs([]string{"o-2", "o-1"}).
		WillReturnRows(itemRows().
			AddRow("o-1", "p-1", "Té", "", 1, int64(500), int64(500), from).
			AddRow("o-2", "p-2", "Latte", "", 2, int64(500), int64(1000), from))

	orders, err := NewPostgresStore(mock).ListOrders(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "o-2", orders[0].ID)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Latte", orders[0].Items[0].ProductName)
	assert.Equal(t, "Té", orders[1].Items[0].ProductName)
}

func TestPostgresStore_ListOrdersEmpty(t *testing.T) {
	mock := newMock(t)
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM kiosk_orders")).
		WithArgs(from, from).
		WillReturnRows(orderRows())

	orders, err := NewPostgresStore(mock).ListOrders(context.Background(), from, from)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func orderRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "folio", "status", "payment_status", "subtotal_cents", "total_cents", "customer_name", "service_location", "created_at"})
}

func itemRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"order_id", "product_id", "product_name", "product_sku", "quantity", "unit_price_cents", "total_price_cents", "created_at"})
}
