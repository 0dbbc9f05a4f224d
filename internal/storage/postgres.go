package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// PostgresStore implements ConfigStore, LogStore and OrderStore. The kiosk
// tables are owned by the ordering backend and are only read here.
type PostgresStore struct {
	pool DBPool
}

func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetPrinterConfig(ctx context.Context) (model.PrinterConfig, error) {
	var cfg model.PrinterConfig
	row := s.pool.QueryRow(ctx, `SELECT name, host, device_id, timeout_ms, enabled, agent_key, updated_at FROM printer_config WHERE id = 1`)
	err := row.Scan(&cfg.Name, &cfg.Host, &cfg.DeviceID, &cfg.TimeoutMillis, &cfg.Enabled, &cfg.AgentKey, &cfg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DefaultPrinterConfig(), nil
	}
	if err != nil {
		return model.PrinterConfig{}, fmt.Errorf("select printer_config: %w", err)
	}
	return cfg.WithDefaults(), nil
}

func (s *PostgresStore) SavePrinterConfig(ctx context.Context, cfg model.PrinterConfig) (model.PrinterConfig, error) {
	cfg = cfg.WithDefaults()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO printer_config (id, name, host, device_id, timeout_ms, enabled, agent_key, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			host = EXCLUDED.host,
			device_id = EXCLUDED.device_id,
			timeout_ms = EXCLUDED.timeout_ms,
			enabled = EXCLUDED.enabled,
			agent_key = EXCLUDED.agent_key,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`, cfg.Name, cfg.Host, cfg.DeviceID, cfg.TimeoutMillis, cfg.Enabled, cfg.AgentKey)

	if err := row.Scan(&cfg.UpdatedAt); err != nil {
		return model.PrinterConfig{}, fmt.Errorf("upsert printer_config: %w", err)
	}
	return cfg, nil
}

func (s *PostgresStore) AppendLog(ctx context.Context, entry model.PrintLog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO printer_logs (id, type, order_reference, success, error_kind, result_code, device_status, raw_response, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, entry.ID, entry.Type, entry.OrderReference, entry.Success, entry.ErrorKind, entry.ResultCode,
		entry.DeviceStatus, entry.RawResponse, entry.StartedAt, entry.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert printer_logs: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentLogs(ctx context.Context, limit int) ([]model.PrintLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, type, order_reference, success, error_kind, result_code, device_status, raw_response, started_at, finished_at
		FROM printer_logs ORDER BY started_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select printer_logs: %w", err)
	}
	defer rows.Close()

	logs := []model.PrintLog{}
	for rows.Next() {
		var l model.PrintLog
		var status *int
		if err := rows.Scan(&l.ID, &l.Type, &l.OrderReference, &l.Success, &l.ErrorKind, &l.ResultCode,
			&status, &l.RawResponse, &l.StartedAt, &l.FinishedAt); err != nil {
			return nil, err
		}
		l.DeviceStatus = status
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

const orderColumns = `id::text, COALESCE(folio::text, ''), COALESCE(status, ''), COALESCE(payment_status, ''),
	COALESCE(subtotal_cents, 0)::bigint, COALESCE(total_cents, 0)::bigint,
	COALESCE(customer_name, ''), COALESCE(service_location, ''), created_at`

const itemColumns = `order_id::text, COALESCE(product_id::text, ''), COALESCE(product_name, ''), COALESCE(product_sku, ''),
	COALESCE(quantity, 0)::int, COALESCE(unit_price_cents, 0)::bigint, COALESCE(total_price_cents, 0)::bigint, created_at`

func (s *PostgresStore) GetOrder(ctx context.Context, orderID string) (model.KioskOrder, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM kiosk_orders WHERE id::text = $1`, orderID)

	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.KioskOrder{}, ErrNotFound
	}
	if err != nil {
		return model.KioskOrder{}, fmt.Errorf("select kiosk_orders: %w", err)
	}

	items, err := s.itemsByOrder(ctx, []string{order.ID})
	if err != nil {
		return model.KioskOrder{}, err
	}
	order.Items = items[order.ID]

	return order, nil
}

// ListOrders returns orders created in [from, to], newest first.
func (s *PostgresStore) ListOrders(ctx context.Context, from, to time.Time) ([]model.KioskOrder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM kiosk_orders WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at DESC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("select kiosk_orders: %w", err)
	}
	defer rows.Close()

	orders := []model.KioskOrder{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := s.itemsByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

func (s *PostgresStore) itemsByOrder(ctx context.Context, orderIDs []string) (map[string][]model.KioskOrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM kiosk_order_items WHERE order_id::text = ANY($1) ORDER BY created_at ASC
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("select kiosk_order_items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]model.KioskOrderItem, len(orderIDs))
	for rows.Next() {
		var orderID string
		var it model.KioskOrderItem
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.SKU, &it.Quantity,
			&it.UnitPriceCents, &it.TotalPriceCents, &createdAt); err != nil {
			return nil, err
		}
		it.CreatedAt = timeOrZero(createdAt)
		items[orderID] = append(items[orderID], it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (model.KioskOrder, error) {
	var o model.KioskOrder
	var createdAt pgtype.Timestamptz
	err := row.Scan(&o.ID, &o.Folio, &o.Status, &o.PaymentStatus, &o.SubtotalCents, &o.TotalCents,
		&o.CustomerName, &o.ServiceLocation, &createdAt)
	o.CreatedAt = timeOrZero(createdAt)
	return o, err
}

// timeOrZero maps a NULL timestamp to the zero time, which reports treat as
// undated.
func timeOrZero(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}
