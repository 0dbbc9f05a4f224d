package model

import "time"

// --- Order Structures (kiosk_orders / kiosk_order_items) ---

type KioskOrder struct {
	ID              string           `json:"id"`
	Folio           string           `json:"folio"`
	Status          string           `json:"status"`
	PaymentStatus   string           `json:"payment_status"`
	SubtotalCents   int64            `json:"subtotal_cents"`
	TotalCents      int64            `json:"total_cents"`
	CustomerName    string           `json:"customer_name,omitempty"`
	ServiceLocation string           `json:"service_location,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	Items           []KioskOrderItem `json:"kiosk_order_items"`
}

type KioskOrderItem struct {
	ProductID       string    `json:"product_id,omitempty"`
	ProductName     string    `json:"product_name"`
	SKU             string    `json:"product_sku,omitempty"`
	Quantity        int       `json:"quantity"`
	UnitPriceCents  int64     `json:"unit_price_cents"`
	TotalPriceCents int64     `json:"total_price_cents"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// OrderPayload is the body of a print_order message from the backend.
type OrderPayload struct {
	Success bool `json:"success"`
	Data    struct {
		Orders []KioskOrder `json:"orders"`
	} `json:"data"`
}
