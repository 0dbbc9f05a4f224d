package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	PrintTypeTicket    = "ticket"
	PrintTypeTestBasic = "test_basic"
	PrintTypeReprint   = "reprint"
)

// PrintLog records one transmission attempt, successful or not.
type PrintLog struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	OrderReference string    `json:"order_reference,omitempty"`
	Success        bool      `json:"success"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	ResultCode     string    `json:"result_code,omitempty"`
	DeviceStatus   *int      `json:"device_status,omitempty"`
	RawResponse    string    `json:"raw_response"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
