package epos

import (
	"errors"
	"fmt"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

type ErrorKind string

const (
	KindNone            ErrorKind = ""
	KindConfiguration   ErrorKind = "configuration"
	KindTransport       ErrorKind = "transport"
	KindDeviceRejection ErrorKind = "device_rejection"
	KindUnknown         ErrorKind = "unknown"
)

// ConfigurationError means the printer target is incomplete; nothing was sent.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("printer configuration: %s %s", e.Field, e.Reason)
}

// TransportError means the device could not be reached.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("printer unreachable at %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DeviceRejectionError means the device answered but did not print.
type DeviceRejectionError struct {
	Response model.PrinterResponse
}

func (e *DeviceRejectionError) Error() string {
	status := "none"
	if e.Response.DeviceStatus != nil {
		status = fmt.Sprint(*e.Response.DeviceStatus)
	}
	return fmt.Sprintf("printer rejected the job (code=%q status=%s)", e.Response.ResultCode, status)
}

// ValidateTarget checks the fields needed to address a printer.
func ValidateTarget(host, deviceID string, timeoutMillis int) error {
	switch {
	case host == "":
		return &ConfigurationError{Field: "host", Reason: "is not configured"}
	case deviceID == "":
		return &ConfigurationError{Field: "deviceId", Reason: "is not configured"}
	case timeoutMillis <= 0:
		return &ConfigurationError{Field: "timeoutMs", Reason: "must be positive"}
	}
	return nil
}

// CheckResponse turns a negative device reply into a DeviceRejectionError.
func CheckResponse(resp model.PrinterResponse) error {
	if resp.Succeeded {
		return nil
	}
	return &DeviceRejectionError{Response: resp}
}

func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var cfgErr *ConfigurationError
	var transportErr *TransportError
	var rejectErr *DeviceRejectionError

	switch {
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &rejectErr):
		return KindDeviceRejection
	default:
		return KindUnknown
	}
}

// UserMessage is the text the kiosk shows for each outcome.
func UserMessage(kind ErrorKind) string {
	switch kind {
	case KindNone:
		return "Ticket sent to the printer."
	case KindConfiguration:
		return "Configure the printer IP and device first."
	case KindTransport:
		return "Could not reach the printer. Check the network and the printer IP."
	case KindDeviceRejection:
		return "The printer reported an error. Check the device and try again."
	default:
		return "Unexpected error while printing."
	}
}
