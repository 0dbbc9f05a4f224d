package epos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

const (
	ServicePath = "/cgi-bin/epos/service.cgi"
	ContentType = "text/xml; charset=utf-8"
)

// Client posts documents to ePOS printers. It never retries and sets no
// deadline of its own; cancellation comes from the caller's context.
type Client struct {
	http *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{http: httpClient}
}

// BuildEndpointURL addresses the device's control script.
func BuildEndpointURL(hostAddress, deviceID string, timeoutMillis int) string {
	return fmt.Sprintf("http://%s%s?devid=%s&timeout=%d", hostAddress, ServicePath, QueryEscape(deviceID), timeoutMillis)
}

// Send posts documentText once and parses whatever the device answers. A
// non-nil error is always a *TransportError; a negative answer is not an error.
func (c *Client) Send(ctx context.Context, hostAddress, deviceID string, timeoutMillis int, documentText string) (model.PrinterResponse, error) {
	endpoint := BuildEndpointURL(hostAddress, deviceID, timeoutMillis)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(documentText))
	if err != nil {
		return model.PrinterResponse{}, &TransportError{URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", ContentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.PrinterResponse{}, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PrinterResponse{}, &TransportError{URL: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	return ParseResponse(string(body)), nil
}

// QueryEscape percent-encodes s for a query value or a data URL; spaces
// become %20, not "+".
func QueryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
