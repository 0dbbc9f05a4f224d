package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/epos"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/log"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/metrics"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/storage"
)

const DefaultRetryDelay = 5 * time.Second

// Agent keeps a websocket session with the backend and prints the orders it
// pushes. A failed print is reported, never retried.
type Agent struct {
	WSURL      string
	APIKey     string
	Configs    storage.ConfigStore
	Printer    *PrintService
	Dialer     *websocket.Dialer
	RetryDelay time.Duration
}

func NewAgent(wsURL, apiKey string, configs storage.ConfigStore, printer *PrintService) *Agent {
	return &Agent{
		WSURL:      wsURL,
		APIKey:     apiKey,
		Configs:    configs,
		Printer:    printer,
		Dialer:     websocket.DefaultDialer,
		RetryDelay: DefaultRetryDelay,
	}
}

// Run connects, serves the session and reconnects until ctx is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	logger := log.FromContext(ctx).WithField("ws", a.WSURL)

	header := http.Header{}
	header.Add("X-Api-Key", a.APIKey)

	logger.Info("Connecting to WebSocket...")

	for {
		conn, _, err := a.Dialer.DialContext(ctx, a.WSURL, header)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			metrics.AgentConnections.WithLabelValues("failed").Inc()
			logger.WithError(err).Warnf("Connection failed. Retrying in %s...", a.RetryDelay)
		} else {
			metrics.AgentConnections.WithLabelValues("connected").Inc()
			logger.Info("Connected.")
			a.handleConnection(log.ToContext(ctx, logger), conn)

			_ = conn.Close()
			logger.Infof("Disconnected. Reconnecting in %s...", a.RetryDelay)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(a.RetryDelay):
		}
	}
}

func (a *Agent) handleConnection(ctx context.Context, conn *websocket.Conn) {
	logger := log.FromContext(ctx)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	printer, err := a.Configs.GetPrinterConfig(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to load printer config")
		return
	}

	regMsg := model.WSMessage{
		Type:     model.MessageTypeRegister,
		AgentKey: printer.AgentKey,
	}
	if err := conn.WriteJSON(regMsg); err != nil {
		logger.WithError(err).Error("Failed to send register")
		return
	}

	for {
		var msg model.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				logger.WithError(err).Warn("Read error")
			}
			return
		}

		switch msg.Type {
		case model.MessageTypeRegistered:
			logger.Info("Successfully registered with server.")

		case model.MessageTypePing:
			logger.Debug("Received ping, sending pong...")
			if err := conn.WriteJSON(model.WSMessage{Type: model.MessageTypePong, AgentKey: printer.AgentKey}); err != nil {
				logger.WithError(err).Error("Failed to send pong")
				return
			}

		case model.MessageTypeNewOrder:
			logger.Info("Received print order...")
			if err := a.handlePrintJob(ctx, conn, msg.Order); err != nil {
				logger.WithError(err).Error("Failed to report print result")
				return
			}

		case model.MessageTypeUnregister:
			logger.Info("Server requested unregister.")
			return

		default:
			logger.Warnf("Unknown message type: %s", msg.Type)
		}
	}
}

// handlePrintJob prints every order of the payload and reports each outcome.
// Only a failed write to the socket is returned.
func (a *Agent) handlePrintJob(ctx context.Context, conn *websocket.Conn, rawOrder json.RawMessage) error {
	logger := log.FromContext(ctx)

	printer, err := a.Configs.GetPrinterConfig(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to load printer config")
		return conn.WriteJSON(model.WSMessage{
			Type:      model.MessageTypePrintFailed,
			Error:     err.Error(),
			ErrorKind: string(epos.KindConfiguration),
		})
	}

	var payload model.OrderPayload
	if err := json.Unmarshal(rawOrder, &payload); err != nil {
		logger.WithError(err).Error("Error parsing order JSON")
		return conn.WriteJSON(model.WSMessage{
			Type:      model.MessageTypePrintFailed,
			AgentKey:  printer.AgentKey,
			Error:     fmt.Sprintf("invalid order payload: %v", err),
			ErrorKind: string(epos.KindUnknown),
		})
	}

	if !payload.Success || len(payload.Data.Orders) == 0 {
		logger.Warn("No valid orders in payload")
		return nil
	}

	for _, order := range payload.Data.Orders {
		ref := TicketFromOrder(order, model.TicketDefaults{}).OrderReference
		orderLogger := logger.WithFields(logrus.Fields{"order": ref, "items": len(order.Items)})
		orderLogger.Info("Processing order")

		resp, err := a.Printer.PrintOrder(log.ToContext(ctx, orderLogger), printer, order)

		reply := model.WSMessage{
			Type:     model.MessageTypePrinted,
			AgentKey: printer.AgentKey,
			OrderRef: ref,
		}
		if resp.RawBody != "" {
			reply.Result = &resp
		}
		if err != nil {
			kind := epos.KindOf(err)
			reply.Type = model.MessageTypePrintFailed
			reply.Error = err.Error()
			reply.ErrorKind = string(kind)
			orderLogger.WithField("kind", kind).Warn(epos.UserMessage(kind))
		}

		if err := conn.WriteJSON(reply); err != nil {
			return fmt.Errorf("failed to send %s: %w", reply.Type, err)
		}
	}

	return nil
}
