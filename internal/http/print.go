package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/epos"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/storage"
)

type printTestRequest struct {
	Text string `json:"text"`
}

type printResult struct {
	Succeeded      bool                   `json:"succeeded"`
	ErrorKind      string                 `json:"errorKind,omitempty"`
	Message        string                 `json:"message"`
	OrderReference string                 `json:"orderReference,omitempty"`
	Response       *model.PrinterResponse `json:"response,omitempty"`
}

func (h *Handler) PrintTest(w http.ResponseWriter, r *http.Request) {
	var req printTestRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	printer, err := h.configs.GetPrinterConfig(r.Context())
	if err != nil {
		h.internalError(w, r, err, "failed to load printer config")
		return
	}

	resp, err := h.printer.PrintTest(r.Context(), printer, req.Text)
	writePrintResult(w, "", resp, err)
}

func (h *Handler) PrintTicket(w http.ResponseWriter, r *http.Request) {
	var req model.TicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validateTicket(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	printer, err := h.configs.GetPrinterConfig(r.Context())
	if err != nil {
		h.internalError(w, r, err, "failed to load printer config")
		return
	}

	resp, err := h.printer.PrintTicket(r.Context(), printer, req)
	writePrintResult(w, req.OrderReference, resp, err)
}

func (h *Handler) ReprintOrder(w http.ResponseWriter, r *http.Request) {
	if h.orders == nil {
		writeError(w, http.StatusServiceUnavailable, "order store not configured")
		return
	}

	orderID := chi.URLParam(r, "orderID")
	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		h.internalError(w, r, err, "failed to load order")
		return
	}

	printer, err := h.configs.GetPrinterConfig(r.Context())
	if err != nil {
		h.internalError(w, r, err, "failed to load printer config")
		return
	}

	resp, err := h.printer.Reprint(r.Context(), printer, order)
	writePrintResult(w, order.Folio, resp, err)
}

func (h *Handler) PreviewTicket(w http.ResponseWriter, r *http.Request) {
	var req model.TicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validateTicket(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, h.printer.ReceiptBody(req))

	case "xml":
		w.Header().Set("Content-Type", epos.ContentType)
		_, _ = io.WriteString(w, h.printer.Document(req))

	case "html":
		html, err := h.previewer.RenderTicketHTML(req)
		if err != nil {
			h.internalError(w, r, err, "failed to render preview")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, html)

	case "png":
		png, err := h.previewer.RenderTicketPNG(r.Context(), req)
		if err != nil {
			h.internalError(w, r, err, "failed to render preview")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)

	default:
		writeError(w, http.StatusBadRequest, "format must be text, xml, html or png")
	}
}

func validateTicket(req model.TicketRequest) string {
	for _, line := range req.Lines {
		if line.Quantity < 0 {
			return "quantity must not be negative"
		}
		if line.UnitPriceCents < 0 {
			return "unitPriceCents must not be negative"
		}
	}
	if req.TimeoutMillis < 0 {
		return "timeoutMs must not be negative"
	}
	return ""
}

// writePrintResult maps the print outcome to a status code.
func writePrintResult(w http.ResponseWriter, orderRef string, resp model.PrinterResponse, err error) {
	kind := epos.KindOf(err)
	result := printResult{
		Succeeded:      err == nil,
		ErrorKind:      string(kind),
		Message:        epos.UserMessage(kind),
		OrderReference: orderRef,
	}
	if resp.RawBody != "" {
		result.Response = &resp
	}

	status := http.StatusOK
	switch kind {
	case epos.KindNone:
	case epos.KindConfiguration:
		status = http.StatusPreconditionFailed
	case epos.KindTransport:
		status = http.StatusBadGateway
	case epos.KindDeviceRejection:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, result)
}

// decodeOptional accepts an empty body.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
