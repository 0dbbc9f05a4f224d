package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/log"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/services"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/storage"
)

type Handler struct {
	app       model.AppInfo
	configs   storage.ConfigStore
	logs      storage.LogStore
	orders    storage.OrderStore
	printer   *services.PrintService
	previewer *services.Previewer
	location  *time.Location
	now       func() time.Time
}

// NewHandler wires the API. orders may be nil when no database is
// configured; the order routes then answer 503.
func NewHandler(
	app model.AppInfo,
	configs storage.ConfigStore,
	logs storage.LogStore,
	orders storage.OrderStore,
	printer *services.PrintService,
	previewer *services.Previewer,
	location *time.Location,
) *Handler {
	if location == nil {
		location = time.Local
	}
	return &Handler{
		app:       app,
		configs:   configs,
		logs:      logs,
		orders:    orders,
		printer:   printer,
		previewer: previewer,
		location:  location,
		now:       time.Now,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-App-Version", h.app.Version)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) GetPrinterConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.GetPrinterConfig(r.Context())
	if err != nil {
		h.internalError(w, r, err, "failed to load printer config")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// SavePrinterConfig applies the request body over the stored config, so
// omitted fields keep their current values.
func (h *Handler) SavePrinterConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.GetPrinterConfig(r.Context())
	if err != nil {
		h.internalError(w, r, err, "failed to load printer config")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if cfg.TimeoutMillis < 0 {
		writeError(w, http.StatusBadRequest, "timeoutMs must not be negative")
		return
	}

	saved, err := h.configs.SavePrinterConfig(r.Context(), cfg.WithDefaults())
	if err != nil {
		h.internalError(w, r, err, "failed to save printer config")
		return
	}

	log.FromContext(r.Context()).WithField("printer", saved.Label()).Info("Printer config saved")
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) RecentLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.logs.RecentLogs(r.Context(), storage.RecentLogsLimit)
	if err != nil {
		h.internalError(w, r, err, "failed to load print logs")
		return
	}
	if entries == nil {
		entries = []model.PrintLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log.FromContext(r.Context()).WithError(err).Error(msg)
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
