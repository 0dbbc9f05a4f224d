package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/reports"
)

const defaultReportWindow = 30 * 24 * time.Hour

func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	if h.orders == nil {
		writeError(w, http.StatusServiceUnavailable, "order store not configured")
		return
	}

	now := h.now().In(h.location)
	to := now
	from := now.Add(-defaultReportWindow)

	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = parseReportTime(v, h.location, false); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = parseReportTime(v, h.location, true); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if from.After(to) {
		writeError(w, http.StatusBadRequest, "from must not be after to")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), from, to)
	if err != nil {
		h.internalError(w, r, err, "failed to load orders")
		return
	}

	writeJSON(w, http.StatusOK, reports.Aggregate(orders, h.location))
}

// parseReportTime accepts RFC 3339 or a bare date in loc. A bare "to" date
// covers the whole day.
func parseReportTime(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", value)
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}
