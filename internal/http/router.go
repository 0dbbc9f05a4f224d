package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/log"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/printer/config", h.GetPrinterConfig)
		r.Put("/printer/config", h.SavePrinterConfig)
		r.Get("/printer/logs", h.RecentLogs)

		r.Post("/print/test", h.PrintTest)
		r.Post("/print/ticket", h.PrintTicket)
		r.Post("/orders/{orderID}/print", h.ReprintOrder)

		r.Post("/ticket/preview", h.PreviewTicket)
		r.Get("/reports", h.Reports)
	})

	return r
}

// requestLogger puts a request-scoped logrus entry in the context and logs
// the outcome of every request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context()).WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(log.ToContext(r.Context(), logger)))

		logger.WithFields(logrus.Fields{
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Debug("Request handled")
	})
}
