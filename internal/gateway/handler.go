// Package gateway is the single entry point that routes POS API calls to the
// backing services by path prefix.
package gateway

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/restaurant-pos/internal/httpx"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
)

// Backends are the services the gateway fronts.
type Backends struct {
	Orders       *ServiceProxy
	Billing      *ServiceProxy
	Inventory    *ServiceProxy
	Reservations *ServiceProxy
	Staff        *ServiceProxy
}

type Handler struct {
	backends Backends
	logger   *slog.Logger
}

func NewHandler(backends Backends, logger *slog.Logger) *Handler {
	return &Handler{backends: backends, logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	routes := []struct {
		prefix string
		proxy  *ServiceProxy
	}{
		{"/orders", h.backends.Orders},
		{"/bills", h.backends.Billing},
		{"/inventory", h.backends.Inventory},
		{"/reservations", h.backends.Reservations},
		{"/staff", h.backends.Staff},
	}
	for _, route := range routes {
		handle := telemetry.WithHTTPRoute(h.forward(route.proxy))
		mux.HandleFunc(route.prefix, handle)
		mux.HandleFunc(route.prefix+"/", handle)
	}
}

func (h *Handler) forward(proxy *ServiceProxy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.proxyRequest(w, r, proxy)
	}
}

func (h *Handler) proxyRequest(w http.ResponseWriter, r *http.Request, proxy *ServiceProxy) {
	resp, err := proxy.ForwardRequest(r.Context(), r)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to forward request", "error", err, "service", proxy.Name(), "path", r.URL.Path)
		httpx.WriteMessage(w, h.logger, http.StatusBadGateway, "service unavailable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	w.WriteHeader(resp.StatusCode)

	h.logger.InfoContext(r.Context(), "request proxied", "service", proxy.Name(), "method", r.Method, "path", r.URL.Path, "status", resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to copy response body", "error", err)
	}
}
