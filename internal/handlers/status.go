package handlers

import (
	"time"

	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/http_wrappers"
)

func (h *Handlers) HandleStatus(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	service, version := "bench-metrics", ""
	if h.serviceConfig != nil && h.serviceConfig.Service != nil {
		if h.serviceConfig.Service.Name != "" {
			service = h.serviceConfig.Service.Name
		}
		version = h.serviceConfig.Service.Version
	}

	w.WriteJSON(map[string]interface{}{
		"service":   service,
		"version":   version,
		"status":    "running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, 200)

}
