package httpx

import (
	"io"
	"log/slog"
	"net/http"
)

// maxWebhookBody bounds how much of an inbound webhook payload is read.
const maxWebhookBody = 1 << 20 // 1 MiB

// WebhookHandlers accepts inbound notifications from external fleet systems.
// Payloads are acknowledged and logged; processing happens out of band.
type WebhookHandlers struct {
	Logger *slog.Logger
}

func (h *WebhookHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Receive acknowledges a webhook delivery.
// POST /webhooks/{source}.
func (h *WebhookHandlers) Receive(w http.ResponseWriter, r *http.Request) {
	source := r.PathValue("source")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "unreadable_body", Err: err})
		return
	}

	h.logger().InfoContext(r.Context(), "webhook received",
		"source", source,
		"bytes", len(body),
	)

	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
