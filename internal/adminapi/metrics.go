package adminapi

import (
	"context"

	"github.com/conduithq/conduit/core/handler"
	"github.com/conduithq/conduit/core/response"
	"github.com/conduithq/conduit/core/router"
	"github.com/gorilla/websocket"
)

// metricsStream serves GET /api/ws/metrics. It sits outside the
// authenticated route group because browsers cannot set a custom header
// during the WebSocket handshake, so the bearer token is accepted as a
// ?token= query parameter instead.
func (h *handlers) metricsStream(ctx *router.Context) handler.Response {
	token := ctx.Request().URL.Query().Get("token")
	if !validToken(h.deps.APIKey, token) {
		return response.Error(response.ErrUnauthorized.WithMessage("missing or invalid token"))
	}

	if h.deps.Manager.Metrics == nil {
		return response.Error(response.ErrServiceUnavailable.WithMessage("metrics feed unavailable"))
	}

	return response.WebSocket(h.streamMetrics, response.WithWSAllowAnyOrigin())
}

// streamMetrics forwards every broadcast MetricUpdate to conn as JSON
// until the subscriber's context is cancelled or the connection breaks.
func (h *handlers) streamMetrics(ctx context.Context, conn *websocket.Conn) error {
	sub := h.deps.Manager.Metrics.Subscribe(ctx)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Receive(ctx):
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(msg.Data); err != nil {
				return err
			}
		}
	}
}
