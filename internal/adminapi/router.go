package adminapi

import (
	"context"
	"log/slog"

	"github.com/conduithq/conduit/core/manager"
	"github.com/conduithq/conduit/core/middleware"
	"github.com/conduithq/conduit/core/router"
	"github.com/conduithq/conduit/core/store"
)

// Deps collects every collaborator the admin API's handlers need.
type Deps struct {
	Manager     *manager.ChannelManager
	Channels    store.ChannelStore
	Messages    store.MessageStore
	Logs        store.LogBuffer
	Logger      *slog.Logger
	APIKey      string
	Healthcheck func(ctx context.Context) error
}

// New builds the admin HTTP router. The returned router already has its
// middleware stack and routes registered and can be passed directly to
// core/server.Server.Start.
func New(deps Deps) router.Router[*router.Context] {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	h := &handlers{deps: deps}

	r := router.New[*router.Context](
		router.WithErrorHandler[*router.Context](h.errorHandler),
	)

	r.Use(
		middleware.RequestID[*router.Context](),
		middleware.Logging[*router.Context](),
		middleware.SecurityHeaders[*router.Context](),
		middleware.CORS[*router.Context](),
		middleware.BodyLimitWithSize[*router.Context](1<<20),
	)

	r.Get("/api/health", h.health)

	r.Get("/api/ws/metrics", h.metricsStream)

	r.Group(func(r router.Router[*router.Context]) {
		r.Use(h.authenticate)

		r.Post("/api/channels", h.createChannel)
		r.Get("/api/channels", h.listChannels)
		r.Get("/api/channels/status", h.channelsStatus)
		r.Post("/api/channels/{id}/start", h.startChannel)
		r.Post("/api/channels/{id}/stop", h.stopChannel)
		r.Delete("/api/channels/{id}", h.deleteChannel)
		r.Post("/api/channels/{id}/test", h.testChannel)

		r.Get("/api/messages", h.listMessages)
		r.Post("/api/messages/{id}/retry", h.retryMessage)

		r.Get("/api/logs", h.listLogs)
	})

	return r
}

// errorHandler renders every handler error through the sanitized JSON
// shape, logging the full detail server-side under its correlation id.
func (h *handlers) errorHandler(ctx *router.Context, err error) {
	renderError(ctx, h.deps.Logger, err)
}
