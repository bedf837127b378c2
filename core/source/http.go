package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/store"
	"github.com/conduithq/conduit/pkg/clientip"
	"github.com/google/uuid"
)

const (
	maxBodySize       = 1024 * 1024 // 1MB, matches the reference listener's MAX_BODY_SIZE
	processingTimeout = 30 * time.Second
)

// HTTP is a synchronous, single-route listener: it persists the request
// body as a message, waits (up to processingTimeout) for the pipeline to
// reach a terminal status, and reflects that outcome in the response.
// Grounded on the reference HttpListener's single POST-route, wait-for-
// result handler.
type HTTP struct {
	Port         int
	Path         string
	ChannelID    uuid.UUID
	BindAddr     string
	MessageStore store.MessageStore

	server *http.Server
}

func NewHTTP(port int, path string, channelID uuid.UUID) *HTTP {
	if path == "" {
		path = "/"
	}
	return &HTTP{Port: port, Path: path, ChannelID: channelID, BindAddr: "0.0.0.0"}
}

func (h *HTTP) Run(ctx context.Context, sink Sink) error {
	mux := http.NewServeMux()
	mux.HandleFunc(h.Path, func(w http.ResponseWriter, r *http.Request) {
		h.handle(w, r, sink)
	})

	addr := fmt.Sprintf("%s:%d", h.BindAddr, h.Port)
	h.server = &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (h *HTTP) handle(w http.ResponseWriter, r *http.Request, sink Sink) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	origin := fmt.Sprintf("HTTP :%d%s from %s", h.Port, h.Path, clientip.GetIP(r))

	msg := message.New(h.ChannelID, string(body), origin)

	ctx, cancel := context.WithTimeout(r.Context(), processingTimeout)
	defer cancel()

	if err := persistIngest(ctx, h.MessageStore, msg); err != nil {
		http.Error(w, "failed to persist message", http.StatusInternalServerError)
		return
	}

	reply := sink.Submit(ctx, msg)
	status, procErr := reply.Wait(ctx)

	switch {
	case errors.Is(procErr, context.DeadlineExceeded):
		http.Error(w, "processing timeout", http.StatusGatewayTimeout)
	case procErr != nil:
		http.Error(w, procErr.Error(), http.StatusBadRequest)
	case status == message.StatusFiltered:
		http.Error(w, "Message Filtered", http.StatusBadRequest)
	case status == message.StatusError:
		http.Error(w, "message processing failed", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("message processed successfully"))
	}
}
