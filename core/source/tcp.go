package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/mllp"
	"github.com/conduithq/conduit/core/store"
	"github.com/google/uuid"
)

const frameIdleTimeout = 30 * time.Second

// TCP is an MLLP listener: it accepts connections, frames inbound bytes
// into complete HL7 messages via mllp.FrameAccumulator, submits each to
// the sink, and writes back an ACK/NACK built from the processing result.
// Grounded on the reference TcpListener, upgraded to use the full frame
// accumulator (the reference listener's own comments note its MVP
// single-read framing was a simplification "omitted for brevity").
type TCP struct {
	Port         int
	ChannelID    uuid.UUID
	BindAddr     string
	MessageStore store.MessageStore
	Logger       *slog.Logger
	listenFunc   func(network, address string) (net.Listener, error)
}

func NewTCP(port int, channelID uuid.UUID) *TCP {
	return &TCP{
		Port:      port,
		ChannelID: channelID,
		BindAddr:  "0.0.0.0",
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (t *TCP) Run(ctx context.Context, sink Sink) error {
	listen := t.listenFunc
	if listen == nil {
		listen = net.Listen
	}

	addr := fmt.Sprintf("%s:%d", t.BindAddr, t.Port)
	ln, err := listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind TCP listener on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept TCP connection: %w", err)
			}
		}
		go t.handleConn(ctx, conn, sink)
	}
}

func (t *TCP) handleConn(ctx context.Context, conn net.Conn, sink Sink) {
	defer conn.Close()

	acc := mllp.NewFrameAccumulator(frameIdleTimeout)
	buf := make([]byte, 4096)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}

		for _, frame := range acc.Feed(buf[:n]) {
			origin := fmt.Sprintf("TCP :%d from %s", t.Port, conn.RemoteAddr())
			msg := message.New(t.ChannelID, frame, origin)

			// Persist first, then ACK, then enqueue -- in that order
			// (spec.md §4.5). A persistence failure is logged CRITICAL
			// but the peer still gets a positive ACK so it doesn't
			// re-send a message we can no longer guarantee was stored;
			// the message itself is not enqueued in that case, trading
			// data safety for non-duplication (spec.md §9, note c).
			if err := persistIngest(ctx, t.MessageStore, msg); err != nil {
				t.Logger.Error("failed to persist inbound MLLP message, skipping enqueue",
					slog.String("channel_id", t.ChannelID.String()), slog.String("error", err.Error()))
				if _, writeErr := conn.Write([]byte(mllp.GenerateACK(frame))); writeErr != nil {
					return
				}
				continue
			}

			if _, err := conn.Write([]byte(mllp.GenerateACK(frame))); err != nil {
				return
			}

			sink.Submit(ctx, msg)
		}
	}
}
