package destination

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/conduithq/conduit/core/message"
)

const (
	tcpConnectTimeout = 5 * time.Second
	tcpAckTimeout     = 10 * time.Second
)

// TCP sends message content MLLP-framed over a plain TCP connection and
// classifies the remote's ACK/NACK response, matching the reference
// TcpSender.
type TCP struct {
	host        string
	port        int
	channelName string
}

func NewTCP(host string, port int, channelName string) *TCP {
	return &TCP{host: host, port: port, channelName: channelName}
}

func (t *TCP) Send(ctx context.Context, msg *message.Message) error {
	addr := fmt.Sprintf("%s:%d", t.host, t.port)

	dialer := net.Dialer{Timeout: tcpConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()

	frame := "\x0B" + msg.Content + "\x1C\x0D"
	if _, err := conn.Write([]byte(frame)); err != nil {
		return fmt.Errorf("write MLLP frame to %s: %w", addr, err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(tcpAckTimeout))
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("read ACK from %s: %w", addr, err)
	}
	if n == 0 {
		return fmt.Errorf("connection closed by %s before ACK", addr)
	}

	response := string(buf[:n])
	switch {
	case strings.Contains(response, "|AA|") || strings.Contains(response, "|CA|"):
		return nil
	case strings.Contains(response, "|AE|") || strings.Contains(response, "|CE|") ||
		strings.Contains(response, "|AR|") || strings.Contains(response, "|CR|"):
		return fmt.Errorf("received NACK/reject from %s: %s", addr, response)
	case strings.Contains(response, "MSA|"):
		return nil
	default:
		return fmt.Errorf("invalid ACK response from %s: %s", addr, response)
	}
}
