package destination

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/conduithq/conduit/core/message"
)

const requestTimeout = 30 * time.Second

// blockedHosts mirrors the reference implementation's SSRF blocklist.
var blockedHosts = []string{
	"localhost",
	"127.0.0.1",
	"0.0.0.0",
	"::1",
	"169.254.169.254",      // AWS metadata
	"metadata.google.internal", // GCP metadata
	"metadata.azure.com",   // Azure metadata
	"100.100.100.200",      // Alibaba metadata
}

var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// HTTP sends message content as the body of an HTTP request, guarding
// against SSRF by re-validating the target URL on every send (so a DNS
// answer that changes between construction and send time, i.e. DNS
// rebinding, cannot bypass the check).
type HTTP struct {
	url    string
	method string
	client *http.Client
}

func NewHTTP(rawURL, method string) *HTTP {
	method = strings.ToUpper(method)
	if !validMethods[method] {
		method = "POST"
	}

	return &HTTP{
		url:    rawURL,
		method: method,
		client: &http.Client{
			Timeout: requestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
	}
}

func (h *HTTP) Send(ctx context.Context, msg *message.Message) error {
	validated, err := validateURL(h.url)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, h.method, validated.String(), bytes.NewBufferString(msg.Content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("http destination %s returned status %d", validated.Host, resp.StatusCode)
	}
	return nil
}

// validateURL rejects anything but http/https, known-bad hostnames, and
// hostnames that resolve to a private/loopback/link-local/CGNAT address.
func validateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %q: only http/https are allowed", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("URL must have a valid host")
	}

	hostLower := strings.ToLower(host)
	for _, blocked := range blockedHosts {
		if hostLower == blocked || strings.HasSuffix(hostLower, "."+blocked) {
			return nil, fmt.Errorf("access to internal host %q is blocked for security reasons", host)
		}
	}

	// also reject a hostname that resolves to a private/internal IP, the
	// defense against DNS rebinding: the IP may differ from what resolved
	// at construction time.
	if addrs, err := net.LookupHost(host); err == nil {
		for _, a := range addrs {
			ip := net.ParseIP(a)
			if ip != nil && isPrivateIP(ip) {
				return nil, fmt.Errorf("URL resolves to private/internal IP address, access blocked for security")
			}
		}
	}

	return u, nil
}

func isPrivateIP(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		if ip4.IsPrivate() || ip4.IsLoopback() || ip4.IsLinkLocalUnicast() || ip4.IsUnspecified() {
			return true
		}
		if ip4.Equal(net.IPv4bcast) {
			return true
		}
		// carrier-grade NAT: 100.64.0.0/10
		if ip4[0] == 100 && ip4[1] >= 64 && ip4[1] <= 127 {
			return true
		}
		return false
	}
	return ip.IsLoopback() || ip.IsUnspecified() || ip.IsLinkLocalUnicast()
}
