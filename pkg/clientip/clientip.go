package clientip

import (
	"net"
	"net/http"
	"strings"
)

// headerPriority lists the headers checked, in order, before falling back
// to the request's RemoteAddr.
var headerPriority = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP returns the best-guess real client address for r, checking proxy
// headers in headerPriority order before falling back to RemoteAddr. It
// never panics: a request with no determinable address yields "".
func GetIP(r *http.Request) string {
	for _, header := range headerPriority {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		if header == "X-Forwarded-For" {
			// Leftmost entry is the original client; later entries are
			// the chain of proxies it passed through.
			for _, candidate := range strings.Split(value, ",") {
				if ip := parseValid(strings.TrimSpace(candidate)); ip != "" {
					return ip
				}
			}
			continue
		}

		if ip := parseValid(value); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := parseValid(host); ip != "" {
		return ip
	}
	return host
}

// parseValid validates and normalizes s as an IP address, rejecting the
// unspecified address 0.0.0.0 (and its IPv6 equivalent) as "no valid
// client IP".
func parseValid(s string) string {
	ip := net.ParseIP(s)
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
