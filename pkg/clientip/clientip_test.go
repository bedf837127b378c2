package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/conduithq/conduit/pkg/clientip"
	"github.com/stretchr/testify/assert"
)

func TestGetIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:   "falls back to RemoteAddr",
			remote: "203.0.113.10:5555",
			want:   "203.0.113.10",
		},
		{
			name:    "prefers CF-Connecting-IP over everything else",
			headers: map[string]string{"CF-Connecting-IP": "198.51.100.1", "X-Forwarded-For": "198.51.100.2"},
			remote:  "203.0.113.10:5555",
			want:    "198.51.100.1",
		},
		{
			name:    "X-Forwarded-For takes the leftmost entry",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.5, 10.0.0.1, 10.0.0.2"},
			remote:  "203.0.113.10:5555",
			want:    "198.51.100.5",
		},
		{
			name:    "skips invalid entries in X-Forwarded-For",
			headers: map[string]string{"X-Forwarded-For": "not-an-ip, 198.51.100.9"},
			remote:  "203.0.113.10:5555",
			want:    "198.51.100.9",
		},
		{
			name:    "rejects 0.0.0.0 and falls through",
			headers: map[string]string{"X-Real-IP": "0.0.0.0"},
			remote:  "203.0.113.10:5555",
			want:    "203.0.113.10",
		},
		{
			name:   "supports IPv6",
			remote: "[2001:db8::1]:5555",
			want:   "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.GetIP(req))
		})
	}
}
