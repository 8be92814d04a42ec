package proxy

import (
	"net/http"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name          string
		addr          string
		wantTransport bool
	}{
		{"direct", "", false},
		{"socks", "127.0.0.1:1080", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.addr, 5*time.Second)
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if c.Timeout != 5*time.Second {
				t.Errorf("Timeout = %v, want 5s", c.Timeout)
			}
			_, isTransport := c.Transport.(*http.Transport)
			if isTransport != tt.wantTransport {
				t.Errorf("custom transport = %v, want %v", isTransport, tt.wantTransport)
			}
		})
	}
}
