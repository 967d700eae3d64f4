package utils

import (
	"testing"
	"time"
)

func TestIsValidEthAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"lowercase", "0x9b2055d370f73ec7d8a03e965129118dc8f5bf83", true},
		{"checksummed", "0x9B2055d370F73eC7d8a03E965129118dC8F5bf83", true},
		{"empty", "", false},
		{"no prefix", "9b2055d370f73ec7d8a03e965129118dc8f5bf8300", false},
		{"too short", "0x9b2055d370f73ec7d8a03e965129118dc8f5bf8", false},
		{"non hex", "0x9b2055d370f73ec7d8a03e965129118dc8f5bfzz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidEthAddress(tt.addr); got != tt.want {
				t.Errorf("IsValidEthAddress(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestChecksumAddress(t *testing.T) {
	got, ok := ChecksumAddress("0x742d35cc6634c0532925a3b844bc454e4438f44e")
	if !ok {
		t.Fatal("expected valid address")
	}
	if got != "0x742d35Cc6634C0532925a3b844Bc454e4438f44e" {
		t.Errorf("ChecksumAddress() = %s", got)
	}

	if _, ok := ChecksumAddress("0x1234"); ok {
		t.Error("expected invalid address to be rejected")
	}
}

func TestIsHTTPURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://127.0.0.1:8545", true},
		{"https://wallet.example.com/rpc", true},
		{"ws://127.0.0.1:8546", false},
		{"http://", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsHTTPURL(tt.in); got != tt.want {
			t.Errorf("IsHTTPURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"http://auth.local/", []string{"/api/v1", "sessions"}, "http://auth.local/api/v1/sessions"},
		{"http://auth.local", []string{"health"}, "http://auth.local/health"},
		{"http://auth.local", []string{"", "/"}, "http://auth.local"},
	}
	for _, tt := range tests {
		if got := JoinURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("JoinURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestCreateTransport(t *testing.T) {
	transport := CreateTransport(10, 30*time.Second)
	if transport.MaxIdleConnsPerHost != 10 {
		t.Errorf("MaxIdleConnsPerHost = %d, want 10", transport.MaxIdleConnsPerHost)
	}
	if transport.IdleConnTimeout != 30*time.Second {
		t.Errorf("IdleConnTimeout = %v", transport.IdleConnTimeout)
	}

	client := NewHTTPClient(5 * time.Second)
	if client.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", client.Timeout)
	}
}
