package fetchgate

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ambiyansyah-risyal/fetchgate/cache"
	"github.com/ambiyansyah-risyal/fetchgate/codec"
	"github.com/ambiyansyah-risyal/fetchgate/mock"
)

func TestWithTransport(t *testing.T) {
	d := mock.MustDispatcher()
	client := New(WithTransport(d))

	if client.transport != RoundTripper(d) {
		t.Error("Expected dispatcher to be the transport")
	}
}

func TestWithHTTPClientAfterTransport(t *testing.T) {
	hc := &http.Client{}
	client := New(WithTransport(mock.MustDispatcher()), WithHTTPClient(hc))

	if client.httpClient != hc {
		t.Error("Expected custom http client")
	}
	if _, ok := client.transport.(RoundTripperFunc); !ok {
		t.Errorf("Expected transport to wrap http client, got %T", client.transport)
	}
}

func TestWithTimeout(t *testing.T) {
	client := New(WithTimeout(5 * time.Second))

	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("Expected timeout=5s, got %v", client.httpClient.Timeout)
	}
}

func TestWithBaseURL(t *testing.T) {
	client := New(WithBaseURL("http://10.0.2.2:7201"))

	if !client.IsValid() {
		t.Fatalf("Expected valid client: %v", client.ValidationError())
	}
	if client.baseURL.Host != "10.0.2.2:7201" {
		t.Errorf("Unexpected base url host %q", client.baseURL.Host)
	}
}

func TestWithCacheAndTTL(t *testing.T) {
	c := cache.NewInMemoryCacheWithShards(2)
	client := New(WithCache(c), WithCacheTTL(time.Minute))

	if client.cache != cache.Cache(c) {
		t.Error("Expected custom cache")
	}
	if client.cacheTTL != time.Minute {
		t.Errorf("Expected cacheTTL=1m, got %v", client.cacheTTL)
	}
}

func TestWithCodec(t *testing.T) {
	client := New(WithCodec(codec.Msgpack{}))

	if client.codec.ContentType() != "application/msgpack" {
		t.Errorf("Unexpected codec %T", client.codec)
	}
}

func TestWithDebugAndRequestIDGenerator(t *testing.T) {
	client := New(WithDebug(), WithRequestIDGenerator(func() string { return "fixed" }))

	if !client.debug.Enabled {
		t.Error("Expected debug to be enabled")
	}
	if client.debug.RequestIDGen() != "fixed" {
		t.Error("Expected custom request ID generator")
	}
}

func TestWithDebugConfigNil(t *testing.T) {
	client := New(WithDebugConfig(nil))

	if client.debug == nil || client.debug.Enabled {
		t.Errorf("Expected disabled debug config, got %+v", client.debug)
	}
}

func TestValidateConfiguration(t *testing.T) {
	testCases := []struct {
		name    string
		options []Option
		want    string
	}{
		{"nil http client", []Option{WithHTTPClient(nil)}, "transport cannot be nil"},
		{"zero timeout", []Option{WithTimeout(0)}, "timeout must be positive"},
		{"long timeout", []Option{WithTimeout(time.Hour)}, "timeout > 10m"},
		{"relative base url", []Option{WithBaseURL("/api")}, "baseURL must be absolute"},
		{"unparsable base url", []Option{WithBaseURL("http://[::1")}, "baseURL is invalid"},
		{"nil cache", []Option{WithCache(nil)}, "cache cannot be nil"},
		{"negative ttl", []Option{WithCacheTTL(-time.Second)}, "cacheTTL must be non-negative"},
		{"huge ttl", []Option{WithCacheTTL(48 * time.Hour)}, "cacheTTL > 24h"},
		{"nil connectivity", []Option{WithConnectivity(nil)}, "connectivity cannot be nil"},
		{"nil codec", []Option{WithCodec(nil)}, "codec cannot be nil"},
		{"nil middleware", []Option{WithMiddleware(nil)}, "middleware[0] cannot be nil"},
		{"debug without ids", []Option{WithDebugConfig(&DebugConfig{Enabled: true})}, "RequestIDGen must be set"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := New(tc.options...)
			if client.IsValid() {
				t.Fatal("Expected invalid configuration")
			}
			err := client.ValidationError()
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Expected error containing %q, got %v", tc.want, err)
			}
			clientErr, ok := err.(*ClientError)
			if !ok || clientErr.Type != ErrorTypeValidation {
				t.Errorf("Expected validation ClientError, got %T", err)
			}
		})
	}
}

func TestZeroCacheTTLIsValid(t *testing.T) {
	client := New(WithCacheTTL(0))

	if !client.IsValid() {
		t.Errorf("Expected zero cacheTTL to be valid: %v", client.ValidationError())
	}
}
