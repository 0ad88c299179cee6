package fetchgate

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ambiyansyah-risyal/fetchgate/cache"
	"github.com/ambiyansyah-risyal/fetchgate/codec"
)

// WithTransport sends requests through rt directly, bypassing any
// *http.Client. Use it for mock.Dispatcher or a custom http.RoundTripper.
func WithTransport(rt RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithHTTPClient sends requests through client.Do.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
		c.transport = nil
	}
}

// WithTimeout sets the request timeout of the underlying *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		if c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// WithBaseURL sets the address relative URLs are resolved against.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		u, err := url.Parse(raw)
		if err != nil {
			c.baseURL = nil
			c.baseURLErr = err
			return
		}
		c.baseURL = u
		c.baseURLErr = nil
	}
}

// WithCache replaces the default in-memory cache.
func WithCache(cache cache.Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithCacheTTL sets the default lifetime of cached reads. Zero disables
// retention.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithConnectivity sets the oracle consulted before every operation.
func WithConnectivity(conn Connectivity) Option {
	return func(c *Client) {
		c.connectivity = conn
	}
}

// WithCodec sets the body codec. JSON is the default.
func WithCodec(cd codec.Codec) Option {
	return func(c *Client) {
		c.codec = cd
	}
}

// WithMiddleware adds middleware to the client
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}

// WithMetrics enables Prometheus metrics collection
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithDebug enables debug logging with default configuration
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithLogger sets the logger. Failures are logged at warn level; debug
// events only when debug is enabled.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// ValidateConfiguration validates the client configuration and returns an error if invalid
func (c *Client) ValidateConfiguration() error {
	var errors []string

	errors = append(errors, c.validateTransportConfig()...)
	errors = append(errors, c.validateBaseURLConfig()...)
	errors = append(errors, c.validateCacheConfig()...)
	errors = append(errors, c.validateCollaborators()...)
	errors = append(errors, c.validateDebugConfig()...)
	errors = append(errors, c.validateMiddlewareConfig()...)
	errors = append(errors, c.validateExtremeValues()...)

	if len(errors) > 0 {
		return &ClientError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", errors),
		}
	}

	return nil
}

func (c *Client) validateTransportConfig() []string {
	var errors []string

	if c.transport == nil {
		errors = append(errors, "transport cannot be nil")
	}
	if c.httpClient != nil && c.timeout <= 0 {
		errors = append(errors, "timeout must be positive")
	}

	return errors
}

func (c *Client) validateBaseURLConfig() []string {
	var errors []string

	if c.baseURLErr != nil {
		errors = append(errors, fmt.Sprintf("baseURL is invalid: %v", c.baseURLErr))
	} else if c.baseURL != nil && (c.baseURL.Scheme == "" || c.baseURL.Host == "") {
		errors = append(errors, "baseURL must be absolute")
	}

	return errors
}

func (c *Client) validateCacheConfig() []string {
	var errors []string

	if c.cache == nil {
		errors = append(errors, "cache cannot be nil")
	}
	if c.cacheTTL < 0 {
		errors = append(errors, "cacheTTL must be non-negative")
	}

	return errors
}

func (c *Client) validateCollaborators() []string {
	var errors []string

	if c.connectivity == nil {
		errors = append(errors, "connectivity cannot be nil")
	}
	if c.codec == nil {
		errors = append(errors, "codec cannot be nil")
	}

	return errors
}

func (c *Client) validateDebugConfig() []string {
	var errors []string

	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen == nil {
		errors = append(errors, "debug RequestIDGen must be set when debug is enabled")
	}

	return errors
}

func (c *Client) validateMiddlewareConfig() []string {
	var errors []string

	for i, middleware := range c.middleware {
		if middleware == nil {
			errors = append(errors, fmt.Sprintf("middleware[%d] cannot be nil", i))
		}
	}

	return errors
}

// validateExtremeValues validates that configuration values are within reasonable bounds
func (c *Client) validateExtremeValues() []string {
	var errors []string

	if c.httpClient != nil && c.timeout > 10*time.Minute {
		errors = append(errors, "timeout > 10m may cause requests to hang for too long")
	}

	if c.cacheTTL > 24*time.Hour {
		errors = append(errors, "cacheTTL > 24h may cause stale data issues")
	}

	return errors
}
