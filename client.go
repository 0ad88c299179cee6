package fetchgate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ambiyansyah-risyal/fetchgate/cache"
	"github.com/ambiyansyah-risyal/fetchgate/codec"
	"github.com/ambiyansyah-risyal/fetchgate/internal/locktable"
	"github.com/ambiyansyah-risyal/fetchgate/internal/singleflight"
)

// DefaultCacheTTL is how long a successful read stays cached unless the
// client or the call says otherwise.
const DefaultCacheTTL = 3 * time.Second

// Client coordinates typed reads and writes against one HTTP API. Operations
// on the same (path, verb) pair are serialized, successful reads are cached
// and writes evict the cached entry for their path. It is safe for
// concurrent use.
type Client struct {
	httpClient      *http.Client
	transport       RoundTripper
	timeout         time.Duration
	baseURL         *url.URL
	baseURLErr      error
	cache           cache.Cache
	cacheTTL        time.Duration
	connectivity    Connectivity
	codec           codec.Codec
	middleware      []Middleware
	metrics         *MetricsCollector
	debug           *DebugConfig
	logger          Logger
	locks           *locktable.Table
	flights         *singleflight.Group[any]
	validationError error
}

// New constructs a Client using the provided functional options. A best effort
// validation is performed; call IsValid / ValidationError for errors. Every
// operation on an invalid client fails with the validation error.
func New(options ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		timeout:      30 * time.Second,
		cache:        cache.NewInMemoryCache(),
		cacheTTL:     DefaultCacheTTL,
		connectivity: AlwaysReachable,
		codec:        codec.JSON{},
		middleware:   []Middleware{},
		debug:        DefaultDebugConfig(),
		logger:       NopLogger{},
		locks:        locktable.New(),
		flights:      singleflight.New[any](),
	}

	for _, option := range options {
		option(client)
	}

	if client.transport == nil && client.httpClient != nil {
		client.transport = RoundTripperFunc(client.httpClient.Do)
	}
	if client.logger == nil {
		client.logger = NopLogger{}
	}
	if client.debug == nil {
		client.debug = &DebugConfig{}
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// Read performs a cache-aside GET and decodes the body into T.
//
// A live cache entry for rawURL is returned without touching the network.
// Otherwise the body is fetched once per URL, even with concurrent callers,
// and cached for the lifetime set by WithContextCacheTTL or the client
// default. Failed fetches are never cached.
func Read[T any](ctx context.Context, c *Client, rawURL string) (result T, err error) {
	op, err := c.begin(ctx, http.MethodGet, rawURL)
	if err != nil {
		return result, err
	}
	defer func() { op.end(err) }()

	if v, ok := c.cache.Get(op.cacheKey); ok {
		if t, ok := v.(T); ok {
			op.cacheHit()
			return t, nil
		}
	}
	op.cacheMiss()

	ttl := cacheTTLFromContext(ctx, c.cacheTTL)
	decode := func(data []byte) (any, error) { return decodeBody[T](op, data) }

	v, err, _ := c.flights.Do(ctx, op.cacheKey, func() (any, error) {
		c.metrics.RecordPopulationsInFlight(c.flights.InFlight())
		return c.populate(op, ttl, decode)
	})
	c.metrics.RecordPopulationsInFlight(c.flights.InFlight())
	if err != nil {
		// a waiter whose ctx ends gets ctx.Err() back from the group
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			return result, op.newError(ErrorTypeCancelled, "cancelled while waiting for a shared fetch", ctxErr)
		}
		return result, err
	}
	t, ok := v.(T)
	if !ok {
		// a concurrent reader populated this URL with another type
		v, err = c.populate(op, ttl, decode)
		if err != nil {
			return result, err
		}
		t = v.(T)
	}
	return t, nil
}

// Create POSTs payload and decodes the response into T.
func Create[T, P any](ctx context.Context, c *Client, rawURL string, payload P) (T, error) {
	return write[T](ctx, c, http.MethodPost, rawURL, payload, true)
}

// Replace PUTs payload and decodes the response into T.
func Replace[T, P any](ctx context.Context, c *Client, rawURL string, payload P) (T, error) {
	return write[T](ctx, c, http.MethodPut, rawURL, payload, true)
}

// Modify PATCHes payload and decodes the response into T.
func Modify[T, P any](ctx context.Context, c *Client, rawURL string, payload P) (T, error) {
	return write[T](ctx, c, http.MethodPatch, rawURL, payload, true)
}

// Remove sends a bodiless DELETE and decodes the response into T.
func Remove[T any](ctx context.Context, c *Client, rawURL string) (T, error) {
	return write[T](ctx, c, http.MethodDelete, rawURL, nil, false)
}

// write runs a mutating exchange. On success the cache entry keyed by the
// bare resource path is evicted; entries cached under a query string or an
// absolute URL are left alone.
func write[T any](ctx context.Context, c *Client, method, rawURL string, payload any, hasBody bool) (result T, err error) {
	op, err := c.begin(ctx, method, rawURL)
	if err != nil {
		return result, err
	}
	defer func() { op.end(err) }()

	var body []byte
	if hasBody {
		body, err = c.codec.Marshal(payload)
		if err != nil {
			return result, err
		}
	}

	data, err := op.exchange(body, hasBody)
	if err != nil {
		return result, err
	}
	result, err = decodeBody[T](op, data)
	if err != nil {
		return result, err
	}

	c.cache.Delete(op.key)
	if c.debugEnabled(c.debug.LogCache) {
		c.logger.Debug("Cache entry evicted", Fields{"requestID": op.requestID, "cacheKey": op.key})
	}
	return result, nil
}

// decodeBody decodes data into T. An empty body or an explicit null is
// ErrEmptyResponse.
func decodeBody[T any](op *operation, data []byte) (T, error) {
	var zero T
	if len(bytes.TrimSpace(data)) == 0 {
		return zero, op.newError(ErrorTypeEmptyResponse, "response body is empty", nil)
	}
	var out *T
	if err := op.c.codec.Unmarshal(data, &out); err != nil {
		return zero, err
	}
	if out == nil {
		return zero, op.newError(ErrorTypeEmptyResponse, "response body decoded to null", nil)
	}
	return *out, nil
}

// populate fetches and decodes a read, storing the value on success and
// clearing the slot on any failure.
func (c *Client) populate(op *operation, ttl time.Duration, decode func([]byte) (any, error)) (any, error) {
	if !c.connectivity.Reachable() {
		c.cache.Delete(op.cacheKey)
		return nil, op.newError(ErrorTypeNoConnectivity, "network unreachable", nil)
	}

	data, err := op.exchange(nil, false)
	var v any
	if err == nil {
		v, err = decode(data)
	}
	if err != nil {
		c.cache.Delete(op.cacheKey)
		return nil, err
	}

	c.cache.Set(op.cacheKey, v, ttl)
	c.metrics.RecordCacheSize("default", c.cache.Len())
	if c.debugEnabled(c.debug.LogCache) {
		c.logger.Debug("Response cached", Fields{"requestID": op.requestID, "cacheKey": op.cacheKey, "ttl": ttl.String()})
	}
	return v, nil
}

// operation carries the state of one coordinated call while it holds its
// (path, verb) lock.
type operation struct {
	c         *Client
	ctx       context.Context
	method    string
	url       *url.URL
	key       string
	cacheKey  string
	endpoint  string
	requestID string
	start     time.Time
	status    int
	release   func()
}

// begin runs the connectivity gate, resolves rawURL and acquires the
// (path, verb) lock. On error nothing is held.
func (c *Client) begin(ctx context.Context, method, rawURL string) (*operation, error) {
	op := &operation{
		c:        c,
		ctx:      ctx,
		method:   method,
		start:    time.Now(),
		endpoint: "unknown",
	}
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		op.requestID = c.debug.RequestIDGen()
	}

	if c.validationError != nil {
		return nil, c.validationError
	}

	if !c.connectivity.Reachable() {
		return nil, op.fail(op.newError(ErrorTypeNoConnectivity, "network unreachable", nil))
	}

	ref, err := url.Parse(rawURL)
	if err != nil {
		return nil, op.fail(op.newError(ErrorTypeInvalidURL, fmt.Sprintf("cannot parse %q", rawURL), err))
	}
	target := ref
	if !ref.IsAbs() {
		if c.baseURL == nil {
			return nil, op.fail(op.newError(ErrorTypeInvalidURL, fmt.Sprintf("relative url %q without a base url", rawURL), nil))
		}
		target = c.baseURL.ResolveReference(ref)
	}
	op.url = target
	op.cacheKey = ref.String()
	if !ref.IsAbs() {
		op.cacheKey = target.RequestURI()
	}
	op.key = target.EscapedPath()
	op.endpoint = endpointFor(target)

	if c.debugEnabled(c.debug.LogRequests) {
		c.logger.Debug("Starting request", Fields{"requestID": op.requestID, "method": method, "url": target.String(), "endpoint": op.endpoint})
	}

	waitStart := time.Now()
	release, err := c.locks.Acquire(ctx, op.key, method)
	c.metrics.RecordLockWait(method, op.endpoint, time.Since(waitStart))
	if err != nil {
		return nil, op.fail(op.newError(ErrorTypeCancelled, "cancelled while waiting for resource lock", err))
	}
	op.release = release

	if c.debugEnabled(c.debug.LogLocks) {
		c.logger.Debug("Lock acquired", Fields{"requestID": op.requestID, "key": op.key, "verb": method, "wait": time.Since(waitStart).String()})
	}
	c.metrics.RecordRequestStart(method, op.endpoint)
	return op, nil
}

// end releases the lock and records the outcome.
func (op *operation) end(err error) {
	op.release()
	op.c.metrics.RecordRequestEnd(op.method, op.endpoint)
	if op.c.debugEnabled(op.c.debug.LogLocks) {
		op.c.logger.Debug("Lock released", Fields{"requestID": op.requestID, "key": op.key, "verb": op.method})
	}
	if err != nil {
		_ = op.fail(err)
		return
	}
	op.c.metrics.RecordRequest(op.method, op.endpoint, op.status, time.Since(op.start))
}

// fail records err and hands it back unchanged.
func (op *operation) fail(err error) error {
	c := op.c
	c.metrics.RecordRequest(op.method, op.endpoint, op.status, time.Since(op.start))
	c.metrics.RecordError(errorType(err), op.method, op.endpoint)
	f := Fields{"requestID": op.requestID, "method": op.method, "endpoint": op.endpoint, "error": err.Error()}
	if op.status != 0 {
		f["statusCode"] = op.status
	}
	c.logger.Warn("Request failed", f)
	return err
}

func (op *operation) cacheHit() {
	op.status = http.StatusOK
	op.c.metrics.RecordCacheHit(op.method, op.endpoint)
	if op.c.debugEnabled(op.c.debug.LogCache) {
		op.c.logger.Debug("Cache hit", Fields{"requestID": op.requestID, "cacheKey": op.cacheKey})
	}
}

func (op *operation) cacheMiss() {
	op.c.metrics.RecordCacheMiss(op.method, op.endpoint)
	if op.c.debugEnabled(op.c.debug.LogCache) {
		op.c.logger.Debug("Cache miss", Fields{"requestID": op.requestID, "cacheKey": op.cacheKey})
	}
}

// exchange sends one request through the middleware chain and returns the
// body of a 2xx response. Transport errors are returned as is, unless the
// caller's context ended, in which case they become ErrCancelled.
func (op *operation) exchange(body []byte, hasBody bool) ([]byte, error) {
	c := op.c
	var reader io.Reader
	if hasBody {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(op.ctx, op.method, op.url.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", c.codec.ContentType())
	if hasBody {
		req.Header.Set("Content-Type", c.codec.ContentType())
	}

	resp, err := c.executeMiddleware(req)
	if err != nil {
		return nil, op.transportError(err)
	}
	if resp == nil {
		return nil, errors.New("fetchgate: transport returned no response")
	}
	defer resp.Body.Close()

	op.status = resp.StatusCode
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, op.transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := op.newError(ErrorTypeStatus, fmt.Sprintf("%s %s returned %d", op.method, op.url.String(), resp.StatusCode), nil)
		e.StatusCode = resp.StatusCode
		return nil, e
	}
	return data, nil
}

func (op *operation) transportError(err error) error {
	if ctxErr := op.ctx.Err(); ctxErr != nil {
		return op.newError(ErrorTypeCancelled, "cancelled during transport call", ctxErr)
	}
	return err
}

func (op *operation) newError(errorType, message string, cause error) *ClientError {
	e := &ClientError{
		Type:      errorType,
		Message:   message,
		Cause:     cause,
		RequestID: op.requestID,
		Method:    op.method,
		Endpoint:  op.endpoint,
		Timestamp: time.Now(),
		Duration:  time.Since(op.start),
	}
	if op.url != nil {
		e.URL = op.url.String()
	}
	return e
}

func (c *Client) executeMiddleware(req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return c.transport.RoundTrip(req)
	}

	current := c.transport

	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}

	return current.RoundTrip(req)
}

func (c *Client) debugEnabled(flag bool) bool {
	return c.debug != nil && c.debug.Enabled && flag
}

// Invalidate evicts the cache entry stored under key. Read keys relative
// URLs by their resolved path and query and absolute URLs by the full URL.
func (c *Client) Invalidate(key string) {
	c.cache.Delete(key)
}

// Purge empties the cache.
func (c *Client) Purge() {
	c.cache.Clear()
	c.metrics.RecordCacheSize("default", 0)
}

// LockedKeys returns how many (path, verb) locks the client has created.
// The number never decreases.
func (c *Client) LockedKeys() int {
	return c.locks.Len()
}

// Close releases cache resources that need it, such as ristretto's
// background goroutines.
func (c *Client) Close() error {
	if closer, ok := c.cache.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

func endpointFor(u *url.URL) string {
	if u == nil {
		return "unknown"
	}

	var builder strings.Builder
	builder.WriteString(u.Host)

	if u.Path != "" && u.Path != "/" {
		builder.WriteString(u.Path)
	} else {
		builder.WriteByte('/')
	}

	return builder.String()
}
