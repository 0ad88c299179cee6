// Package mock provides an offline transport that answers HTTP requests from
// an ordered table of URL-pattern/method rules.
//
// A Dispatcher is a drop-in http.RoundTripper. It never falls back: a request
// that matches no rule, or matches a rule without an action for its method,
// fails with *UnconfiguredRouteError so missing fixtures surface as test
// failures instead of empty data.
//
//	d, err := mock.NewDispatcher(
//	    mock.Route(`^/users/\d+$`,
//	        mock.On(http.MethodGet, mock.Static(`{"id":42}`)),
//	    ),
//	)
//	client := fetchgate.New(fetchgate.WithTransport(d), fetchgate.WithBaseURL("http://localhost:7201"))
package mock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Content is a generated response body.
type Content struct {
	Body        []byte
	ContentType string
	// Status defaults to 200 when zero.
	Status int
}

// ContentFunc produces the response content for a matched request.
type ContentFunc func(ctx context.Context, req *http.Request) (Content, error)

// MethodAction binds one HTTP method to a content generator.
type MethodAction struct {
	Method   string
	Generate ContentFunc
}

// Rule is one entry of the dispatch table. Pattern is matched against the
// request's path and query; anchor it (^...$) to match whole paths.
type Rule struct {
	Pattern *regexp.Regexp
	Actions []MethodAction
}

// Dispatcher answers requests from an immutable rule table.
type Dispatcher struct {
	rules []Rule
}

// NewDispatcher validates and copies rules. Order is preserved and is the
// match order.
func NewDispatcher(rules ...Rule) (*Dispatcher, error) {
	table := make([]Rule, len(rules))
	for i, r := range rules {
		if r.Pattern == nil {
			return nil, fmt.Errorf("mock: rules[%d]: nil pattern", i)
		}
		seen := make(map[string]bool, len(r.Actions))
		actions := make([]MethodAction, len(r.Actions))
		for j, a := range r.Actions {
			if a.Generate == nil {
				return nil, fmt.Errorf("mock: rules[%d] %s: nil generator for %s", i, r.Pattern, a.Method)
			}
			m := strings.ToUpper(a.Method)
			if m == "" {
				return nil, fmt.Errorf("mock: rules[%d] %s: empty method", i, r.Pattern)
			}
			if seen[m] {
				return nil, fmt.Errorf("mock: rules[%d] %s: duplicate method %s", i, r.Pattern, m)
			}
			seen[m] = true
			actions[j] = MethodAction{Method: m, Generate: a.Generate}
		}
		table[i] = Rule{Pattern: r.Pattern, Actions: actions}
	}
	return &Dispatcher{rules: table}, nil
}

// MustDispatcher is like NewDispatcher but panics on error.
func MustDispatcher(rules ...Rule) *Dispatcher {
	d, err := NewDispatcher(rules...)
	if err != nil {
		panic(err)
	}
	return d
}

// Len returns the number of rules.
func (d *Dispatcher) Len() int { return len(d.rules) }

// RoundTrip implements http.RoundTripper.
func (d *Dispatcher) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		defer req.Body.Close()
	}

	generate, err := d.lookup(req)
	if err != nil {
		return nil, err
	}

	content, err := generate(req.Context(), req)
	if err != nil {
		return nil, err
	}

	status := content.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := make(http.Header)
	if content.ContentType != "" {
		header.Set("Content-Type", content.ContentType)
	}
	header.Set("Content-Length", strconv.Itoa(len(content.Body)))

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(content.Body)),
		ContentLength: int64(len(content.Body)),
		Request:       req,
	}, nil
}

// lookup applies first-match-wins over the table, then exact method match
// within the winning rule only.
func (d *Dispatcher) lookup(req *http.Request) (ContentFunc, error) {
	target := ""
	if req.URL != nil {
		target = req.URL.RequestURI()
	}

	for _, r := range d.rules {
		if !r.Pattern.MatchString(target) {
			continue
		}
		for _, a := range r.Actions {
			if a.Method == req.Method {
				return a.Generate, nil
			}
		}
		break
	}
	return nil, newUnconfiguredRouteError(req)
}

// ErrUnconfiguredRoute matches any *UnconfiguredRouteError via errors.Is.
var ErrUnconfiguredRoute = errors.New("mock: unconfigured route")

// UnconfiguredRouteError reports a request no rule answers.
type UnconfiguredRouteError struct {
	Method string
	URL    string
}

func newUnconfiguredRouteError(req *http.Request) *UnconfiguredRouteError {
	e := &UnconfiguredRouteError{Method: req.Method}
	if req.URL != nil {
		e.URL = req.URL.String()
	}
	return e
}

func (e *UnconfiguredRouteError) Error() string {
	return fmt.Sprintf("mock: no configured response for %s %s", e.Method, e.URL)
}

func (e *UnconfiguredRouteError) Is(target error) bool {
	return target == ErrUnconfiguredRoute
}
