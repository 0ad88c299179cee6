package mock

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
)

const jsonContentType = "application/json; charset=utf-8"

// Route compiles pattern and pairs it with actions. It panics on an invalid
// pattern, which makes it suitable for package-level fixture tables.
func Route(pattern string, actions ...MethodAction) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Actions: actions}
}

// On binds method to fn.
func On(method string, fn ContentFunc) MethodAction {
	return MethodAction{Method: method, Generate: fn}
}

// JSON wraps s as UTF-8 application/json content.
func JSON(s string) Content {
	return Content{Body: []byte(s), ContentType: jsonContentType}
}

// Static always answers with body as JSON content.
func Static(body string) ContentFunc {
	c := JSON(body)
	return func(context.Context, *http.Request) (Content, error) {
		return c, nil
	}
}

// Value JSON-encodes v on every call.
func Value(v any) ContentFunc {
	return func(context.Context, *http.Request) (Content, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return Content{}, err
		}
		return Content{Body: b, ContentType: jsonContentType}, nil
	}
}

// Status answers with an empty body and the given status code.
func Status(code int) ContentFunc {
	return func(context.Context, *http.Request) (Content, error) {
		return Content{Status: code}, nil
	}
}
