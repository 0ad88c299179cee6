package mock

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixtures is the on-disk form of a rule table:
//
//	routes:
//	  - match: '^/users/\d+$'
//	    methods:
//	      GET:
//	        body: '{"id": 42, "name": "Ada"}'
//	      DELETE:
//	        file: users/deleted.json
//	  - match: '^/health$'
//	    methods:
//	      GET: {status: 204}
//
// Routes keep file order. Relative file paths resolve against the fixture
// file's directory.
type Fixtures struct {
	Routes []FixtureRoute `yaml:"routes"`
}

// FixtureRoute is one pattern and its responses keyed by method.
type FixtureRoute struct {
	Match   string                     `yaml:"match"`
	Methods map[string]FixtureResponse `yaml:"methods"`
	// methods in declaration order, filled by UnmarshalYAML
	order []string
}

// FixtureResponse is a canned response. Body and File are mutually exclusive.
type FixtureResponse struct {
	Status      int    `yaml:"status"`
	Body        string `yaml:"body"`
	File        string `yaml:"file"`
	ContentType string `yaml:"contentType"`
}

// UnmarshalYAML records the declaration order of methods so Rules is
// deterministic.
func (r *FixtureRoute) UnmarshalYAML(node *yaml.Node) error {
	type plain FixtureRoute
	if err := node.Decode((*plain)(r)); err != nil {
		return err
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "methods" {
			continue
		}
		m := node.Content[i+1]
		for j := 0; j+1 < len(m.Content); j += 2 {
			r.order = append(r.order, m.Content[j].Value)
		}
	}
	return nil
}

// LoadRules reads a fixture file and builds its rule table.
func LoadRules(path string) ([]Rule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx Fixtures
	if err := yaml.Unmarshal(b, &fx); err != nil {
		return nil, fmt.Errorf("mock: parse %s: %w", path, err)
	}
	return fx.Rules(filepath.Dir(path))
}

// LoadDispatcher is LoadRules followed by NewDispatcher.
func LoadDispatcher(path string) (*Dispatcher, error) {
	rules, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return NewDispatcher(rules...)
}

// Rules compiles the fixtures. baseDir resolves relative file references.
func (fx Fixtures) Rules(baseDir string) ([]Rule, error) {
	rules := make([]Rule, 0, len(fx.Routes))
	for i, route := range fx.Routes {
		if strings.TrimSpace(route.Match) == "" {
			return nil, fmt.Errorf("mock: routes[%d].match: empty pattern", i)
		}
		re, err := regexp.Compile(route.Match)
		if err != nil {
			return nil, fmt.Errorf("mock: routes[%d].match: %w", i, err)
		}
		if len(route.Methods) == 0 {
			return nil, fmt.Errorf("mock: routes[%d]: no methods", i)
		}

		order := route.order
		if len(order) == 0 {
			for m := range route.Methods {
				order = append(order, m)
			}
			sort.Strings(order)
		}

		actions := make([]MethodAction, 0, len(order))
		for _, method := range order {
			resp := route.Methods[method]
			content, err := resp.content(baseDir)
			if err != nil {
				return nil, fmt.Errorf("mock: routes[%d].methods.%s: %w", i, method, err)
			}
			actions = append(actions, On(strings.ToUpper(method), fixed(content)))
		}
		rules = append(rules, Rule{Pattern: re, Actions: actions})
	}
	return rules, nil
}

func (r FixtureResponse) content(baseDir string) (Content, error) {
	if r.Body != "" && r.File != "" {
		return Content{}, fmt.Errorf("body and file are mutually exclusive")
	}
	c := Content{Status: r.Status, ContentType: r.ContentType}
	switch {
	case r.File != "":
		p := r.File
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return Content{}, err
		}
		c.Body = b
	case r.Body != "":
		c.Body = []byte(r.Body)
	}
	if c.ContentType == "" && len(c.Body) > 0 {
		c.ContentType = jsonContentType
	}
	return c, nil
}

func fixed(c Content) ContentFunc {
	return func(context.Context, *http.Request) (Content, error) {
		return c, nil
	}
}
