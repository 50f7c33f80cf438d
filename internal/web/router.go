// Package web binds URL patterns to handlers and composes the catalog,
// inverted index, session store, and recommendation selector into full HTTP
// responses.
package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
)

// Params holds the named capture groups extracted from a matched path.
type Params map[string]string

// HandlerFunc is a request handler that receives the path parameters
// extracted by the router.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, params Params)

type route struct {
	pattern *regexp.Regexp
	handler HandlerFunc
}

// Router dispatches requests over an ordered route table. Patterns are tried
// in registration order and the first one whose anchored-at-start match
// succeeds wins; there is no best-match scoring. The table is fixed after
// construction; Handle must not be called once the router is serving.
type Router struct {
	routes []route
	logger *slog.Logger
}

// NewRouter creates a router with an empty route table.
func NewRouter() *Router {
	return &Router{
		logger: slog.Default().With("component", "router"),
	}
}

// Handle appends a pattern/handler binding to the route table. The pattern is
// a regular expression, anchored at the start of the path; named capture
// groups become the handler's Params. Handle panics on an invalid pattern,
// since the route table is static startup configuration.
func (rt *Router) Handle(pattern string, handler HandlerFunc) {
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^" + pattern
	}
	rt.routes = append(rt.routes, route{
		pattern: regexp.MustCompile(pattern),
		handler: handler,
	})
}

// ServeHTTP matches the request path against the route table in order and
// invokes the winning handler. Only GET is served; no match produces the
// router's own not-found page rather than an error.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	for _, rte := range rt.routes {
		match := rte.pattern.FindStringSubmatch(r.URL.Path)
		if match == nil {
			continue
		}
		params := make(Params)
		for i, name := range rte.pattern.SubexpNames() {
			if i > 0 && name != "" {
				params[name] = match[i]
			}
		}
		rte.handler(w, r, params)
		return
	}

	rt.logger.Debug("no route matched", "path", r.URL.Path)
	NotFound(w, "Error 404: Page not Found!")
}

// NotFound writes a minimal well-formed HTML 404 response.
func NotFound(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "<h1>%s</h1>", message)
}
