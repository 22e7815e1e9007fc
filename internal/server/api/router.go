package api

import (
	"context"
	"log/slog"
	"net"
	"strings"
)

// Request contains route parameters and additional args from the command.
type Request struct {
	Ctx     context.Context
	Params  map[string]string
	Payload string
}

// Response holds the JSON string to return to the client.
type Response struct {
	JSON string
}

// HandlerFunc processes a request and populates the response. The logger is
// a connection-scoped logger enriched with remote address metadata.
type HandlerFunc func(req *Request, res *Response, logger *slog.Logger) error

// StreamHandlerFunc handles long-lived connections, e.g. the input event
// stream. The handler takes ownership of the connection and closes it when
// done.
type StreamHandlerFunc func(conn net.Conn, params map[string]string, logger *slog.Logger) error

// Router implements simple path pattern matching with placeholders in {name}.
type Router struct {
	routes       []routeEntry
	streamRoutes []streamRouteEntry
}

type routeEntry struct {
	parts   []string // lowercased pattern segments
	names   []string // original-case placeholder names, "" for literals
	handler HandlerFunc
}

type streamRouteEntry struct {
	parts   []string
	names   []string
	handler StreamHandlerFunc
}

// NewRouter returns a new Router instance.
func NewRouter() *Router { return &Router{} }

func splitPattern(pattern string) (parts, names []string) {
	orig := strings.Split(pattern, "/")
	parts = strings.Split(strings.ToLower(pattern), "/")
	names = make([]string, len(parts))
	for i, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			names[i] = orig[i][1 : len(orig[i])-1]
		}
	}
	return parts, names
}

// Register registers a handler for a path pattern like "controller/{id}/rumble".
func (r *Router) Register(pattern string, handler HandlerFunc) {
	parts, names := splitPattern(pattern)
	r.routes = append(r.routes, routeEntry{parts: parts, names: names, handler: handler})
}

// RegisterStream registers a StreamHandler for long-lived connections.
func (r *Router) RegisterStream(pattern string, handler StreamHandlerFunc) {
	parts, names := splitPattern(pattern)
	r.streamRoutes = append(r.streamRoutes, streamRouteEntry{parts: parts, names: names, handler: handler})
}

func matchParts(patParts, patNames, parts []string) (map[string]string, bool) {
	if len(patParts) != len(parts) {
		return nil, false
	}
	params := map[string]string{}
	for i := range parts {
		if patNames[i] != "" {
			params[patNames[i]] = parts[i]
			continue
		}
		if patParts[i] != parts[i] {
			return nil, false
		}
	}
	return params, true
}

// Match returns the HandlerFunc and params for a path, or nil.
func (r *Router) Match(path string) (HandlerFunc, map[string]string) {
	parts := strings.Split(strings.ToLower(path), "/")
	for _, rt := range r.routes {
		if params, ok := matchParts(rt.parts, rt.names, parts); ok {
			return rt.handler, params
		}
	}
	return nil, nil
}

// MatchStream returns the StreamHandler and params for a path, or nil.
func (r *Router) MatchStream(path string) (StreamHandlerFunc, map[string]string) {
	parts := strings.Split(strings.ToLower(path), "/")
	for _, rt := range r.streamRoutes {
		if params, ok := matchParts(rt.parts, rt.names, parts); ok {
			return rt.handler, params
		}
	}
	return nil, nil
}
