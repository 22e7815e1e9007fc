package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/Alia5/joycore/internal/hub"
	"github.com/Alia5/joycore/internal/server/api/auth"
)

// Server implements a small TCP API for inspecting and driving the live
// controller set. One request per connection: `<path>[ SP payload]\0`, one
// JSON line back. Stream paths keep the connection open instead.
type Server struct {
	hub    *hub.Hub
	addr   string
	ln     net.Listener
	logger *slog.Logger
	router *Router
	config ServerConfig
	key    []byte
}

// New creates a new API server bound to a hub.
func New(h *hub.Hub, config ServerConfig, logger *slog.Logger) (*Server, error) {
	a := &Server{
		hub:    h,
		addr:   config.Addr,
		logger: logger,
		config: config,
		router: NewRouter(),
	}
	if config.Password != "" {
		key, err := auth.DeriveKey(config.Password)
		if err != nil {
			return nil, fmt.Errorf("derive api key: %w", err)
		}
		a.key = key
	}
	return a, nil
}

// Router returns the router used by the API server so callers can register
// handlers.
func (a *Server) Router() *Router { return a.router }

// Hub returns the underlying controller hub.
func (a *Server) Hub() *hub.Hub { return a.hub }

// Start listens on the configured address and serves incoming commands.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", a.addr)
	go a.serve()
	return nil
}

// Addr returns the bound listen address, useful when the config used port 0.
func (a *Server) Addr() net.Addr {
	if a.ln == nil {
		return nil
	}
	return a.ln.Addr()
}

// Close stops the API server.
func (a *Server) Close() {
	if a.ln != nil {
		_ = a.ln.Close()
	}
}

func (a *Server) serve() {
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		go a.handleConn(c)
	}
}

func (a *Server) writeError(w io.Writer, err error) {
	problemJSON, _ := json.Marshal(WrapError(err))
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func (a *Server) writeOK(w io.Writer, rest string) {
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

var wsRegex = regexp.MustCompile(`\s`)

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	if a.config.ConnectionTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(a.config.ConnectionTimeout))
	}
	r := bufio.NewReader(conn)

	if a.key != nil {
		isAuth, err := auth.IsAuthHandshake(r)
		if err != nil {
			connLogger.Error("read handshake", "error", err)
			return
		}
		if !isAuth {
			connLogger.Error("api connection without handshake")
			a.writeError(conn, ErrUnauthorized("authentication required"))
			return
		}
		clientNonce, serverNonce, err := auth.HandleAuthHandshake(r, conn, a.key, false)
		if err != nil {
			connLogger.Error("api handshake failed", "error", err)
			a.writeError(conn, err)
			return
		}
		sessionKey := auth.DeriveSessionKey(a.key, serverNonce, clientNonce)
		sc, err := auth.WrapConn(conn, sessionKey)
		if err != nil {
			connLogger.Error("api session setup failed", "error", err)
			return
		}
		conn = sc
		r = bufio.NewReader(conn)
	}

	w := conn

	// Read until null terminator
	reqData, err := r.ReadString('\x00')
	if err != nil {
		if err == io.EOF {
			connLogger.Error("api incomplete request (no null terminator)")
		} else {
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	reqData = strings.TrimSuffix(reqData, "\x00")

	if reqData == "" {
		connLogger.Error("api empty command")
		a.writeError(w, ErrBadRequest("empty request"))
		return
	}

	// Split on first whitespace: path, then the raw payload.
	var path, payload string
	if loc := wsRegex.FindStringIndex(reqData); loc != nil {
		path = reqData[:loc[0]]
		payload = reqData[loc[1]:]
	} else {
		path = reqData
	}

	if path == "" {
		connLogger.Error("api empty path")
		a.writeError(w, ErrBadRequest("empty path"))
		return
	}

	path = strings.ToLower(path)
	connLogger.Info("api cmd", "path", path)

	if h, params := a.router.Match(path); h != nil {
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("api handler error", "path", path, "error", err)
			a.writeError(w, err)
			return
		}
		connLogger.Debug("api handler success", "path", path)
		a.writeOK(w, res.JSON)
		return
	}
	if sh, params := a.router.MatchStream(path); sh != nil {
		// Streams outlive the request read deadline.
		_ = conn.SetReadDeadline(time.Time{})
		connLogger.Info("api stream begin", "path", path)
		if err := sh(conn, params, connLogger); err != nil {
			connLogger.Error("api stream handler error", "path", path, "error", err)
		}
		connLogger.Info("api stream end", "path", path)
		return
	}
	connLogger.Error("api unknown path", "path", path)
	a.writeError(w, ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}
