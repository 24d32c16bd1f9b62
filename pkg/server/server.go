// Package server provides the HTTP interface of the map visualizer.
// All requests are serialized since the underlying map
// isn't safe for concurrent use.
package server

import (
	"bytes"
	"encoding/base64"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/graph-guard/chainmap/pkg/config"
	"github.com/graph-guard/chainmap/pkg/display"
	"github.com/graph-guard/chainmap/pkg/statistics"
	plog "github.com/phuslu/log"
	"github.com/sugawarayuuta/sonnet"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

const (
	PathSet     = "/set"
	PathRemove  = "/remove"
	PathClear   = "/clear"
	PathBuckets = "/buckets"
	PathRender  = "/render"
	PathStats   = "/stats"
)

const HeaderRequestID = "X-Request-Id"

type Auth struct {
	Username string
	Password string
}

type Server struct {
	host   string
	auth   Auth
	server *fasthttp.Server
	log    plog.Logger
	stats  *statistics.MapSync

	lock    sync.Mutex
	display *display.Display
}

// New creates a new server instance.
// stats must be the statistics instance d records to.
func New(
	conf *config.Config,
	auth Auth,
	d *display.Display,
	stats *statistics.MapSync,
	log plog.Logger,
) *Server {
	lFasthttp := log
	lFasthttp.Context = plog.NewContext(nil).
		Str("server-module", "fasthttp").Value()

	srv := &Server{
		host: conf.Host,
		auth: auth,
		server: &fasthttp.Server{
			Name:         "chainmap",
			ReadTimeout:  conf.ReadTimeout,
			WriteTimeout: conf.WriteTimeout,
			Logger:       &lFasthttp,
		},
		log:     log,
		stats:   stats,
		display: d,
	}
	srv.server.Handler = srv.handle
	return srv
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	id := uuid.NewString()
	// ctx.Error resets the response headers
	defer ctx.Response.Header.Set(HeaderRequestID, id)
	s.log.Debug().
		Str("request", id).
		Bytes("method", ctx.Method()).
		Bytes("path", ctx.Path()).
		Msg("handling request")

	if !s.authorized(ctx) {
		return
	}

	var handler func(*fasthttp.RequestCtx, string)
	method := fasthttp.MethodPost
	switch string(ctx.Path()) {
	case PathSet:
		handler = s.handleSet
	case PathRemove:
		handler = s.handleRemove
	case PathClear:
		handler = s.handleClear
	case PathBuckets:
		handler, method = s.handleBuckets, fasthttp.MethodGet
	case PathRender:
		handler, method = s.handleRender, fasthttp.MethodGet
	case PathStats:
		handler, method = s.handleStats, fasthttp.MethodGet
	default:
		const c = fasthttp.StatusNotFound
		ctx.Error(fasthttp.StatusMessage(c), c)
		return
	}

	if string(ctx.Method()) != method {
		const c = fasthttp.StatusMethodNotAllowed
		ctx.Error(fasthttp.StatusMessage(c), c)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	handler(ctx, id)
}

func (s *Server) handleSet(ctx *fasthttp.RequestCtx, id string) {
	body := ctx.Request.Body()
	key, value, ok := extractStrings(body, "key", "value")
	if !ok {
		s.reject(ctx, id)
		return
	}
	if !s.display.Insert(key, value) {
		s.log.Debug().Str("request", id).Msg("empty input")
		badRequest(ctx)
		return
	}
	s.writeJSON(ctx, id, s.display.Snapshot())
}

type removeResponse struct {
	Removed    bool                 `json:"removed"`
	Count      int                  `json:"count"`
	Capacity   int                  `json:"capacity"`
	LoadFactor float64              `json:"loadFactor"`
	Buckets    []display.BucketView `json:"buckets"`
}

func (s *Server) handleRemove(ctx *fasthttp.RequestCtx, id string) {
	body := ctx.Request.Body()
	key, _, ok := extractStrings(body, "key", "")
	if !ok {
		s.reject(ctx, id)
		return
	}
	if key == "" {
		// Records the rejected input
		s.display.Remove(key)
		s.log.Debug().Str("request", id).Msg("empty input")
		badRequest(ctx)
		return
	}
	removed := s.display.Remove(key)
	v := s.display.Snapshot()
	s.writeJSON(ctx, id, removeResponse{
		Removed:    removed,
		Count:      v.Count,
		Capacity:   v.Capacity,
		LoadFactor: v.LoadFactor,
		Buckets:    v.Buckets,
	})
}

func (s *Server) handleClear(ctx *fasthttp.RequestCtx, id string) {
	s.display.Clear()
	s.writeJSON(ctx, id, s.display.Snapshot())
}

func (s *Server) handleBuckets(ctx *fasthttp.RequestCtx, id string) {
	s.writeJSON(ctx, id, s.display.Snapshot())
}

func (s *Server) handleRender(ctx *fasthttp.RequestCtx, id string) {
	var b bytes.Buffer
	if err := s.display.Render(&b); err != nil {
		s.log.Error().Str("request", id).Err(err).Msg("rendering")
		const c = fasthttp.StatusInternalServerError
		ctx.Error(fasthttp.StatusMessage(c), c)
		return
	}
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBody(b.Bytes())
}

type statsResponse struct {
	HandledOperations     int64 `json:"handledOperations"`
	Inserts               int64 `json:"inserts"`
	Overwrites            int64 `json:"overwrites"`
	Removals              int64 `json:"removals"`
	RemoveMisses          int64 `json:"removeMisses"`
	Clears                int64 `json:"clears"`
	Rejected              int64 `json:"rejected"`
	Growths               int64 `json:"growths"`
	HighestProcessingTime int64 `json:"highestProcessingTimeNs"`
	AverageProcessingTime int64 `json:"averageProcessingTimeNs"`
}

func (s *Server) handleStats(ctx *fasthttp.RequestCtx, id string) {
	s.writeJSON(ctx, id, statsResponse{
		HandledOperations:     s.stats.GetHandledOperations(),
		Inserts:               s.stats.GetInserts(),
		Overwrites:            s.stats.GetOverwrites(),
		Removals:              s.stats.GetRemovals(),
		RemoveMisses:          s.stats.GetRemoveMisses(),
		Clears:                s.stats.GetClears(),
		Rejected:              s.stats.GetRejected(),
		Growths:               s.stats.GetGrowths(),
		HighestProcessingTime: s.stats.GetHighestProcessingTime(),
		AverageProcessingTime: s.stats.GetAverageProcessingTime(),
	})
}

func (s *Server) reject(ctx *fasthttp.RequestCtx, id string) {
	s.stats.Update(statistics.OperationRejected, false, 0)
	s.log.Debug().
		Str("request", id).
		Bytes("body", ctx.Request.Body()).
		Msg("malformed body")
	badRequest(ctx)
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, id string, v any) {
	b, err := sonnet.Marshal(v)
	if err != nil {
		s.log.Error().Str("request", id).Err(err).Msg("encoding response")
		const c = fasthttp.StatusInternalServerError
		ctx.Error(fasthttp.StatusMessage(c), c)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(b)
}

func (s *Server) authorized(ctx *fasthttp.RequestCtx) bool {
	if s.auth.Username == "" {
		// No auth
		return true
	}
	u, p, ok := basicAuth(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
	if !ok {
		const c = fasthttp.StatusUnauthorized
		ctx.Error(fasthttp.StatusMessage(c), c)
		ctx.Response.Header.Set(
			"WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`,
		)
		return false
	}
	if u != s.auth.Username || p != s.auth.Password {
		const c = fasthttp.StatusForbidden
		ctx.Error(fasthttp.StatusMessage(c), c)
		return false
	}
	return true
}

// basicAuth parses an HTTP Basic Authentication header value.
func basicAuth(header []byte) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) ||
		!bytes.EqualFold(header[:len(prefix)], []byte(prefix)) {
		return "", "", false
	}
	c, err := base64.StdEncoding.DecodeString(string(header[len(prefix):]))
	if err != nil {
		return "", "", false
	}
	u, p, ok := bytes.Cut(c, []byte(":"))
	if !ok {
		return "", "", false
	}
	return string(u), string(p), true
}

// extractStrings returns the string values of fields a and b
// of the JSON object body. b is ignored if empty.
// Returns ok=false if body isn't a valid JSON object or
// any of the fields is missing or not a string.
func extractStrings(body []byte, a, b string) (va, vb string, ok bool) {
	if !gjson.ValidBytes(body) {
		return "", "", false
	}
	r := gjson.ParseBytes(body)
	if !r.IsObject() {
		return "", "", false
	}
	ra := r.Get(a)
	if ra.Type != gjson.String {
		return "", "", false
	}
	if b == "" {
		return ra.Str, "", true
	}
	rb := r.Get(b)
	if rb.Type != gjson.String {
		return "", "", false
	}
	return ra.Str, rb.Str, true
}

func badRequest(ctx *fasthttp.RequestCtx) {
	const c = fasthttp.StatusBadRequest
	ctx.Error(fasthttp.StatusMessage(c), c)
}

// Serve starts listening on listener if not nil,
// otherwise listens on the configured host.
func (s *Server) Serve(listener net.Listener) {
	s.log.Info().
		Str("host", s.host).
		Bool("auth", s.auth.Username != "").
		Msg("listening")

	var err error
	if listener != nil {
		err = s.server.Serve(listener)
	} else {
		err = s.server.ListenAndServe(s.host)
	}
	if err != nil {
		s.log.Fatal().Err(err).Msg("listening")
	}
}

// Shutdown returns once the server was shutdown.
// Logs shutdown and errors.
func (s *Server) Shutdown() error {
	err := s.server.Shutdown()
	if err != nil {
		s.log.Error().Err(err).Msg("shutting down")
		return err
	}
	s.log.Info().Msg("shutdown")
	return nil
}
