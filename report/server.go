package report

import (
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/latticehsm/hsm"
)

// Server serves a Graph's diagram over HTTP: GET /dot for Graphviz
// source, GET /json for the structural description. /dot accepts an
// optional ?current= query parameter to highlight the active path;
// /json ignores it.
type Server struct {
	graph    *hsm.Graph
	reporter hsm.Reporter
}

// NewServer creates a Server for graph, rendering with reporter (DOT{}
// if the caller has no custom Reporter).
func NewServer(graph *hsm.Graph, reporter hsm.Reporter) *Server {
	if reporter == nil {
		reporter = DOT{}
	}
	return &Server{graph: graph, reporter: reporter}
}

// Handler returns a fasthttp.RequestHandler serving this Server's
// routes.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		current := string(ctx.QueryArgs().Peek("current"))
		switch string(ctx.Path()) {
		case "/dot":
			dot, err := s.reporter.ExportDOT(s.graph, current)
			if err != nil {
				ctx.Error(err.Error(), fasthttp.StatusBadRequest)
				return
			}
			ctx.SetContentType("text/vnd.graphviz")
			ctx.SetBodyString(dot)
		case "/json":
			body, err := s.reporter.ExportJSON(s.graph)
			if err != nil {
				ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
				return
			}
			ctx.SetContentType("application/json")
			ctx.SetBody(body)
		default:
			ctx.Error(fmt.Sprintf("unknown route %q", ctx.Path()), fasthttp.StatusNotFound)
		}
	}
}

// ListenAndServe starts the report server on addr. It blocks until the
// server stops or errors.
func (s *Server) ListenAndServe(addr string) error {
	return fasthttp.ListenAndServe(addr, s.Handler())
}
