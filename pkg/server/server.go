// Package server serves a generated location bundle over HTTP.
//
// # Routes
//
//	GET /healthz                       liveness and object count
//	GET /bundle                        the whole bundle, four-space indented
//	GET /objects?type=location         objects in bundle order, optionally by type
//	GET /objects/{id}                  one object
//	GET /locations/{id}/parents        locations that contain {id}
//	GET /locations/{id}/children       locations that {id} contains
//	GET /graph.dot?root=Africa         the hierarchy as Graphviz DOT
//
// The bundle is loaded once and never modified, so handlers share it
// without locking.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/muchdogesec/location2stix/pkg/render/nodelink"
	"github.com/muchdogesec/location2stix/pkg/stix"
)

// ShutdownTimeout bounds graceful shutdown in [Server.ListenAndServe].
const ShutdownTimeout = 5 * time.Second

// Server answers read-only queries over one bundle.
type Server struct {
	bundle *stix.Bundle
	graph  *stix.Graph
	logger *log.Logger
	router chi.Router
}

// New indexes b and builds the router. A nil logger uses log.Default().
func New(b *stix.Bundle, logger *log.Logger) (*Server, error) {
	g, err := stix.NewGraph(b)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{bundle: b, graph: g, logger: logger}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/bundle", s.handleBundle)
	r.Get("/graph.dot", s.handleDOT)
	r.Route("/objects", func(r chi.Router) {
		r.Get("/", s.handleObjects)
		r.Get("/{id}", s.handleObject)
	})
	r.Route("/locations/{id}", func(r chi.Router) {
		r.Get("/parents", s.handleParents)
		r.Get("/children", s.handleChildren)
	})
	return r
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving bundle", "addr", addr, "objects", s.bundle.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"bundle":  s.bundle.ID,
		"objects": s.bundle.Len(),
	})
}

func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := stix.WriteJSON(s.bundle, w); err != nil {
		s.logger.Error("write bundle", "err", err)
	}
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	objType := r.URL.Query().Get("type")
	out := make([]*stix.RawObject, 0, len(s.graph.Objects()))
	for _, obj := range s.graph.Objects() {
		if objType == "" || obj.Type == objType {
			out = append(out, obj)
		}
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	obj, ok := s.graph.Object(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "no object "+id)
		return
	}
	s.respondJSON(w, http.StatusOK, obj)
}

func (s *Server) handleParents(w http.ResponseWriter, r *http.Request) {
	s.related(w, r, s.graph.Parents, func(rel *stix.Relationship) string { return rel.TargetRef })
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	s.related(w, r, s.graph.Children, func(rel *stix.Relationship) string { return rel.SourceRef })
}

// related writes the locations at the far end of the edges edgesOf returns.
func (s *Server) related(w http.ResponseWriter, r *http.Request, edgesOf func(string) []*stix.Relationship, far func(*stix.Relationship) string) {
	id := chi.URLParam(r, "id")
	if _, ok := s.graph.Location(id); !ok {
		s.respondError(w, http.StatusNotFound, "no location "+id)
		return
	}
	out := make([]*stix.Location, 0)
	for _, rel := range edgesOf(id) {
		if loc, ok := s.graph.Location(far(rel)); ok {
			out = append(out, loc)
		}
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	opts := nodelink.Options{
		Root:     r.URL.Query().Get("root"),
		Detailed: r.URL.Query().Get("detailed") == "true",
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	if _, err := w.Write([]byte(nodelink.ToDOT(s.graph, opts))); err != nil {
		s.logger.Error("write dot", "err", err)
	}
}
