// Package server exposes the diagram manager over HTTP and websocket.
//
// The REST API mirrors the editor's operations one to one: diagram state and
// metadata, node and edge CRUD, undo/redo, named snapshots, auto-layout, and
// static export. Every mutation triggers a broadcast on the websocket hub so
// connected editors re-fetch the authoritative state.
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"draftboard/pkg/diagram"
	"draftboard/pkg/errors"
	"draftboard/pkg/export"
	"draftboard/pkg/store"
)

// Server wires the diagram manager, sync hub, persistence, and export
// renderer behind a chi router.
type Server struct {
	manager  *diagram.Manager
	hub      *Hub
	renderer *export.Renderer
	store    store.Store
	logger   *log.Logger
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithStore sets the persistence backend used by the diagrams listing and
// name-based save/load.
func WithStore(s store.Store) Option {
	return func(srv *Server) { srv.store = s }
}

// WithRenderer sets the export renderer (default uncached).
func WithRenderer(r *export.Renderer) Option {
	return func(srv *Server) { srv.renderer = r }
}

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(srv *Server) { srv.logger = l }
}

// New creates a server around the given manager. The manager's change
// callback is hooked up to the websocket hub here.
func New(m *diagram.Manager, opts ...Option) *Server {
	srv := &Server{
		manager:  m,
		renderer: export.NewRenderer(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.hub = NewHub(srv.logger)

	m.OnChange(func() {
		srv.hub.NotifyUpdated(m.State().DiagramID)
	})

	srv.router = srv.routes()
	return srv
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub exposes the websocket hub, mainly for shutdown.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/diagram", s.handleGetDiagram)
		r.Patch("/diagram", s.handleUpdateDiagram)
		r.Post("/diagram/new", s.handleNewDiagram)
		r.Post("/diagram/open", s.handleOpenDiagram)
		r.Post("/diagram/save", s.handleSaveDiagram)
		r.Get("/diagram/validate", s.handleValidate)
		r.Get("/diagram/summary", s.handleSummary)
		r.Get("/diagram/export/{format}", s.handleExport)

		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)

		r.Post("/nodes", s.handleCreateNode)
		r.Get("/nodes/search", s.handleSearchNodes)
		r.Post("/nodes/bulk-tags", s.handleBulkTags)
		r.Get("/nodes/{id}", s.handleGetNode)
		r.Patch("/nodes/{id}", s.handleUpdateNode)
		r.Delete("/nodes/{id}", s.handleDeleteNode)

		r.Post("/edges", s.handleCreateEdge)
		r.Get("/edges/{id}", s.handleGetEdge)
		r.Patch("/edges/{id}", s.handleUpdateEdge)
		r.Delete("/edges/{id}", s.handleDeleteEdge)

		r.Get("/enums/shapes", s.handleShapes)
		r.Get("/enums/types", s.handleTypes)

		r.Post("/snapshots", s.handleCreateSnapshot)
		r.Get("/snapshots", s.handleListSnapshots)
		r.Post("/snapshots/{name}/restore", s.handleRestoreSnapshot)
		r.Delete("/snapshots/{name}", s.handleDeleteSnapshot)

		r.Post("/layout/auto", s.handleAutoLayout)
		r.Post("/layout/align", s.handleAlign)
		r.Post("/layout/distribute", s.handleDistribute)

		r.Get("/diagrams", s.handleListDiagrams)
	})

	r.Get("/ws", s.hub.ServeHTTP)
	return r
}

// =============================================================================
// Response helpers
// =============================================================================

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	respond(w, status, map[string]any{
		"success": false,
		"error":   errors.UserMessage(err),
		"code":    string(errors.GetCode(err)),
	})
}

// decode parses a JSON body. An empty body leaves v at its defaults.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// =============================================================================
// Health & diagram state
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": s.hub.Count(),
	})
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"success": true,
		"state":   s.manager.State(),
		"diagram": s.manager.Diagram(),
	})
}

type diagramInfoRequest struct {
	Name     *string `json:"name"`
	GridSize *int    `json:"grid_size"`
	ShowGrid *bool   `json:"show_grid"`
}

func (s *Server) handleUpdateDiagram(w http.ResponseWriter, r *http.Request) {
	var req diagramInfoRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	s.manager.UpdateInfo(req.Name, req.GridSize, req.ShowGrid)
	respond(w, http.StatusOK, map[string]any{"success": true, "diagram": s.manager.Diagram()})
}

func (s *Server) handleNewDiagram(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	d := s.manager.NewDiagram(name)
	respond(w, http.StatusOK, map[string]any{"success": true, "diagram": d})
}

type openRequest struct {
	FilePath string `json:"file_path"`
}

func (s *Server) handleOpenDiagram(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	d, err := s.manager.Open(req.FilePath)
	if err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"success":   true,
		"diagram":   d,
		"file_path": s.manager.State().FilePath,
	})
}

type saveRequest struct {
	FilePath string `json:"file_path"`
}

func (s *Server) handleSaveDiagram(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	path, err := s.manager.Save(req.FilePath)
	if err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "file_path": path})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	d := s.manager.Diagram()
	issues := diagram.Validate(d)
	respond(w, http.StatusOK, map[string]any{
		"success": true,
		"issues":  issues,
		"summary": diagram.SummarizeIssues(issues),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": diagram.Summarize(s.manager.Diagram(), 5),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if r.URL.Query().Get("engine") == "graphviz" && (format == export.FormatSVG || format == export.FormatPNG) {
		render := export.RenderGraphvizSVG
		if format == export.FormatPNG {
			render = export.RenderGraphvizPNG
		}
		data, err := render(r.Context(), s.manager.Diagram())
		if err != nil {
			s.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	data, err := s.renderer.Render(r.Context(), s.manager.Diagram(), format)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// =============================================================================
// History
// =============================================================================

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Undo(); err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "diagram": s.manager.Diagram()})
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Redo(); err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "diagram": s.manager.Diagram()})
}
