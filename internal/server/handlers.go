package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"draftboard/pkg/diagram"
	"draftboard/pkg/errors"
	"draftboard/pkg/layout"
	"draftboard/pkg/store"
)

// =============================================================================
// Nodes
// =============================================================================

type nodeRequest struct {
	Label       *string              `json:"label"`
	Type        *diagram.NodeType    `json:"type"`
	Shape       *diagram.Shape       `json:"shape"`
	Color       *string              `json:"color"`
	X           *float64             `json:"x"`
	Y           *float64             `json:"y"`
	Width       *float64             `json:"width"`
	Height      *float64             `json:"height"`
	Tags        *[]string            `json:"tags"`
	Description *string              `json:"description"`
	BorderStyle *diagram.BorderStyle `json:"border_style"`
	FillOpacity *float64             `json:"fill_opacity"`
	ZIndex      *int                 `json:"z_index"`
	Rotation    *float64             `json:"rotation"`
}

func (req nodeRequest) update() diagram.NodeUpdate {
	return diagram.NodeUpdate{
		Label:       req.Label,
		Type:        req.Type,
		Shape:       req.Shape,
		Color:       req.Color,
		X:           req.X,
		Y:           req.Y,
		Width:       req.Width,
		Height:      req.Height,
		Tags:        req.Tags,
		Description: req.Description,
		BorderStyle: req.BorderStyle,
		FillOpacity: req.FillOpacity,
		ZIndex:      req.ZIndex,
		Rotation:    req.Rotation,
	}
}

// apply overlays the request's present fields onto a fresh default node.
func (req nodeRequest) apply(n *diagram.Node) {
	if req.Label != nil {
		n.Label = *req.Label
	}
	if req.Type != nil {
		n.Type = *req.Type
	}
	if req.Shape != nil {
		n.Shape = *req.Shape
	}
	if req.Color != nil {
		n.Color = *req.Color
	}
	if req.X != nil {
		n.X = *req.X
	}
	if req.Y != nil {
		n.Y = *req.Y
	}
	if req.Width != nil {
		n.Width = *req.Width
	}
	if req.Height != nil {
		n.Height = *req.Height
	}
	if req.Tags != nil {
		n.Tags = *req.Tags
	}
	if req.Description != nil {
		n.Description = *req.Description
	}
	if req.BorderStyle != nil {
		n.BorderStyle = *req.BorderStyle
	}
	if req.FillOpacity != nil {
		n.FillOpacity = *req.FillOpacity
	}
	if req.ZIndex != nil {
		n.ZIndex = *req.ZIndex
	}
	if req.Rotation != nil {
		n.Rotation = *req.Rotation
	}
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	n := diagram.NewNode()
	req.apply(n)
	created, err := s.manager.AddNode(n)
	if err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "node": created})
}

func (s *Server) handleSearchNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	nodes := s.manager.SearchNodes(q.Get("label"), q.Get("tag"), diagram.NodeType(q.Get("type")))
	respond(w, http.StatusOK, map[string]any{"success": true, "nodes": nodes})
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.manager.GetNode(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "node": n})
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	n, err := s.manager.UpdateNode(chi.URLParam(r, "id"), req.update())
	if err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "node": n})
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.DeleteNode(chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true})
}

type bulkTagRequest struct {
	NodeIDs    []string `json:"node_ids"`
	AddTags    []string `json:"add_tags"`
	RemoveTags []string `json:"remove_tags"`
}

func (s *Server) handleBulkTags(w http.ResponseWriter, r *http.Request) {
	var req bulkTagRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	updated := s.manager.BulkUpdateTags(req.NodeIDs, req.AddTags, req.RemoveTags)
	respond(w, http.StatusOK, map[string]any{"success": true, "updated": updated})
}

// =============================================================================
// Edges
// =============================================================================

type edgeRequest struct {
	Source     string             `json:"source"`
	Target     string             `json:"target"`
	Label      *string            `json:"label"`
	SourceSide *diagram.Side      `json:"source_side"`
	TargetSide *diagram.Side      `json:"target_side"`
	Color      *string            `json:"color"`
	Width      *float64           `json:"width"`
	Style      *diagram.LineStyle `json:"style"`
	ArrowStart *diagram.ArrowKind `json:"arrow_start"`
	ArrowEnd   *diagram.ArrowKind `json:"arrow_end"`
	ArrowSize  *float64           `json:"arrow_size"`
}

func (req edgeRequest) update() diagram.EdgeUpdate {
	return diagram.EdgeUpdate{
		Label:      req.Label,
		Color:      req.Color,
		Width:      req.Width,
		Style:      req.Style,
		ArrowStart: req.ArrowStart,
		ArrowEnd:   req.ArrowEnd,
		ArrowSize:  req.ArrowSize,
		SourceSide: req.SourceSide,
		TargetSide: req.TargetSide,
	}
}

func (s *Server) handleCreateEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	e := diagram.NewEdge(req.Source, req.Target)
	if req.Label != nil {
		e.Label = *req.Label
	}
	if req.SourceSide != nil {
		e.SourceSide = *req.SourceSide
	}
	if req.TargetSide != nil {
		e.TargetSide = *req.TargetSide
	}
	if req.Color != nil {
		e.Color = *req.Color
	}
	if req.Width != nil {
		e.Width = *req.Width
	}
	if req.Style != nil {
		e.Style = *req.Style
	}
	if req.ArrowStart != nil {
		e.ArrowStart = *req.ArrowStart
	}
	if req.ArrowEnd != nil {
		e.ArrowEnd = *req.ArrowEnd
	}
	if req.ArrowSize != nil {
		e.ArrowSize = *req.ArrowSize
	}
	created, err := s.manager.AddEdge(e)
	if err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "edge": created})
}

func (s *Server) handleGetEdge(w http.ResponseWriter, r *http.Request) {
	e, err := s.manager.GetEdge(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "edge": e})
}

func (s *Server) handleUpdateEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	e, err := s.manager.UpdateEdge(chi.URLParam(r, "id"), req.update())
	if err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "edge": e})
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.DeleteEdge(chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true})
}

// =============================================================================
// Enums
// =============================================================================

func (s *Server) handleShapes(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"shapes": diagram.Shapes()})
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"types": diagram.NodeTypes()})
}

// =============================================================================
// Snapshots
// =============================================================================

type snapshotRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.manager.CreateSnapshot(req.Name); err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "name": req.Name})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"success": true, "snapshots": s.manager.ListSnapshots()})
}

func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.RestoreSnapshot(chi.URLParam(r, "name")); err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "diagram": s.manager.Diagram()})
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.DeleteSnapshot(chi.URLParam(r, "name")); err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true})
}

// =============================================================================
// Layout
// =============================================================================

type autoLayoutRequest struct {
	Strategy string `json:"strategy"`
}

// handleAutoLayout applies a layout to a copy of the diagram and commits the
// resulting positions as one batched move, so the whole re-arrangement is a
// single undo step.
func (s *Server) handleAutoLayout(w http.ResponseWriter, r *http.Request) {
	req := autoLayoutRequest{Strategy: "grid"}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	d := s.manager.Diagram()
	if len(d.Nodes) == 0 {
		s.fail(w, errors.New(errors.ErrCodeInvalidInput, "no nodes to lay out"))
		return
	}
	if err := layout.Apply(layout.Algorithm(req.Strategy), d, layout.Options{}); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.commitPositions(d); err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "strategy": req.Strategy})
}

type alignRequest struct {
	NodeIDs   []string `json:"node_ids"`
	Alignment string   `json:"alignment"`
}

func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	req := alignRequest{Alignment: "left"}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	d := s.manager.Diagram()
	if err := layout.Align(d.Nodes, req.NodeIDs, layout.Alignment(req.Alignment)); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.commitPositions(d); err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true})
}

type distributeRequest struct {
	NodeIDs []string `json:"node_ids"`
	Axis    string   `json:"axis"`
}

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	req := distributeRequest{Axis: "horizontal"}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	d := s.manager.Diagram()
	if err := layout.Distribute(d.Nodes, req.NodeIDs, layout.Axis(req.Axis)); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.commitPositions(d); err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true})
}

// commitPositions moves every node of the live diagram to the position it
// holds in the laid-out copy.
func (s *Server) commitPositions(d *diagram.Diagram) error {
	moves := make([]diagram.NodeMove, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		moves = append(moves, diagram.NodeMove{ID: n.ID, X: n.X, Y: n.Y})
	}
	return s.manager.MoveMany(moves)
}

// =============================================================================
// Stored diagrams
// =============================================================================

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respond(w, http.StatusOK, map[string]any{"success": true, "diagrams": []store.Info{}})
		return
	}
	infos, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, errors.Wrap(errors.ErrCodeStorage, err, "list diagrams"))
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "diagrams": infos})
}
