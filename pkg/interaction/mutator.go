package interaction

import (
	"context"

	"github.com/charmbracelet/log"

	"draftboard/pkg/diagram"
	"draftboard/pkg/errors"
)

// Mutator is the committed-mutation sink for completed gestures. Every
// method maps to one authoritative diagram change; implementations decide
// whether that lands in-process or over the network.
type Mutator interface {
	UpdatePosition(ctx context.Context, nodeID string, x, y float64) error
	UpdateSize(ctx context.Context, nodeID string, w, h float64) error
	UpdateRotation(ctx context.Context, nodeID string, deg float64) error
	MoveMany(ctx context.Context, moves []diagram.NodeMove) error
	CreateEdge(ctx context.Context, source string, sourceSide diagram.Side, target string, targetSide diagram.Side) error
}

// ErrorReporter receives a human-readable message for every failed commit.
type ErrorReporter interface {
	ReportError(msg string)
}

// ReporterFunc adapts a function to the ErrorReporter interface.
type ReporterFunc func(msg string)

// ReportError calls f.
func (f ReporterFunc) ReportError(msg string) { f(msg) }

// NewLogReporter returns an ErrorReporter that writes failed-commit
// messages to the given logger.
func NewLogReporter(logger *log.Logger) ErrorReporter {
	return ReporterFunc(func(msg string) {
		logger.Error("commit failed", "error", msg)
	})
}

// ManagerMutator commits gestures directly into an in-process
// diagram.Manager. The server and TUI both use it; a remote client swaps in
// an HTTP-backed Mutator instead.
type ManagerMutator struct {
	m *diagram.Manager
}

// NewManagerMutator wraps a diagram.Manager as a Mutator.
func NewManagerMutator(m *diagram.Manager) *ManagerMutator {
	return &ManagerMutator{m: m}
}

func (mm *ManagerMutator) UpdatePosition(_ context.Context, nodeID string, x, y float64) error {
	return mm.m.MoveNode(nodeID, x, y)
}

func (mm *ManagerMutator) UpdateSize(_ context.Context, nodeID string, w, h float64) error {
	return mm.m.ResizeNode(nodeID, w, h)
}

func (mm *ManagerMutator) UpdateRotation(_ context.Context, nodeID string, deg float64) error {
	return mm.m.RotateNode(nodeID, deg)
}

func (mm *ManagerMutator) MoveMany(_ context.Context, moves []diagram.NodeMove) error {
	return mm.m.MoveMany(moves)
}

func (mm *ManagerMutator) CreateEdge(_ context.Context, source string, sourceSide diagram.Side, target string, targetSide diagram.Side) error {
	e := diagram.NewEdge(source, target)
	e.SourceSide = sourceSide
	e.TargetSide = targetSide
	_, err := mm.m.AddEdge(e)
	return err
}

// userMessage extracts the display text for a failed commit.
func userMessage(err error) string {
	return errors.UserMessage(err)
}
