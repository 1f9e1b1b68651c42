package diagram

import (
	"fmt"
	"strings"
)

// Severity classifies a validation issue.
type Severity string

// Issue severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single structural problem found in a diagram.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	NodeID   string   `json:"node_id,omitempty"`
	EdgeID   string   `json:"edge_id,omitempty"`
}

// ValidationSummary counts issues by severity.
type ValidationSummary struct {
	Errors   int  `json:"errors"`
	Warnings int  `json:"warnings"`
	Infos    int  `json:"infos"`
	Valid    bool `json:"valid"` // true when no errors
}

// Validate checks a diagram for structural problems: duplicate ids, edges
// referencing missing nodes, invalid enum values, placeholder labels, and
// geometry outside the model invariants. Only dangling references and
// duplicate ids are errors; everything else is advisory.
func Validate(d *Diagram) []Issue {
	var issues []Issue

	if len(d.Nodes) == 0 {
		return append(issues, Issue{
			Severity: SeverityInfo,
			Code:     "empty_diagram",
			Message:  "diagram has no nodes",
		})
	}

	nodeIDs := map[string]bool{}
	for _, n := range d.Nodes {
		if nodeIDs[n.ID] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     "duplicate_node_id",
				Message:  fmt.Sprintf("node id %s appears more than once", n.ID),
				NodeID:   n.ID,
			})
		}
		nodeIDs[n.ID] = true

		if strings.TrimSpace(n.Label) == "" || n.Label == DefaultNodeLabel {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Code:     "default_label",
				Message:  fmt.Sprintf("node %s has a default or empty label", n.ID),
				NodeID:   n.ID,
			})
		}
		if !n.Shape.Valid() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     "invalid_shape",
				Message:  fmt.Sprintf("node %s has unknown shape %q", n.ID, n.Shape),
				NodeID:   n.ID,
			})
		}
		if n.Width < MinNodeWidth || n.Height < MinNodeHeight {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Code:     "below_min_size",
				Message:  fmt.Sprintf("node %s is %gx%g, below the %gx%g minimum", n.ID, n.Width, n.Height, MinNodeWidth, MinNodeHeight),
				NodeID:   n.ID,
			})
		}
		if n.X < 0 || n.Y < 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Code:     "negative_position",
				Message:  fmt.Sprintf("node %s sits at (%g, %g), outside the canvas", n.ID, n.X, n.Y),
				NodeID:   n.ID,
			})
		}
		if n.Rotation < 0 || n.Rotation >= 360 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Code:     "unnormalized_rotation",
				Message:  fmt.Sprintf("node %s rotation %g is outside [0, 360)", n.ID, n.Rotation),
				NodeID:   n.ID,
			})
		}
	}

	edgeIDs := map[string]bool{}
	for _, e := range d.Edges {
		if edgeIDs[e.ID] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     "duplicate_edge_id",
				Message:  fmt.Sprintf("edge id %s appears more than once", e.ID),
				EdgeID:   e.ID,
			})
		}
		edgeIDs[e.ID] = true

		if !nodeIDs[e.Source] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     "dangling_edge",
				Message:  fmt.Sprintf("edge %s references missing source node %s", e.ID, e.Source),
				EdgeID:   e.ID,
			})
		}
		if !nodeIDs[e.Target] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     "dangling_edge",
				Message:  fmt.Sprintf("edge %s references missing target node %s", e.ID, e.Target),
				EdgeID:   e.ID,
			})
		}
		if !e.SourceSide.Valid() || !e.TargetSide.Valid() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     "invalid_side",
				Message:  fmt.Sprintf("edge %s has an unknown connection side", e.ID),
				EdgeID:   e.ID,
			})
		}
		if e.Source == e.Target {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Code:     "self_loop",
				Message:  fmt.Sprintf("edge %s connects node %s to itself", e.ID, e.Source),
				EdgeID:   e.ID,
			})
		}
	}

	seenPairs := map[[2]string]bool{}
	for _, e := range d.Edges {
		pair := [2]string{e.Source, e.Target}
		if seenPairs[pair] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Code:     "duplicate_edge",
				Message:  fmt.Sprintf("duplicate edge from %s to %s", e.Source, e.Target),
				EdgeID:   e.ID,
			})
		}
		seenPairs[pair] = true
	}

	for id, c := range Connections(d) {
		if c.Total() == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Code:     "orphan_node",
				Message:  fmt.Sprintf("node %s has no connections", id),
				NodeID:   id,
			})
		}
	}
	return issues
}

// SummarizeIssues counts the issues by severity.
func SummarizeIssues(issues []Issue) ValidationSummary {
	var s ValidationSummary
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		default:
			s.Infos++
		}
	}
	s.Valid = s.Errors == 0
	return s
}
