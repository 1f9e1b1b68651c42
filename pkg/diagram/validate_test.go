package diagram

import "testing"

func issueCodes(issues []Issue) map[string]int {
	out := map[string]int{}
	for _, i := range issues {
		out[i.Code]++
	}
	return out
}

func TestValidateClean(t *testing.T) {
	d := chain([2]string{"a", "b"})
	issues := Validate(d)
	if s := SummarizeIssues(issues); !s.Valid || s.Errors != 0 {
		t.Errorf("clean diagram reported errors: %+v", issues)
	}
}

func TestValidateDanglingEdge(t *testing.T) {
	d := chain([2]string{"a", "b"})
	d.Edges = append(d.Edges, NewEdge("a", "ghost"))

	codes := issueCodes(Validate(d))
	if codes["dangling_edge"] != 1 {
		t.Errorf("dangling_edge count = %d, want 1", codes["dangling_edge"])
	}
	if s := SummarizeIssues(Validate(d)); s.Valid {
		t.Error("diagram with dangling edge reported valid")
	}
}

func TestValidateDuplicateIDs(t *testing.T) {
	d := chain([2]string{"a", "b"})
	dup := NewNode()
	dup.ID = "a"
	d.Nodes = append(d.Nodes, dup)

	codes := issueCodes(Validate(d))
	if codes["duplicate_node_id"] != 1 {
		t.Errorf("duplicate_node_id count = %d, want 1", codes["duplicate_node_id"])
	}
}

func TestValidateGeometryWarnings(t *testing.T) {
	d := New("geo")
	n := NewNode()
	n.ID = "n1"
	n.Width = 10 // below minimum
	n.X = -5
	n.Rotation = 400
	d.Nodes = append(d.Nodes, n)

	codes := issueCodes(Validate(d))
	for _, want := range []string{"below_min_size", "negative_position", "unnormalized_rotation"} {
		if codes[want] != 1 {
			t.Errorf("%s count = %d, want 1", want, codes[want])
		}
	}
	// Geometry problems are warnings, not errors.
	if s := SummarizeIssues(Validate(d)); !s.Valid {
		t.Error("geometry warnings marked the diagram invalid")
	}
}

func TestValidateSelfLoopAndOrphan(t *testing.T) {
	d := chain([2]string{"a", "a"})
	lone := NewNode()
	lone.ID = "z"
	d.Nodes = append(d.Nodes, lone)

	codes := issueCodes(Validate(d))
	if codes["self_loop"] != 1 {
		t.Errorf("self_loop count = %d, want 1", codes["self_loop"])
	}
	if codes["orphan_node"] != 1 {
		t.Errorf("orphan_node count = %d, want 1", codes["orphan_node"])
	}
}

func TestValidateEmptyDiagram(t *testing.T) {
	issues := Validate(New("blank"))
	if len(issues) != 1 || issues[0].Code != "empty_diagram" || issues[0].Severity != SeverityInfo {
		t.Errorf("issues = %+v, want a single empty_diagram info", issues)
	}
}

func TestValidateDefaultAndEmptyLabels(t *testing.T) {
	d := chain([2]string{"a", "b"})
	d.Node("a").Label = DefaultNodeLabel
	d.Node("b").Label = "   "

	codes := issueCodes(Validate(d))
	if codes["default_label"] != 2 {
		t.Errorf("default_label count = %d, want 2", codes["default_label"])
	}
}

func TestValidateDuplicateEdgePair(t *testing.T) {
	d := chain([2]string{"a", "b"}, [2]string{"a", "b"})

	codes := issueCodes(Validate(d))
	if codes["duplicate_edge"] != 1 {
		t.Errorf("duplicate_edge count = %d, want 1", codes["duplicate_edge"])
	}
	// Same pair, same warning regardless of edge styling; errors stay zero.
	if s := SummarizeIssues(Validate(d)); !s.Valid {
		t.Error("duplicate edges marked the diagram invalid")
	}
}

func TestValidateOrphanIsWarning(t *testing.T) {
	d := chain([2]string{"a", "b"})
	lone := NewNode()
	lone.ID, lone.Label = "z", "island"
	d.Nodes = append(d.Nodes, lone)

	for _, issue := range Validate(d) {
		if issue.Code == "orphan_node" {
			if issue.Severity != SeverityWarning {
				t.Errorf("orphan severity = %s, want warning", issue.Severity)
			}
			return
		}
	}
	t.Error("orphan_node not reported")
}

func TestValidateInvalidShape(t *testing.T) {
	d := New("shape")
	n := NewNode()
	n.ID = "n1"
	n.Shape = "hexagon"
	d.Nodes = append(d.Nodes, n)

	codes := issueCodes(Validate(d))
	if codes["invalid_shape"] != 1 {
		t.Errorf("invalid_shape count = %d, want 1", codes["invalid_shape"])
	}
}
