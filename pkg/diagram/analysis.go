package diagram

import (
	"sort"
)

// ConnectionInfo counts the directed edges touching a node.
type ConnectionInfo struct {
	NodeID   string `json:"id"`
	Label    string `json:"label"`
	Incoming int    `json:"incoming"`
	Outgoing int    `json:"outgoing"`
}

// Total is the combined degree of the node.
func (c ConnectionInfo) Total() int { return c.Incoming + c.Outgoing }

// Summary is a structural overview of a diagram: counts by type and shape,
// tags in use, connectivity, and the busiest nodes.
type Summary struct {
	Name          string           `json:"name"`
	TotalNodes    int              `json:"total_nodes"`
	TotalEdges    int              `json:"total_edges"`
	NodesByType   map[string]int   `json:"nodes_by_type"`
	NodesByShape  map[string]int   `json:"nodes_by_shape"`
	TagsInUse     []string         `json:"tags_in_use"`
	Components    int              `json:"connected_components"`
	MostConnected []ConnectionInfo `json:"most_connected_nodes"`
	OrphanCount   int              `json:"orphan_count"`
}

// Summarize builds a Summary. topN bounds the most-connected list; nodes
// without any edges never appear in it but are counted as orphans.
func Summarize(d *Diagram, topN int) Summary {
	s := Summary{
		Name:         d.Name,
		TotalNodes:   len(d.Nodes),
		TotalEdges:   len(d.Edges),
		NodesByType:  map[string]int{},
		NodesByShape: map[string]int{},
	}

	tags := map[string]struct{}{}
	for _, n := range d.Nodes {
		s.NodesByType[string(n.Type)]++
		s.NodesByShape[string(n.Shape)]++
		for _, t := range n.Tags {
			tags[t] = struct{}{}
		}
	}
	s.TagsInUse = make([]string, 0, len(tags))
	for t := range tags {
		s.TagsInUse = append(s.TagsInUse, t)
	}
	sort.Strings(s.TagsInUse)

	s.Components = len(Components(d))

	conns := Connections(d)
	sorted := make([]ConnectionInfo, 0, len(conns))
	for _, c := range conns {
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Total() != sorted[j].Total() {
			return sorted[i].Total() > sorted[j].Total()
		}
		return sorted[i].NodeID < sorted[j].NodeID
	})
	for _, c := range sorted {
		if c.Total() == 0 {
			s.OrphanCount++
			continue
		}
		if len(s.MostConnected) < topN {
			s.MostConnected = append(s.MostConnected, c)
		}
	}
	return s
}

// Connections counts incoming and outgoing edges per node. Edges referencing
// unknown nodes are ignored.
func Connections(d *Diagram) map[string]ConnectionInfo {
	out := make(map[string]ConnectionInfo, len(d.Nodes))
	for _, n := range d.Nodes {
		out[n.ID] = ConnectionInfo{NodeID: n.ID, Label: n.Label}
	}
	for _, e := range d.Edges {
		if c, ok := out[e.Source]; ok {
			c.Outgoing++
			out[e.Source] = c
		}
		if c, ok := out[e.Target]; ok {
			c.Incoming++
			out[e.Target] = c
		}
	}
	return out
}

// Components finds the connected components of the diagram, treating edges
// as undirected. Each component is the list of node ids in discovery order.
func Components(d *Diagram) [][]string {
	adj := make(map[string][]string, len(d.Nodes))
	for _, n := range d.Nodes {
		adj[n.ID] = nil
	}
	for _, e := range d.Edges {
		if _, ok := adj[e.Source]; !ok {
			continue
		}
		if _, ok := adj[e.Target]; !ok {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	visited := map[string]bool{}
	var components [][]string
	for _, n := range d.Nodes {
		if visited[n.ID] {
			continue
		}
		var comp []string
		queue := []string{n.ID}
		visited[n.ID] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, next := range adj[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		components = append(components, comp)
	}
	return components
}

// Paths finds all directed paths from source to target up to maxDepth nodes
// long, as lists of node ids including both endpoints.
func Paths(d *Diagram, source, target string, maxDepth int) [][]string {
	adj := map[string][]string{}
	for _, e := range d.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	var paths [][]string
	var walk func(cur string, path []string, visited map[string]bool)
	walk = func(cur string, path []string, visited map[string]bool) {
		if len(path) > maxDepth {
			return
		}
		if cur == target {
			paths = append(paths, append([]string(nil), path...))
			return
		}
		for _, next := range adj[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			walk(next, append(path, next), visited)
			delete(visited, next)
		}
	}
	walk(source, []string{source}, map[string]bool{source: true})
	return paths
}

// Cycles finds the directed cycles of the diagram. Each cycle is returned
// once, closed (first id repeated at the end), regardless of which node the
// search entered it from.
func Cycles(d *Diagram) [][]string {
	adj := map[string][]string{}
	for _, e := range d.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	var cycles [][]string
	seen := map[string]bool{}

	var walk func(start, cur string, path []string, visited map[string]bool)
	walk = func(start, cur string, path []string, visited map[string]bool) {
		for _, next := range adj[cur] {
			if next == start && len(path) > 1 {
				cycles = append(cycles, append(append([]string(nil), path...), start))
			} else if !visited[next] {
				visited[next] = true
				walk(start, next, append(path, next), visited)
				delete(visited, next)
			}
		}
	}
	for _, n := range d.Nodes {
		walk(n.ID, n.ID, []string{n.ID}, map[string]bool{n.ID: true})
	}

	// The same cycle is discovered once per member node; keep one.
	var unique [][]string
	for _, c := range cycles {
		members := append([]string(nil), c[:len(c)-1]...)
		sort.Strings(members)
		key := ""
		for _, m := range members {
			key += m + "\x00"
		}
		if !seen[key] {
			seen[key] = true
			unique = append(unique, c)
		}
	}
	return unique
}
