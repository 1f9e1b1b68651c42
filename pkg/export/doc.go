// Package export renders diagrams to static formats: SVG, PNG, and
// Graphviz DOT.
//
// SVG is the primary format and is built directly from the diagram
// geometry: shapes honor rotation via transform attributes, edges are
// routed cubic curves with oriented arrowheads. PNG rasterizes the same
// geometry. DOT discards positions and lets Graphviz lay the graph out,
// which is useful for piping diagrams into existing dot tooling.
//
// Renderer wraps the format dispatch with a content-addressed cache so
// repeated exports of an unchanged diagram are free.
package export
