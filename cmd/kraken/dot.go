package main

import (
	"fmt"
	"io"

	"github.com/krakenbuild/kraken/internal/graph"
	"github.com/krakenbuild/kraken/internal/task"
)

// renderDOT writes g as a DOT graph with two subgraphs: a legend describing
// the node styles, and the build graph itself. Nodes carry a style
// attribute denoting default/selected/group/goal; non-strict edges render
// dashed.
func renderDOT(w io.Writer, g *graph.TaskGraph, includeInactive bool) {
	targets := make(map[string]bool)
	for _, t := range g.Targets() {
		targets[t] = true
	}

	fmt.Fprintln(w, "digraph kraken {")
	fmt.Fprintln(w, `  subgraph "cluster_#legend" {`)
	fmt.Fprintln(w, `    label = "legend";`)
	fmt.Fprintln(w, `    "default" [style=filled, fillcolor=white];`)
	fmt.Fprintln(w, `    "selected" [style=filled, fillcolor=lightgrey];`)
	fmt.Fprintln(w, `    "group" [shape=box, style=filled, fillcolor=white];`)
	fmt.Fprintln(w, `    "goal" [style=filled, fillcolor=gold];`)
	fmt.Fprintln(w, "  }")

	fmt.Fprintln(w, `  subgraph "cluster_#build" {`)
	fmt.Fprintln(w, `    label = "build";`)

	filter := graph.TaskFilter{All: includeInactive}
	for _, t := range g.Tasks(filter) {
		fmt.Fprintf(w, "    %s;\n", dotNode(t, targets[t.Path()]))
	}
	for _, t := range g.Tasks(filter) {
		for _, succ := range g.Successors(t.Path()) {
			edge := g.Edge(t.Path(), succ)
			style := ""
			if edge != nil && !edge.Strict {
				style = " [style=dashed]"
			}
			fmt.Fprintf(w, "    %q -> %q%s;\n", t.Path(), succ, style)
		}
	}
	fmt.Fprintln(w, "  }")
	fmt.Fprintln(w, "}")
}

func dotNode(t *task.Task, isGoal bool) string {
	shape := ""
	if t.Kind() == task.KindGroup {
		shape = ", shape=box"
	}
	fill := "white"
	switch {
	case isGoal:
		fill = "gold"
	case t.Default:
		fill = "lightgrey"
	}
	return fmt.Sprintf("%q [style=filled, fillcolor=%s%s]", t.Path(), fill, shape)
}
