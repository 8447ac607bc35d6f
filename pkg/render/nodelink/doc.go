// Package nodelink renders one scope's dependency graph as a traditional
// node-link diagram.
//
// The package emits Graphviz DOT and renders it to SVG with the embedded
// Graphviz engine. Use it to inspect a single scope - a folder's part
// graph, a file's symbol graph - when the treemap view is too dense.
package nodelink
