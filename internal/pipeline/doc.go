// Package pipeline wires sheet discovery, the builder and the writers into
// the runs the command line exposes: check, build and watch.
package pipeline
