// Package watch reruns a build when input files change.
//
// Events from fsnotify are filtered by file name and debounced, so an editor
// saving a sheet and its sidecar triggers a single rebuild.
package watch
